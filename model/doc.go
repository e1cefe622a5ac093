// Package model defines core types shared by the index packages.
//
// # Identity Types
//
//   - ID: dense, 0-based insertion-order vector identifier (int64)
//   - NoID: the "no result" sentinel (-1) used to pad fixed-width batch results
//
// # Result Types
//
//   - Candidate: an (ID, Distance) pair produced during search
package model
