// Package searcher implements the bounded top-k selection shared by all
// indexes.
//
// Candidates are ordered by ascending distance with ties broken by ascending
// ID, so every index produces the same ranking for the same distances.
package searcher
