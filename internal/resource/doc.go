// Package resource enforces process-level budgets shared by indexes.
//
// A Controller tracks memory reserved for vector and code buffers and caps
// the number of goroutines doing distance work at once. A nil *Controller is
// valid and imposes no limits.
package resource
