// Package mem allocates cache-line aligned buffers for vectors and binary
// codes, so a row never straddles more cache lines than necessary.
package mem
