// Package flat provides exact nearest neighbor search by exhaustive scan.
//
// Vectors live in a single contiguous buffer and are scored in blocks with
// the batch distance kernel. Results are exact: the k smallest distances,
// ties broken by ascending id. Flat is the correctness oracle for the
// approximate indexes and serves as the coarse quantizer of IVF.
package flat
