// Package vectorstore provides the dense, append-only vector buffer shared by
// the flat and IVF indexes.
//
// Vectors are stored contiguously in a single 64-byte aligned []float32
// (Structure-of-Arrays layout), so vector i lives at data[i*dim:(i+1)*dim]
// and whole ranges can be handed to batch distance kernels without copying.
//
// # Usage
//
//	store, _ := vectorstore.New(128, nil)
//	ids, _ := store.Add(ctx, vectors)
//	v, _ := store.Get(ids[0])
//
// # Concurrency
//
// Reads are safe concurrently once writes have stopped. Add and Append
// require external synchronization.
package vectorstore
