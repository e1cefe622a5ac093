// Package persistence reads and writes index snapshots.
//
// A snapshot is a fixed 32-byte header followed by the index payload
// produced by the index's MarshalBinary method:
//
//	offset  size  field
//	0       4     magic "VANN"
//	4       2     format version
//	6       1     index kind
//	7       1     compression (none, lz4, zstd)
//	8       8     uncompressed payload length
//	16      8     stored payload length
//	24      4     CRC32C of the uncompressed payload
//	28      4     reserved
//
// All integers are little-endian. Load dispatches the payload to the loader
// registered for the kind with index.RegisterBinaryLoader, so the index
// packages that may appear in a snapshot must be linked into the binary.
package persistence
