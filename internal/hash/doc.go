// Package hash wraps CRC32-Castagnoli, the checksum stored in snapshot
// headers. Go's crc32 package uses SSE4.2 or the ARM CRC extension when
// the CPU has them.
package hash
