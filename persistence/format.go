package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/vecann/index"
)

const (
	// Version is the snapshot format version written by Save.
	Version uint16 = 1

	headerSize = 32
)

var magic = [4]byte{'V', 'A', 'N', 'N'}

var (
	// ErrInvalidMagic is returned when the input is not a snapshot.
	ErrInvalidMagic = errors.New("invalid magic number")

	// ErrUnsupportedVersion is returned for snapshots written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")

	// ErrChecksumMismatch is returned when the payload fails verification.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrTruncated is returned when the input ends before the payload does.
	ErrTruncated = errors.New("truncated snapshot")

	// ErrCorruptPayload is returned when the header lengths are inconsistent.
	ErrCorruptPayload = errors.New("corrupt snapshot payload")
)

// ChecksumMismatchError carries the expected and computed checksums.
// It matches ErrChecksumMismatch under errors.Is.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Is reports whether target is ErrChecksumMismatch.
func (e *ChecksumMismatchError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// Header is the decoded snapshot header.
type Header struct {
	Version     uint16
	Kind        index.Kind
	Compression Compression
	RawLength   uint64
	StoredLen   uint64
	Checksum    uint32
}

func (h *Header) encode() []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], magic[:])
	binary.LittleEndian.PutUint16(buf[4:], h.Version)
	buf[6] = byte(h.Kind)
	buf[7] = byte(h.Compression)
	binary.LittleEndian.PutUint64(buf[8:], h.RawLength)
	binary.LittleEndian.PutUint64(buf[16:], h.StoredLen)
	binary.LittleEndian.PutUint32(buf[24:], h.Checksum)
	return buf
}

func decodeHeader(buf []byte) (*Header, error) {
	if len(buf) < headerSize {
		return nil, ErrTruncated
	}
	if [4]byte(buf[0:4]) != magic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, buf[0:4])
	}

	h := &Header{
		Version:     binary.LittleEndian.Uint16(buf[4:]),
		Kind:        index.Kind(buf[6]),
		Compression: Compression(buf[7]),
		RawLength:   binary.LittleEndian.Uint64(buf[8:]),
		StoredLen:   binary.LittleEndian.Uint64(buf[16:]),
		Checksum:    binary.LittleEndian.Uint32(buf[24:]),
	}
	if h.Version == 0 || h.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if !h.Compression.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, h.Compression)
	}
	if h.Compression == CompressionNone && h.StoredLen != h.RawLength {
		return nil, fmt.Errorf("%w: stored %d bytes for %d raw", ErrCorruptPayload, h.StoredLen, h.RawLength)
	}
	return h, nil
}
