package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/internal/hash"
)

// Options configures Save.
type Options struct {
	// Compression applied to the payload. Payloads that do not shrink are
	// stored uncompressed regardless.
	Compression Compression
}

// DefaultOptions contains the default options for Save.
var DefaultOptions = Options{
	Compression: CompressionNone,
}

// WithCompression selects the payload codec.
func WithCompression(c Compression) func(o *Options) {
	return func(o *Options) {
		o.Compression = c
	}
}

// Save writes a snapshot of idx to w.
func Save(w io.Writer, idx index.Index, optFns ...func(o *Options)) error {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if !opts.Compression.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCompression, opts.Compression)
	}

	payload, err := idx.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal %s index: %w", idx.Kind(), err)
	}

	stored, used, err := compress(payload, opts.Compression)
	if err != nil {
		return fmt.Errorf("compress payload: %w", err)
	}

	h := Header{
		Version:     Version,
		Kind:        idx.Kind(),
		Compression: used,
		RawLength:   uint64(len(payload)),
		StoredLen:   uint64(len(stored)),
		Checksum:    hash.CRC32C(payload),
	}
	if _, err := w.Write(h.encode()); err != nil {
		return err
	}
	_, err = w.Write(stored)
	return err
}

// ReadHeader reads and validates a snapshot header.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return decodeHeader(buf)
}

// Load reads a snapshot from r and reconstructs the index.
func Load(r io.Reader) (index.Index, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if h.StoredLen > math.MaxInt64 {
		return nil, fmt.Errorf("%w: stored length %d", ErrCorruptPayload, h.StoredLen)
	}

	stored, err := io.ReadAll(io.LimitReader(r, int64(h.StoredLen)))
	if err != nil {
		return nil, err
	}
	if uint64(len(stored)) != h.StoredLen {
		return nil, fmt.Errorf("%w: read %d of %d payload bytes", ErrTruncated, len(stored), h.StoredLen)
	}

	payload, err := decompress(stored, h.Compression, h.RawLength)
	if err != nil {
		return nil, err
	}
	if sum := hash.CRC32C(payload); sum != h.Checksum {
		return nil, &ChecksumMismatchError{Expected: h.Checksum, Actual: sum}
	}

	idx, err := index.LoadBinary(h.Kind, payload)
	if err != nil {
		return nil, fmt.Errorf("load %s index: %w", h.Kind, err)
	}
	return idx, nil
}

// SaveToFile writes a snapshot to filename. The file is replaced atomically:
// readers observe either the previous snapshot or the complete new one.
func SaveToFile(filename string, idx index.Index, optFns ...func(o *Options)) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := Save(buf, idx, optFns...); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// LoadFromFile reads a snapshot written by SaveToFile.
func LoadFromFile(filename string) (index.Index, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(bufio.NewReaderSize(f, 256*1024))
}
