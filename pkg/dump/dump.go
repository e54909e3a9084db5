// Package dump implements the flat binary artifact produced by a table
// export and consumed by import.
//
// Layout, all integers little-endian:
//
//	magic         uint32  ("MIMR")
//	formatVersion uint32  (currently 1)
//	repeated records:
//	  keyLength   uint8
//	  keyBytes    keyLength bytes
//	  valueLength uint32
//	  valueBytes  valueLength bytes
//
// No byte-order normalization is applied, so an artifact is only portable
// between hosts of identical endianness.
package dump

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ssargent/mimir/pkg/codec"
)

// Magic identifies a mimir dump artifact. Stored as the raw ASCII bytes.
const Magic = "MIMR"

// FormatVersion is the current artifact format. There is no schema evolution
// beyond this single version field.
const FormatVersion uint32 = 1

var (
	// ErrNotFound is returned when the artifact does not exist.
	ErrNotFound = errors.New("dump artifact not found")
	// ErrUnavailable is returned when the artifact cannot be opened for writing.
	ErrUnavailable = errors.New("dump artifact unavailable")
	// ErrMalformed is returned for a bad magic or an unsupported version.
	ErrMalformed = errors.New("malformed dump artifact")
	// ErrUnexpectedEnd is returned when the artifact ends mid-record.
	ErrUnexpectedEnd = errors.New("unexpected end of dump artifact")
)

// MaxKeyLen is the largest key the record framing can carry.
const MaxKeyLen = math.MaxUint8

// Writer streams records into a new dump artifact.
type Writer struct {
	f *os.File
	w *bufio.Writer
}

// Create opens the artifact at path for writing, truncating any previous
// one, and writes the header.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	w := &Writer{f: f, w: bufio.NewWriter(f)}
	w.w.WriteString(Magic)
	var version [4]byte
	binary.LittleEndian.PutUint32(version[:], FormatVersion)
	if _, err := w.w.Write(version[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return w, nil
}

// Append writes one record. A key over 255 bytes or a value over 2^32-1
// bytes cannot be framed; since the codec never produces either, such a
// record means the source partition was tampered with.
func (w *Writer) Append(key, value []byte) error {
	if len(key) > MaxKeyLen {
		return fmt.Errorf("%w: key of %d bytes exceeds dump framing", codec.ErrCorruptRecord, len(key))
	}
	if uint64(len(value)) > math.MaxUint32 {
		return fmt.Errorf("%w: value of %d bytes exceeds dump framing", codec.ErrCorruptRecord, len(value))
	}

	w.w.WriteByte(uint8(len(key)))
	w.w.Write(key)
	var vlen [4]byte
	binary.LittleEndian.PutUint32(vlen[:], uint32(len(value)))
	w.w.Write(vlen[:])
	if _, err := w.w.Write(value); err != nil {
		return err
	}
	return nil
}

// Close flushes buffered records and syncs the artifact to disk.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// Reader streams records out of an existing dump artifact.
type Reader struct {
	f *os.File
	r *bufio.Reader
}

// Open opens the artifact at path and validates its header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	r := &Reader{f: f, r: bufio.NewReader(f)}
	var header [8]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: short header", ErrMalformed)
	}
	if string(header[:4]) != Magic {
		f.Close()
		return nil, fmt.Errorf("%w: bad magic % x", ErrMalformed, header[:4])
	}
	if version := binary.LittleEndian.Uint32(header[4:]); version != FormatVersion {
		f.Close()
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, version)
	}
	return r, nil
}

// Next returns the next record. It returns io.EOF at a clean record boundary
// and ErrUnexpectedEnd if the artifact is truncated mid-record. The returned
// slices are owned by the caller.
func (r *Reader) Next() (key, value []byte, err error) {
	klen, err := r.r.ReadByte()
	if err == io.EOF {
		return nil, nil, io.EOF
	}
	if err != nil {
		return nil, nil, err
	}

	key = make([]byte, klen)
	if _, err := io.ReadFull(r.r, key); err != nil {
		return nil, nil, fmt.Errorf("%w: truncated key", ErrUnexpectedEnd)
	}

	var vlen [4]byte
	if _, err := io.ReadFull(r.r, vlen[:]); err != nil {
		return nil, nil, fmt.Errorf("%w: truncated value length", ErrUnexpectedEnd)
	}
	value = make([]byte, binary.LittleEndian.Uint32(vlen[:]))
	if _, err := io.ReadFull(r.r, value); err != nil {
		return nil, nil, fmt.Errorf("%w: truncated value", ErrUnexpectedEnd)
	}
	return key, value, nil
}

// Close closes the artifact.
func (r *Reader) Close() error {
	return r.f.Close()
}
