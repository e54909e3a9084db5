// Package codec converts typed element rows to and from engine byte strings.
//
// A table stores one row of value elements per key. Rows of a fixed-width
// kind (bool, the integer kinds, float32, float64) encode as a direct
// little-endian copy of the element bytes, so a row of N elements is exactly
// N*Width() bytes. Variable-length rows (kind Bytes) encode each element as a
// {uint32 length, payload} unit and concatenate the units.
//
// Decoding is strict: the engine-returned byte string must match the expected
// row shape exactly. A length mismatch on a fixed-width row, or a Bytes row
// whose units under- or overrun the buffer, returns ErrCorruptRecord — an
// uncorrupted store can never produce one, so callers treat it as tampering
// or an upstream codec defect rather than a recoverable miss.
//
// Scalar keys are encoded with AppendKey as the element's raw bytes with no
// framing; the engine's key-value interface carries key lengths explicitly.
//
// The encoding does not normalize byte order: artifacts and stores written on
// a little-endian host are only readable on hosts of the same endianness.
package codec
