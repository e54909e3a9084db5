package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ErrCorruptRecord is returned when an engine record's bytes disagree with the
// row shape the table expects. A mismatch means the store was tampered with or
// a codec invariant was violated upstream; it is never a routine miss.
var ErrCorruptRecord = fmt.Errorf("corrupt record")

// AppendRow encodes a row of elements onto dst and returns the extended slice.
//
// Fixed-width kinds encode as a direct little-endian copy of the element
// bytes, len(row)*Width() bytes total. Bytes elements encode as concatenated
// {uint32 length, payload} units.
func AppendRow[T Element](dst []byte, row []T) ([]byte, error) {
	switch row := any(row).(type) {
	case []bool:
		for _, v := range row {
			if v {
				dst = append(dst, 1)
			} else {
				dst = append(dst, 0)
			}
		}
	case []int8:
		for _, v := range row {
			dst = append(dst, byte(v))
		}
	case []int16:
		for _, v := range row {
			dst = binary.LittleEndian.AppendUint16(dst, uint16(v))
		}
	case []int32:
		for _, v := range row {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
		}
	case []int64:
		for _, v := range row {
			dst = binary.LittleEndian.AppendUint64(dst, uint64(v))
		}
	case []uint8:
		dst = append(dst, row...)
	case []uint16:
		for _, v := range row {
			dst = binary.LittleEndian.AppendUint16(dst, v)
		}
	case []uint32:
		for _, v := range row {
			dst = binary.LittleEndian.AppendUint32(dst, v)
		}
	case []uint64:
		for _, v := range row {
			dst = binary.LittleEndian.AppendUint64(dst, v)
		}
	case []float32:
		for _, v := range row {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
		}
	case []float64:
		for _, v := range row {
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
		}
	case []string:
		for _, v := range row {
			if uint64(len(v)) > math.MaxUint32 {
				return nil, fmt.Errorf("%w: element of %d bytes exceeds uint32 length prefix", ErrCorruptRecord, len(v))
			}
			dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v)))
			dst = append(dst, v...)
		}
	}
	return dst, nil
}

// DecodeRow decodes an engine value into out, which must already be sized to
// the table's row width. The buffer must match the row shape exactly;
// anything else is ErrCorruptRecord.
func DecodeRow[T Element](data []byte, out []T) error {
	kind := KindOf[T]()
	if kind.Fixed() {
		if want := len(out) * kind.Width(); len(data) != want {
			return fmt.Errorf("%w: value is %d bytes, row of %d %s elements needs %d",
				ErrCorruptRecord, len(data), len(out), kind, want)
		}
	}
	switch out := any(out).(type) {
	case []bool:
		for i := range out {
			out[i] = data[i] != 0
		}
	case []int8:
		for i := range out {
			out[i] = int8(data[i])
		}
	case []int16:
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case []int32:
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
		}
	case []int64:
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
		}
	case []uint8:
		copy(out, data)
	case []uint16:
		for i := range out {
			out[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
	case []uint32:
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	case []uint64:
		for i := range out {
			out[i] = binary.LittleEndian.Uint64(data[i*8:])
		}
	case []float32:
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
	case []float64:
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
	case []string:
		off := 0
		for i := range out {
			if len(data)-off < 4 {
				return fmt.Errorf("%w: truncated length prefix at element %d", ErrCorruptRecord, i)
			}
			n := int(binary.LittleEndian.Uint32(data[off:]))
			off += 4
			if len(data)-off < n {
				return fmt.Errorf("%w: element %d declares %d bytes, %d remain", ErrCorruptRecord, i, n, len(data)-off)
			}
			out[i] = string(data[off : off+n])
			off += n
		}
		if off != len(data) {
			return fmt.Errorf("%w: %d trailing bytes after %d elements", ErrCorruptRecord, len(data)-off, len(out))
		}
	}
	return nil
}

// AppendKey encodes a single scalar key onto dst. Keys use the element's raw
// byte representation with no framing; the engine tracks key length itself.
func AppendKey[T Element](dst []byte, key T) []byte {
	switch key := any(key).(type) {
	case bool:
		if key {
			return append(dst, 1)
		}
		return append(dst, 0)
	case int8:
		return append(dst, byte(key))
	case int16:
		return binary.LittleEndian.AppendUint16(dst, uint16(key))
	case int32:
		return binary.LittleEndian.AppendUint32(dst, uint32(key))
	case int64:
		return binary.LittleEndian.AppendUint64(dst, uint64(key))
	case uint8:
		return append(dst, key)
	case uint16:
		return binary.LittleEndian.AppendUint16(dst, key)
	case uint32:
		return binary.LittleEndian.AppendUint32(dst, key)
	case uint64:
		return binary.LittleEndian.AppendUint64(dst, key)
	case float32:
		return binary.LittleEndian.AppendUint32(dst, math.Float32bits(key))
	case float64:
		return binary.LittleEndian.AppendUint64(dst, math.Float64bits(key))
	case string:
		return append(dst, key...)
	}
	return dst
}
