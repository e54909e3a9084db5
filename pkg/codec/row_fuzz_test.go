//go:build fuzz
// +build fuzz

package codec

import (
	"errors"
	"testing"
)

// FuzzDecodeRow_Bytes checks that arbitrary buffers either decode into a
// Bytes row that re-encodes to the identical buffer, or fail with
// ErrCorruptRecord — never panic or silently misparse.
func FuzzDecodeRow_Bytes(f *testing.F) {
	seed, _ := AppendRow(nil, []string{"alpha", "", "gamma"})
	f.Add(seed, 3)
	f.Add([]byte{}, 0)
	f.Add([]byte{0xff, 0xff, 0xff, 0xff}, 1)

	f.Fuzz(func(t *testing.T, data []byte, count int) {
		if count < 0 || count > 64 {
			t.Skip()
		}

		out := make([]string, count)
		if err := DecodeRow(data, out); err != nil {
			if !errors.Is(err, ErrCorruptRecord) {
				t.Fatalf("decode failed with unexpected error: %v", err)
			}
			return
		}

		encoded, err := AppendRow(nil, out)
		if err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
		if string(encoded) != string(data) {
			t.Fatalf("re-encode mismatch: got % x, want % x", encoded, data)
		}
	})
}
