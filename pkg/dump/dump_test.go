package dump

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/mimir/pkg/codec"
)

func artifactPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "table.dump")
}

func TestDump_RoundTrip(t *testing.T) {
	path := artifactPath(t)

	records := map[string]string{
		"alpha": "first value",
		"beta":  "",
		"":      "value for empty key",
	}

	w, err := Create(path)
	require.NoError(t, err)
	for k, v := range records {
		require.NoError(t, w.Append([]byte(k), []byte(v)))
	}
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	got := map[string]string{}
	for {
		k, v, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got[string(k)] = string(v)
	}
	assert.Equal(t, records, got)
}

func TestDump_EmptyArtifact(t *testing.T) {
	path := artifactPath(t)

	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, _, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.dump"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_BadMagic(t *testing.T) {
	path := artifactPath(t)
	require.NoError(t, os.WriteFile(path, []byte("NOPE\x01\x00\x00\x00"), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestOpen_UnsupportedVersion(t *testing.T) {
	path := artifactPath(t)
	header := append([]byte(Magic), 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(header[4:], FormatVersion+1)
	require.NoError(t, os.WriteFile(path, header, 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestOpen_ShortHeader(t *testing.T) {
	path := artifactPath(t)
	require.NoError(t, os.WriteFile(path, []byte("MIM"), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestNext_Truncated(t *testing.T) {
	path := artifactPath(t)
	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Append([]byte("key"), []byte("value")))
	require.NoError(t, w.Close())

	full, err := os.ReadFile(path)
	require.NoError(t, err)

	// Cut inside the key, inside the value length, and inside the value.
	for _, cut := range []int{9, 13, len(full) - 1} {
		require.NoError(t, os.WriteFile(path, full[:cut], 0o644))

		r, err := Open(path)
		require.NoError(t, err)
		_, _, err = r.Next()
		assert.ErrorIs(t, err, ErrUnexpectedEnd, "cut at %d", cut)
		r.Close()
	}
}

func TestAppend_OversizedKey(t *testing.T) {
	path := artifactPath(t)
	w, err := Create(path)
	require.NoError(t, err)
	defer w.Close()

	err = w.Append(make([]byte, MaxKeyLen+1), nil)
	assert.ErrorIs(t, err, codec.ErrCorruptRecord)
}

func TestCreate_Unwritable(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "deep", "table.dump"))
	assert.ErrorIs(t, err, ErrUnavailable)
}
