package table

import (
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *pebble.DB {
	t.Helper()
	db, err := pebble.Open(filepath.Join(t.TempDir(), "db"), &pebble.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNamespace_LazyCreate(t *testing.T) {
	db := openTestDB(t)

	ns, err := openNamespace(db, "vectors", false)
	require.NoError(t, err)
	assert.Nil(t, ns.snapshot(), "namespace should start unbound")

	h, err := ns.resolveOrCreate()
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, h, ns.snapshot())

	// A second resolve returns the same handle, not a new generation.
	again, err := ns.resolveOrCreate()
	require.NoError(t, err)
	assert.Same(t, h, again)
}

func TestNamespace_PersistsAcrossOpen(t *testing.T) {
	db := openTestDB(t)

	first, err := openNamespace(db, "vectors", false)
	require.NoError(t, err)
	h1, err := first.resolveOrCreate()
	require.NoError(t, err)

	second, err := openNamespace(db, "vectors", false)
	require.NoError(t, err)
	h2 := second.snapshot()
	require.NotNil(t, h2, "registry record should bind the namespace at open")
	assert.Equal(t, h1.prefix, h2.prefix)
}

func TestNamespace_ReadOnlyCannotCreate(t *testing.T) {
	db := openTestDB(t)

	ns, err := openNamespace(db, "vectors", true)
	require.NoError(t, err)

	h, err := ns.resolveOrCreate()
	require.NoError(t, err)
	assert.Nil(t, h, "read-only resolve of an unbound namespace must not create")
}

func TestNamespace_DropDeletesOnlyOwnRecords(t *testing.T) {
	db := openTestDB(t)

	mine, err := openNamespace(db, "mine", false)
	require.NoError(t, err)
	other, err := openNamespace(db, "other", false)
	require.NoError(t, err)

	hm, err := mine.resolveOrCreate()
	require.NoError(t, err)
	ho, err := other.resolveOrCreate()
	require.NoError(t, err)

	require.NoError(t, db.Set(hm.dataKey([]byte("k")), []byte("mine"), pebble.NoSync))
	require.NoError(t, db.Set(ho.dataKey([]byte("k")), []byte("other"), pebble.NoSync))

	require.NoError(t, mine.drop())
	assert.Nil(t, mine.snapshot())

	_, _, err = db.Get(hm.dataKey([]byte("k")))
	assert.Equal(t, pebble.ErrNotFound, err)

	v, closer, err := db.Get(ho.dataKey([]byte("k")))
	require.NoError(t, err)
	assert.Equal(t, "other", string(v))
	closer.Close()
}

func TestNamespace_DropIdempotent(t *testing.T) {
	db := openTestDB(t)

	ns, err := openNamespace(db, "vectors", false)
	require.NoError(t, err)
	require.NoError(t, ns.drop(), "dropping an unbound namespace is a no-op")

	_, err = ns.resolveOrCreate()
	require.NoError(t, err)
	require.NoError(t, ns.drop())
	require.NoError(t, ns.drop())
}

func TestNamespace_ReadOnlyDropBound(t *testing.T) {
	db := openTestDB(t)

	rw, err := openNamespace(db, "vectors", false)
	require.NoError(t, err)
	_, err = rw.resolveOrCreate()
	require.NoError(t, err)

	ro, err := openNamespace(db, "vectors", true)
	require.NoError(t, err)
	assert.ErrorIs(t, ro.drop(), ErrPermissionDenied)
	assert.NotNil(t, ro.snapshot(), "failed drop must leave the handle bound")
}

func TestNamespace_FreshGenerationAfterDrop(t *testing.T) {
	db := openTestDB(t)

	ns, err := openNamespace(db, "vectors", false)
	require.NoError(t, err)
	h1, err := ns.resolveOrCreate()
	require.NoError(t, err)
	require.NoError(t, ns.drop())

	h2, err := ns.resolveOrCreate()
	require.NoError(t, err)
	assert.NotEqual(t, h1.prefix, h2.prefix, "recreate must use a fresh generation id")
}

func TestHandleBounds(t *testing.T) {
	h := &nsHandle{prefix: []byte{tagData, 0x10, 0x20}}
	lower, upper := h.bounds()
	assert.Equal(t, []byte{tagData, 0x10, 0x20}, lower)
	assert.Equal(t, []byte{tagData, 0x10, 0x21}, upper)

	h = &nsHandle{prefix: []byte{tagData, 0xff, 0xff}}
	lower, upper = h.bounds()
	assert.Equal(t, []byte{tagData, 0xff, 0xff}, lower)
	assert.Equal(t, []byte{tagData + 1}, upper)
}
