// Package table implements a persistent, batched key→vector lookup table on
// top of pebble, used as durable storage for large sparse embedding tables.
//
// Each Table owns one engine connection and one namespace (a named logical
// partition inside the connection). Keys map to fixed-width rows of value
// elements; lookups fall back to caller-supplied default rows, and the whole
// namespace can be exported to and reloaded from a flat binary dump artifact.
package table

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/ssargent/mimir/pkg/codec"
	"github.com/ssargent/mimir/pkg/dump"
)

const (
	// batchThreshold is the key count at which operations switch from
	// sequential point requests to one multi-key batched request. The two
	// paths differ only in engine round trips, never in results.
	batchThreshold = 2

	// importChunkSize is the number of records committed per atomic batch
	// during Import. Chunking bounds peak memory and leaves completed chunks
	// durable if the process dies mid-import.
	importChunkSize = 128
)

// Key is the closed set of element types usable as table keys.
type Key interface {
	int32 | int64 | uint64 | string
}

// Value is the closed set of element types usable as value elements.
type Value = codec.Element

// Options configure one table.
type Options struct {
	// Path is the engine data directory.
	Path string
	// Namespace names the logical partition this table owns within the
	// engine connection. A table owns at most one namespace.
	Namespace string
	// RowWidth is the fixed number of value elements stored per key.
	RowWidth int
	// ReadOnly forbids Insert, Remove, Clear and namespace creation.
	ReadOnly bool
	// DumpPath is the default artifact location for Export and Import when
	// the caller passes an empty path. Defaults to <Path>/<Namespace>.dump.
	DumpPath string
}

// Table is a key→vector lookup table over one namespace. K and V fix the key
// and value element kinds for the table's lifetime; the row width is fixed at
// construction.
//
// Tables are safe for concurrent use: namespace lifecycle transitions are
// serialized internally, and readers operate on handle snapshots.
type Table[K Key, V codec.Element] struct {
	db       *pebble.DB
	ns       *namespace
	rowWidth int
	readOnly bool
	dumpPath string

	closeOnce sync.Once
	closeErr  error
}

// Open opens the engine at opts.Path and resolves the namespace. The
// namespace is created lazily on first write access, not here.
func Open[K Key, V codec.Element](opts Options) (*Table[K, V], error) {
	if opts.RowWidth < 1 {
		return nil, fmt.Errorf("%w: row width %d, need at least 1", ErrInvalidArgument, opts.RowWidth)
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("%w: empty namespace name", ErrInvalidArgument)
	}

	db, err := pebble.Open(opts.Path, &pebble.Options{ReadOnly: opts.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("open engine at %s: %w", opts.Path, err)
	}
	ns, err := openNamespace(db, opts.Namespace, opts.ReadOnly)
	if err != nil {
		db.Close()
		return nil, err
	}

	dumpPath := opts.DumpPath
	if dumpPath == "" {
		dumpPath = filepath.Join(opts.Path, opts.Namespace+".dump")
	}

	return &Table[K, V]{
		db:       db,
		ns:       ns,
		rowWidth: opts.RowWidth,
		readOnly: opts.ReadOnly,
		dumpPath: dumpPath,
	}, nil
}

// Close releases the namespace handle and then the engine connection, in
// that order. Close is idempotent.
func (t *Table[K, V]) Close() error {
	t.closeOnce.Do(func() {
		t.ns.cur.Store(nil)
		t.closeErr = t.db.Close()
	})
	return t.closeErr
}

// RowWidth returns the fixed number of value elements per key.
func (t *Table[K, V]) RowWidth() int {
	return t.rowWidth
}

// Namespace returns the name of the logical partition this table owns.
func (t *Table[K, V]) Namespace() string {
	return t.ns.name
}

// Size always reports 0. A true count would require a full namespace scan;
// the conventional placeholder is a documented limitation of the contract,
// and callers needing an estimate should use ApproximateSize.
func (t *Table[K, V]) Size() int {
	return 0
}

// ApproximateSize returns the engine's disk-usage estimate for the
// namespace, in bytes. An unbound namespace estimates to 0.
func (t *Table[K, V]) ApproximateSize() (uint64, error) {
	h := t.ns.snapshot()
	if h == nil {
		return 0, nil
	}
	lower, upper := h.bounds()
	return t.db.EstimateDiskUsage(lower, upper)
}

// Find looks up one row per key. Missing keys are filled from defaults,
// which holds one or more rows of the table's width: the miss at output row
// i receives default row i mod defaultRows, broadcast cyclically in output
// order. The result is row-major, len(keys)*RowWidth elements.
func (t *Table[K, V]) Find(keys []K, defaults []V) (found []V, err error) {
	start := time.Now()
	defer func() { metrics.recordOperation(t.ns.name, "find", err, start) }()

	w := t.rowWidth
	if len(defaults) == 0 || len(defaults)%w != 0 {
		return nil, fmt.Errorf("%w: %d default elements is not a whole number of rows of width %d",
			ErrInvalidArgument, len(defaults), w)
	}

	out := make([]V, len(keys)*w)
	h, err := t.ns.resolveOrCreate()
	if err != nil {
		return nil, err
	}
	metrics.keysLookedUp.WithLabelValues(t.ns.name).Add(float64(len(keys)))

	if h == nil {
		// Unbound and read-only: the partition does not exist, so every key
		// is a miss.
		for i := range keys {
			fillDefaultRow(out, i, w, defaults)
		}
		metrics.lookupMisses.WithLabelValues(t.ns.name).Add(float64(len(keys)))
		return out, nil
	}

	// Point reads below the threshold; one consistent snapshot covering the
	// whole batch at or above it.
	get := t.db.Get
	if len(keys) >= batchThreshold {
		snap := t.db.NewSnapshot()
		defer snap.Close()
		get = snap.Get
	}

	var kbuf []byte
	for i, k := range keys {
		kbuf = codec.AppendKey(kbuf[:0], k)
		data, closer, err := get(h.dataKey(kbuf))
		if err == pebble.ErrNotFound {
			fillDefaultRow(out, i, w, defaults)
			metrics.lookupMisses.WithLabelValues(t.ns.name).Inc()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find in namespace %q: %w", t.ns.name, err)
		}
		decErr := codec.DecodeRow(data, out[i*w:(i+1)*w])
		closer.Close()
		if decErr != nil {
			return nil, fmt.Errorf("find in namespace %q: %w", t.ns.name, decErr)
		}
	}
	return out, nil
}

// fillDefaultRow copies the cyclically-selected default row into output row i.
func fillDefaultRow[V codec.Element](out []V, i, w int, defaults []V) {
	rows := len(defaults) / w
	d := (i % rows) * w
	copy(out[i*w:(i+1)*w], defaults[d:d+w])
}

// Insert stores one row per key. values is row-major and must hold exactly
// len(keys)*RowWidth elements. At or above the batch threshold all writes
// commit as one atomic batch.
func (t *Table[K, V]) Insert(keys []K, values []V) (err error) {
	start := time.Now()
	defer func() { metrics.recordOperation(t.ns.name, "insert", err, start) }()

	w := t.rowWidth
	if len(values) != len(keys)*w {
		return fmt.Errorf("%w: %d values for %d keys of row width %d",
			ErrInvalidArgument, len(values), len(keys), w)
	}
	if t.readOnly {
		return fmt.Errorf("insert into namespace %q: %w", t.ns.name, ErrPermissionDenied)
	}

	h, err := t.ns.resolveOrCreate()
	if err != nil {
		return err
	}

	var b *pebble.Batch
	if len(keys) >= batchThreshold {
		b = t.db.NewBatch()
		defer b.Close()
	}

	var kbuf, vbuf []byte
	for i, k := range keys {
		kbuf = codec.AppendKey(kbuf[:0], k)
		vbuf, err = codec.AppendRow(vbuf[:0], values[i*w:(i+1)*w])
		if err != nil {
			return fmt.Errorf("insert into namespace %q: %w", t.ns.name, err)
		}
		if b != nil {
			err = b.Set(h.dataKey(kbuf), vbuf, nil)
		} else {
			err = t.db.Set(h.dataKey(kbuf), vbuf, pebble.NoSync)
		}
		if err != nil {
			return fmt.Errorf("insert into namespace %q: %w", t.ns.name, err)
		}
	}

	if b != nil {
		if err := b.Commit(pebble.NoSync); err != nil {
			return fmt.Errorf("insert into namespace %q: %w", t.ns.name, err)
		}
		metrics.batchCommitsTotal.WithLabelValues(t.ns.name, "insert").Inc()
	}
	return nil
}

// Remove deletes the rows for keys. Deleting an absent key succeeds. At or
// above the batch threshold all deletes commit as one atomic batch.
func (t *Table[K, V]) Remove(keys []K) (err error) {
	start := time.Now()
	defer func() { metrics.recordOperation(t.ns.name, "remove", err, start) }()

	if t.readOnly {
		return fmt.Errorf("remove from namespace %q: %w", t.ns.name, ErrPermissionDenied)
	}

	h, err := t.ns.resolveOrCreate()
	if err != nil {
		return err
	}

	var b *pebble.Batch
	if len(keys) >= batchThreshold {
		b = t.db.NewBatch()
		defer b.Close()
	}

	var kbuf []byte
	for _, k := range keys {
		kbuf = codec.AppendKey(kbuf[:0], k)
		if b != nil {
			err = b.Delete(h.dataKey(kbuf), nil)
		} else {
			err = t.db.Delete(h.dataKey(kbuf), pebble.NoSync)
		}
		if err != nil {
			return fmt.Errorf("remove from namespace %q: %w", t.ns.name, err)
		}
	}

	if b != nil {
		if err := b.Commit(pebble.NoSync); err != nil {
			return fmt.Errorf("remove from namespace %q: %w", t.ns.name, err)
		}
		metrics.batchCommitsTotal.WithLabelValues(t.ns.name, "remove").Inc()
	}
	return nil
}

// Clear destroys the namespace's partition and every record in it. Clearing
// an already-empty (unbound) namespace is a no-op success.
func (t *Table[K, V]) Clear() (err error) {
	start := time.Now()
	defer func() { metrics.recordOperation(t.ns.name, "clear", err, start) }()
	return t.ns.drop()
}

// Export writes every record in the namespace to a dump artifact at path, in
// the engine's native iteration order. An empty path uses the table's
// configured default. An unbound namespace exports a header-only artifact.
func (t *Table[K, V]) Export(path string) (err error) {
	start := time.Now()
	defer func() { metrics.recordOperation(t.ns.name, "export", err, start) }()

	if path == "" {
		path = t.dumpPath
	}

	h := t.ns.snapshot()
	w, err := dump.Create(path)
	if err != nil {
		return err
	}

	if h != nil {
		lower, upper := h.bounds()
		it, err := t.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
		if err != nil {
			w.Close()
			return fmt.Errorf("export namespace %q: %w", t.ns.name, err)
		}
		for it.First(); it.Valid(); it.Next() {
			if err := w.Append(it.Key()[len(h.prefix):], it.Value()); err != nil {
				it.Close()
				w.Close()
				return fmt.Errorf("export namespace %q: %w", t.ns.name, err)
			}
		}
		if err := it.Close(); err != nil {
			w.Close()
			return fmt.Errorf("export namespace %q: %w", t.ns.name, err)
		}
	}
	return w.Close()
}

// Import fully replaces the namespace contents from the dump artifact at
// path (the table's configured default when empty). The namespace is cleared
// before the artifact is opened or validated, so a missing or malformed
// artifact leaves the table empty; Import is not safe against data loss on a
// corrupt source. Records load in chunks of importChunkSize, each committed
// as one atomic batch: chunks completed before an interruption persist, the
// in-flight one does not.
func (t *Table[K, V]) Import(path string) (err error) {
	start := time.Now()
	defer func() { metrics.recordOperation(t.ns.name, "import", err, start) }()

	if path == "" {
		path = t.dumpPath
	}

	if err := t.Clear(); err != nil {
		return err
	}

	r, err := dump.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	h, err := t.ns.resolveOrCreate()
	if err != nil {
		return err
	}
	if h == nil {
		return fmt.Errorf("import into namespace %q: %w", t.ns.name, ErrPermissionDenied)
	}

	b := t.db.NewBatch()
	pending := 0
	commit := func() error {
		defer b.Close()
		if err := b.Commit(pebble.NoSync); err != nil {
			return fmt.Errorf("import into namespace %q: %w", t.ns.name, err)
		}
		metrics.batchCommitsTotal.WithLabelValues(t.ns.name, "import").Inc()
		return nil
	}

	for {
		key, value, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			b.Close()
			return err
		}
		if err := b.Set(h.dataKey(key), value, nil); err != nil {
			b.Close()
			return fmt.Errorf("import into namespace %q: %w", t.ns.name, err)
		}
		pending++
		if pending == importChunkSize {
			if err := commit(); err != nil {
				return err
			}
			b = t.db.NewBatch()
			pending = 0
		}
	}

	if pending > 0 {
		return commit()
	}
	return b.Close()
}
