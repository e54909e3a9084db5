package table

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// Key space layout inside one pebble connection. Registry records live under
// tagRegistry and map a namespace name to its current generation id; data
// records live under tagData followed by the generation id and the raw key.
const (
	tagRegistry = 0x00
	tagData     = 0x01
)

// nsHandle is an immutable snapshot of a bound namespace. Readers capture one
// and do their engine I/O against it without holding the lifecycle lock.
type nsHandle struct {
	prefix []byte // tagData + generation id
}

// dataKey maps a raw codec key into the namespace's slice of the key space.
func (h *nsHandle) dataKey(raw []byte) []byte {
	k := make([]byte, 0, len(h.prefix)+len(raw))
	k = append(k, h.prefix...)
	return append(k, raw...)
}

// bounds returns the half-open key range covering every record in the
// namespace.
func (h *nsHandle) bounds() (lower, upper []byte) {
	lower = h.prefix
	upper = make([]byte, len(h.prefix))
	copy(upper, h.prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return lower, upper[:i+1]
		}
	}
	return lower, nil // unbounded; cannot happen for a ksuid prefix
}

// namespace tracks the lifecycle of one named logical partition: Unbound
// until first write access (or until the registry record is found at open),
// Bound until Clear drops the partition.
//
// Lifecycle transitions are serialized by mu; the current handle is published
// through an atomic pointer so Find/Insert/Remove never block on a concurrent
// transition longer than the pointer load.
type namespace struct {
	db       *pebble.DB
	name     string
	readOnly bool

	mu  sync.Mutex
	cur atomic.Pointer[nsHandle]
}

func registryKey(name string) []byte {
	return append([]byte{tagRegistry}, name...)
}

// openNamespace resolves name against the registry. A missing registry record
// leaves the namespace Unbound.
func openNamespace(db *pebble.DB, name string, readOnly bool) (*namespace, error) {
	n := &namespace{db: db, name: name, readOnly: readOnly}

	id, closer, err := db.Get(registryKey(name))
	if err == pebble.ErrNotFound {
		return n, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve namespace %q: %w", name, err)
	}
	prefix := make([]byte, 0, 1+len(id))
	prefix = append(prefix, tagData)
	prefix = append(prefix, id...)
	closer.Close()

	n.cur.Store(&nsHandle{prefix: prefix})
	return n, nil
}

// snapshot returns the current handle, or nil while Unbound.
func (n *namespace) snapshot() *nsHandle {
	return n.cur.Load()
}

// resolveOrCreate returns the bound handle, creating the partition on first
// use. It returns (nil, nil) when the namespace is Unbound and the store is
// read-only: creation is forbidden, and the caller decides whether that means
// "all misses" (Find) or ErrPermissionDenied (mutations).
func (n *namespace) resolveOrCreate() (*nsHandle, error) {
	if h := n.cur.Load(); h != nil {
		return h, nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if h := n.cur.Load(); h != nil {
		return h, nil
	}
	if n.readOnly {
		return nil, nil
	}

	id := ksuid.New()
	if err := n.db.Set(registryKey(n.name), id.Bytes(), pebble.NoSync); err != nil {
		return nil, fmt.Errorf("create namespace %q: %w", n.name, err)
	}
	h := &nsHandle{prefix: append([]byte{tagData}, id.Bytes()...)}
	n.cur.Store(h)
	return h, nil
}

// drop destroys the partition and transitions to Unbound. Dropping an Unbound
// namespace is a no-op success; dropping a Bound one while read-only is
// ErrPermissionDenied. The range delete and the registry delete commit as one
// atomic batch.
func (n *namespace) drop() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	h := n.cur.Load()
	if h == nil {
		return nil
	}
	if n.readOnly {
		return fmt.Errorf("clear namespace %q: %w", n.name, ErrPermissionDenied)
	}

	lower, upper := h.bounds()
	b := n.db.NewBatch()
	if err := b.DeleteRange(lower, upper, nil); err != nil {
		b.Close()
		return fmt.Errorf("clear namespace %q: %w", n.name, err)
	}
	if err := b.Delete(registryKey(n.name), nil); err != nil {
		b.Close()
		return fmt.Errorf("clear namespace %q: %w", n.name, err)
	}
	if err := b.Commit(pebble.NoSync); err != nil {
		return fmt.Errorf("clear namespace %q: %w", n.name, err)
	}

	n.cur.Store(nil)
	return nil
}
