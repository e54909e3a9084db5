package table

// Admin is the kind-independent slice of the table surface. Clear, Export,
// Import and the size queries never look at element contents, so tooling that
// only administers a table can hold any Table[K, V] behind this interface;
// the (key kind, value kind) dispatch happens once, at construction.
type Admin interface {
	Namespace() string
	RowWidth() int
	Size() int
	ApproximateSize() (uint64, error)
	Clear() error
	Export(path string) error
	Import(path string) error
	Close() error
}
