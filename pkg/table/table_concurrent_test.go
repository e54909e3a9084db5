package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestConcurrent_FindInsert hammers one table from several goroutines. Run
// with -race; the invariant under test is that concurrent reads and writes
// against a bound namespace never corrupt rows or tear handles.
func TestConcurrent_FindInsert(t *testing.T) {
	tbl := openTestTable(t, Options{RowWidth: 2})
	keys, values := rows(64, 2)
	require.NoError(t, tbl.Insert(keys, values))

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			defaults := []float32{0, 0}
			for i := 0; i < 200; i++ {
				got, err := tbl.Find(keys, defaults)
				if err != nil {
					return err
				}
				if len(got) != len(values) {
					return errors.New("torn find result")
				}
			}
			return nil
		})
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				if err := tbl.Insert(keys, values); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

// TestConcurrent_ClearDuringFind interleaves lifecycle transitions with
// lookups. Finds must see either the old generation or a miss, never an
// error, because readers snapshot the handle before doing I/O.
func TestConcurrent_ClearDuringFind(t *testing.T) {
	tbl := openTestTable(t, Options{RowWidth: 2})
	keys, values := rows(16, 2)

	var g errgroup.Group
	g.Go(func() error {
		for i := 0; i < 100; i++ {
			if err := tbl.Insert(keys, values); err != nil {
				return err
			}
			if err := tbl.Clear(); err != nil {
				return err
			}
		}
		return nil
	})
	for w := 0; w < 3; w++ {
		g.Go(func() error {
			defaults := []float32{-1, -1}
			for i := 0; i < 300; i++ {
				if _, err := tbl.Find(keys, defaults); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
