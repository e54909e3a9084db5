package cmd

import (
	"fmt"

	"github.com/ssargent/mimir/pkg/config"
	"github.com/ssargent/mimir/pkg/table"
)

// tableOptions maps a config onto table construction parameters.
func tableOptions(cfg *config.Config) table.Options {
	return table.Options{
		Path:      cfg.DataDir,
		Namespace: cfg.Table.Namespace,
		RowWidth:  cfg.Table.RowWidth,
		ReadOnly:  cfg.Table.ReadOnly,
		DumpPath:  cfg.DumpPath,
	}
}

// openAdmin is the dispatch table from the configured (key_kind, value_kind)
// pair to a constructed table instance. Admin commands never touch element
// contents, but opening with the declared kinds keeps one code path for every
// table a config can describe.
func openAdmin(cfg *config.Config) (table.Admin, error) {
	opts := tableOptions(cfg)
	switch cfg.Table.KeyKind + "/" + cfg.Table.ValueKind {
	case "int32/float32":
		return table.Open[int32, float32](opts)
	case "int32/float64":
		return table.Open[int32, float64](opts)
	case "int64/float32":
		return table.Open[int64, float32](opts)
	case "int64/float64":
		return table.Open[int64, float64](opts)
	case "int64/int32":
		return table.Open[int64, int32](opts)
	case "int64/int64":
		return table.Open[int64, int64](opts)
	case "uint64/float32":
		return table.Open[uint64, float32](opts)
	case "string/float32":
		return table.Open[string, float32](opts)
	case "string/float64":
		return table.Open[string, float64](opts)
	case "string/bytes":
		return table.Open[string, string](opts)
	case "int64/bytes":
		return table.Open[int64, string](opts)
	default:
		return nil, fmt.Errorf("unsupported table kinds %s/%s", cfg.Table.KeyKind, cfg.Table.ValueKind)
	}
}
