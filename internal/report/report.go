// Package report is the report sink: it serializes the engine's final
// account table as CSV, exactly once per run.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"payengine/internal/engine"
)

// Header is the output header row.
var Header = []string{"client", "available", "held", "total", "locked"}

// Scale is the fixed number of fractional digits in rendered amounts.
const Scale = 4

// Write emits one row per account, sorted by client id. The engine hands
// accounts over in map order; sorting here keeps the report deterministic
// for diffing and tests.
func Write(w io.Writer, accounts []engine.Account) error {
	sorted := make([]engine.Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Client < sorted[j].Client })

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, a := range sorted {
		row := []string{
			strconv.FormatUint(uint64(a.Client), 10),
			a.Available.StringFixed(Scale),
			a.Held.StringFixed(Scale),
			a.Total.StringFixed(Scale),
			strconv.FormatBool(a.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write report row for client %d: %w", a.Client, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
