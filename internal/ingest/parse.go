package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"payengine/internal/engine"
)

// Header is the canonical input header row.
var Header = []string{"type", "client", "tx", "amount"}

// AmountScale is how many fractional digits survive the parse boundary.
// Amounts are rounded (decimal half-away-from-zero) to this scale.
const AmountScale = 4

// CleanCell trims a raw CSV cell and strips the artifacts spreadsheet
// exports leave behind: the ="..." formula wrapper and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// ParseRow builds a validated event from one data row.
//
// A row needs at least type, client and tx fields. The amount field is
// optional here: deposits and withdrawals without one are forwarded anyway
// and rejected by the engine, because amount presence is an engine rule,
// not a shape rule. A non-empty amount must parse as a decimal. An
// unrecognized type token yields an Unknown event, not an error.
func ParseRow(row []string) (engine.Event, error) {
	if len(row) < 3 {
		return engine.Event{}, fmt.Errorf("row has %d fields, need at least 3", len(row))
	}

	client, err := strconv.ParseUint(CleanCell(row[1]), 10, 16)
	if err != nil {
		return engine.Event{}, fmt.Errorf("bad client id %q", row[1])
	}

	tx, err := strconv.ParseUint(CleanCell(row[2]), 10, 32)
	if err != nil {
		return engine.Event{}, fmt.Errorf("bad tx id %q", row[2])
	}

	ev := engine.Event{
		Client: uint16(client),
		Tx:     uint32(tx),
	}

	if len(row) > 3 {
		if raw := CleanCell(row[3]); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return engine.Event{}, fmt.Errorf("bad amount %q", row[3])
			}
			ev.Amount = d.Round(AmountScale)
			ev.HasAmount = true
		}
	}

	switch strings.ToLower(CleanCell(row[0])) {
	case "deposit":
		ev.Type = engine.EventDeposit
	case "withdrawal":
		ev.Type = engine.EventWithdrawal
	case "dispute":
		ev.Type = engine.EventDispute
	case "resolve":
		ev.Type = engine.EventResolve
	case "chargeback":
		ev.Type = engine.EventChargeback
	default:
		ev.Type = engine.EventUnknown
	}

	return ev, nil
}

// IsHeaderRow reports whether row looks like the canonical header. Only the
// first three columns are compared; the amount column is optional in the
// header too.
func IsHeaderRow(row []string) bool {
	if len(row) < 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if !strings.EqualFold(CleanCell(row[i]), Header[i]) {
			return false
		}
	}
	return true
}
