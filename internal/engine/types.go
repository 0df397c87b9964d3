package engine

import "github.com/shopspring/decimal"

// EventType identifies the kind of ledger event parsed from an input row.
type EventType int

const (
	EventDeposit EventType = iota
	EventWithdrawal
	EventDispute
	EventResolve
	EventChargeback

	// EventUnknown marks an otherwise well-formed row whose type token was
	// not recognized. The engine logs it and moves on.
	EventUnknown
)

// String returns the lowercase type token used in input files.
func (t EventType) String() string {
	switch t {
	case EventDeposit:
		return "deposit"
	case EventWithdrawal:
		return "withdrawal"
	case EventDispute:
		return "dispute"
	case EventResolve:
		return "resolve"
	case EventChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// Event is a single validated ledger event. Events are built only by the
// ingest layer's parser; the engine never sees a malformed one.
type Event struct {
	Type   EventType
	Client uint16
	Tx     uint32

	// Amount carries the deposit/withdrawal amount, rounded to 4 fractional
	// digits at the parse boundary. It is meaningful only when HasAmount is
	// true; dispute, resolve and chargeback reference the amount of the
	// original record instead.
	Amount    decimal.Decimal
	HasAmount bool
}

// TxState tracks where a recorded transaction sits in the dispute lifecycle.
type TxState int

const (
	StateNormal TxState = iota
	StateDisputed
	StateResolved
	StateChargedBack
)

func (s TxState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateDisputed:
		return "disputed"
	case StateResolved:
		return "resolved"
	case StateChargedBack:
		return "charged_back"
	default:
		return "invalid"
	}
}

// TransactionRecord is one accepted deposit or withdrawal. Client and Amount
// are immutable after creation; only State changes, and only through the
// dispute lifecycle. Records are never deleted.
type TransactionRecord struct {
	Client uint16
	Tx     uint32
	Amount decimal.Decimal
	State  TxState
}

// Account is the committed balance state for one client.
//
// Invariant: Available + Held == Total after every applied event, and both
// Available and Held stay non-negative. Locked flips false->true on a
// chargeback and never back.
type Account struct {
	Client    uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

func newAccount(client uint16) *Account {
	return &Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
}
