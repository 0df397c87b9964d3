package engine

// errors.go defines the rejection taxonomy. Every way an event can fail is
// one ErrorKind on a single Error type, which keeps matching in tests and
// stats collection flat instead of one wrapper type per operation.

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an event was rejected.
type ErrorKind int

const (
	// KindDuplicateTransaction: the tx id already exists in the ledger the
	// event targets (deposit ids and withdrawal ids are partitioned).
	KindDuplicateTransaction ErrorKind = iota

	// KindAccountLocked: the client's account processed a chargeback at
	// some point and rejects all further events.
	KindAccountLocked

	KindInvalidDeposit
	KindInvalidWithdrawal
	KindInvalidDispute
	KindInvalidResolve
	KindInvalidChargeback
)

func (k ErrorKind) String() string {
	switch k {
	case KindDuplicateTransaction:
		return "duplicate_transaction"
	case KindAccountLocked:
		return "account_locked"
	case KindInvalidDeposit:
		return "invalid_deposit"
	case KindInvalidWithdrawal:
		return "invalid_withdrawal"
	case KindInvalidDispute:
		return "invalid_dispute"
	case KindInvalidResolve:
		return "invalid_resolve"
	case KindInvalidChargeback:
		return "invalid_chargeback"
	default:
		return "unknown"
	}
}

// Error is a classified event rejection. Tx is set for every kind;
// Client is meaningful for KindAccountLocked.
type Error struct {
	Kind   ErrorKind
	Tx     uint32
	Client uint16
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDuplicateTransaction:
		return fmt.Sprintf("duplicate transaction id %d", e.Tx)
	case KindAccountLocked:
		return fmt.Sprintf("account %d is locked", e.Client)
	default:
		return fmt.Sprintf("%s for tx %d", e.Kind, e.Tx)
	}
}

// KindOf extracts the ErrorKind from err. The second return is false when
// err is not an engine rejection.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func errDuplicate(tx uint32) *Error {
	return &Error{Kind: KindDuplicateTransaction, Tx: tx}
}

func errLocked(client uint16, tx uint32) *Error {
	return &Error{Kind: KindAccountLocked, Client: client, Tx: tx}
}

func errInvalid(kind ErrorKind, tx uint32) *Error {
	return &Error{Kind: kind, Tx: tx}
}
