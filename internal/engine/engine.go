package engine

import (
	"log/slog"
)

// Default map pre-size hints. Input files routinely carry hundreds of
// thousands of rows, so the ledgers start out well above Go's default
// bucket count; both are tunable via config.
const (
	DefaultAccountCapacity = 1024
	DefaultLedgerCapacity  = 4096
)

// Config carries the engine's capacity hints.
type Config struct {
	// AccountCapacity pre-sizes the account table.
	AccountCapacity int

	// LedgerCapacity pre-sizes each of the two transaction ledgers.
	LedgerCapacity int
}

// Stats counts what happened to the events the engine consumed.
type Stats struct {
	Applied  int
	Unknown  int
	Rejected map[ErrorKind]int
}

// RejectedTotal sums rejections across all kinds.
func (s Stats) RejectedTotal() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// Engine applies ledger events to client accounts. It is the sole owner and
// mutator of the two transaction ledgers and the account table, and it is
// not safe for concurrent use: exactly one goroutine drives it.
type Engine struct {
	deposits    map[uint32]*TransactionRecord
	withdrawals map[uint32]*TransactionRecord
	accounts    map[uint16]*Account

	logger *slog.Logger
	stats  Stats
}

// New creates an engine with pre-sized state maps. A nil logger falls back
// to slog.Default.
func New(cfg Config, logger *slog.Logger) *Engine {
	if cfg.AccountCapacity <= 0 {
		cfg.AccountCapacity = DefaultAccountCapacity
	}
	if cfg.LedgerCapacity <= 0 {
		cfg.LedgerCapacity = DefaultLedgerCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		deposits:    make(map[uint32]*TransactionRecord, cfg.LedgerCapacity),
		withdrawals: make(map[uint32]*TransactionRecord, cfg.LedgerCapacity),
		accounts:    make(map[uint16]*Account, cfg.AccountCapacity),
		logger:      logger,
		stats:       Stats{Rejected: make(map[ErrorKind]int)},
	}
}

// Run consumes events until the channel is closed and drained, applying each
// one in arrival order. Rejections are logged and recovered; Run never stops
// early. The caller reads the final account table via Snapshots afterwards.
func (e *Engine) Run(events <-chan Event) {
	for ev := range events {
		if err := e.Apply(ev); err != nil {
			e.logger.Warn("event rejected",
				"type", ev.Type.String(),
				"client", ev.Client,
				"tx", ev.Tx,
				"error", err,
			)
		}
	}
}

// Apply validates one event and, if it passes, mutates the ledger state.
// Validation happens entirely before mutation: on any non-nil return the
// engine state is unchanged. The returned error is always an *Error.
func (e *Engine) Apply(ev Event) error {
	var err error

	switch ev.Type {
	case EventDeposit:
		err = e.applyDeposit(ev)
	case EventWithdrawal:
		err = e.applyWithdrawal(ev)
	case EventDispute:
		err = e.applyDispute(ev)
	case EventResolve:
		err = e.applyResolve(ev)
	case EventChargeback:
		err = e.applyChargeback(ev)
	case EventUnknown:
		e.logger.Warn("skipping event with unknown type", "client", ev.Client, "tx", ev.Tx)
		e.stats.Unknown++
		return nil
	default:
		e.logger.Warn("skipping event with invalid type", "client", ev.Client, "tx", ev.Tx)
		e.stats.Unknown++
		return nil
	}

	if err != nil {
		if kind, ok := KindOf(err); ok {
			e.stats.Rejected[kind]++
		}
		return err
	}

	e.stats.Applied++
	return nil
}

// Snapshots returns a copy of every account known to the engine. Iteration
// order is unspecified; callers needing determinism sort explicitly.
func (e *Engine) Snapshots() []Account {
	out := make([]Account, 0, len(e.accounts))
	for _, a := range e.accounts {
		out = append(out, *a)
	}
	return out
}

// Stats returns a copy of the engine's counters.
func (e *Engine) Stats() Stats {
	rejected := make(map[ErrorKind]int, len(e.stats.Rejected))
	for k, v := range e.stats.Rejected {
		rejected[k] = v
	}
	return Stats{
		Applied:  e.stats.Applied,
		Unknown:  e.stats.Unknown,
		Rejected: rejected,
	}
}

// account returns the client's account, creating a zero-balance one on the
// first event that references the client id.
func (e *Engine) account(client uint16) *Account {
	a, ok := e.accounts[client]
	if !ok {
		a = newAccount(client)
		e.accounts[client] = a
	}
	return a
}

// applyDeposit credits available and total. The duplicate-id check comes
// before the lock check.
func (e *Engine) applyDeposit(ev Event) error {
	if _, dup := e.deposits[ev.Tx]; dup {
		return errDuplicate(ev.Tx)
	}
	if !ev.HasAmount || !ev.Amount.IsPositive() {
		return errInvalid(KindInvalidDeposit, ev.Tx)
	}

	acct := e.account(ev.Client)
	if acct.Locked {
		return errLocked(ev.Client, ev.Tx)
	}

	acct.Available = acct.Available.Add(ev.Amount)
	acct.Total = acct.Total.Add(ev.Amount)
	e.deposits[ev.Tx] = &TransactionRecord{
		Client: ev.Client,
		Tx:     ev.Tx,
		Amount: ev.Amount,
		State:  StateNormal,
	}
	return nil
}

// applyWithdrawal debits available and total, never below zero.
func (e *Engine) applyWithdrawal(ev Event) error {
	if _, dup := e.withdrawals[ev.Tx]; dup {
		return errDuplicate(ev.Tx)
	}

	acct := e.account(ev.Client)
	if acct.Locked {
		return errLocked(ev.Client, ev.Tx)
	}
	if !ev.HasAmount || !ev.Amount.IsPositive() || acct.Available.Cmp(ev.Amount) < 0 {
		return errInvalid(KindInvalidWithdrawal, ev.Tx)
	}

	acct.Available = acct.Available.Sub(ev.Amount)
	acct.Total = acct.Total.Sub(ev.Amount)
	e.withdrawals[ev.Tx] = &TransactionRecord{
		Client: ev.Client,
		Tx:     ev.Tx,
		Amount: ev.Amount,
		State:  StateNormal,
	}
	return nil
}

// applyDispute opens the lifecycle on a Normal record. The deposit ledger is
// consulted first; a record found there settles the lookup even if its other
// preconditions fail.
func (e *Engine) applyDispute(ev Event) error {
	acct := e.account(ev.Client)
	if acct.Locked {
		return errLocked(ev.Client, ev.Tx)
	}

	if rec, ok := e.deposits[ev.Tx]; ok {
		// Holding a deposit needs the funds to still be available.
		if rec.Client != ev.Client || rec.State != StateNormal || acct.Available.Cmp(rec.Amount) < 0 {
			return errInvalid(KindInvalidDispute, ev.Tx)
		}
		acct.Available = acct.Available.Sub(rec.Amount)
		acct.Held = acct.Held.Add(rec.Amount)
		rec.State = StateDisputed
		return nil
	}

	if rec, ok := e.withdrawals[ev.Tx]; ok {
		if rec.Client != ev.Client || rec.State != StateNormal {
			return errInvalid(KindInvalidDispute, ev.Tx)
		}
		// The client contests a past debit: reinstate the amount into held.
		// Total grows because the funds may come back.
		acct.Held = acct.Held.Add(rec.Amount)
		acct.Total = acct.Total.Add(rec.Amount)
		rec.State = StateDisputed
		return nil
	}

	return errInvalid(KindInvalidDispute, ev.Tx)
}

// applyResolve closes a dispute with the original transaction standing as
// recorded.
func (e *Engine) applyResolve(ev Event) error {
	acct := e.account(ev.Client)
	if acct.Locked {
		return errLocked(ev.Client, ev.Tx)
	}

	rec, fromDeposits := e.lookup(ev.Tx)
	if rec == nil || rec.Client != ev.Client || rec.State != StateDisputed || acct.Held.Cmp(rec.Amount) < 0 {
		return errInvalid(KindInvalidResolve, ev.Tx)
	}

	acct.Held = acct.Held.Sub(rec.Amount)
	if fromDeposits {
		// The deposit stands; the held funds return to use.
		acct.Available = acct.Available.Add(rec.Amount)
	} else {
		// The withdrawal stands; undo the temporary reinstatement.
		acct.Total = acct.Total.Sub(rec.Amount)
	}
	rec.State = StateResolved
	return nil
}

// applyChargeback reverses the disputed transaction and locks the account
// for good.
func (e *Engine) applyChargeback(ev Event) error {
	acct := e.account(ev.Client)
	if acct.Locked {
		return errLocked(ev.Client, ev.Tx)
	}

	rec, fromDeposits := e.lookup(ev.Tx)
	if rec == nil || rec.Client != ev.Client || rec.State != StateDisputed || acct.Held.Cmp(rec.Amount) < 0 {
		return errInvalid(KindInvalidChargeback, ev.Tx)
	}

	acct.Held = acct.Held.Sub(rec.Amount)
	if fromDeposits {
		// The deposit is clawed back entirely.
		acct.Total = acct.Total.Sub(rec.Amount)
	} else {
		// The debit is reversed; the funds land back in available.
		acct.Available = acct.Available.Add(rec.Amount)
	}
	rec.State = StateChargedBack
	acct.Locked = true
	return nil
}

// lookup finds a record by tx id, deposit ledger first. The bool reports
// which ledger matched.
func (e *Engine) lookup(tx uint32) (*TransactionRecord, bool) {
	if rec, ok := e.deposits[tx]; ok {
		return rec, true
	}
	if rec, ok := e.withdrawals[tx]; ok {
		return rec, false
	}
	return nil, false
}
