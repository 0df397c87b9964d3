// Package engine implements the transaction engine: the single stateful
// component that applies ledger events to per-client accounts.
//
// The engine owns three maps and nothing else owns them:
//
//   - the deposit ledger (tx id -> record for accepted deposits)
//   - the withdrawal ledger (tx id -> record for accepted withdrawals)
//   - the account table (client id -> account)
//
// Events are applied strictly one at a time. Every event is validated in
// full before any state is touched; a rejected event leaves the ledgers and
// the account table exactly as they were and processing continues with the
// next event. Rejections are classified by [ErrorKind] and carry the
// offending tx or client id.
//
// # Dispute lifecycle
//
// An accepted deposit or withdrawal starts in StateNormal. A dispute moves
// it to StateDisputed; from there a resolve or a chargeback moves it to the
// terminal StateResolved or StateChargedBack. No other transition exists.
// A chargeback additionally locks the account: a locked account rejects
// every subsequent event, permanently.
//
// Which balance fields move during the lifecycle depends on the record's
// origin. Disputing a deposit holds the deposited funds; disputing a
// withdrawal reinstates the debited amount into held (the client contests a
// debit that may be reversed), so held and total both grow.
//
// # Concurrency
//
// The engine has no internal synchronization. [Engine.Run] is the sole
// consumer of the event channel and the maps are touched by that one
// goroutine only. Apply never blocks.
package engine
