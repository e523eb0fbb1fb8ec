// Package ledger is the wagering facade: accounts, bet lifecycle and
// settlement. Every mutating operation runs in a single store transaction
// behind per-bet and per-account locks.
package ledger

import (
	"context"
	"errors"
	"strings"

	"wager-pool/internal/store"
)

// Config carries the economy parameters. BetAmounts are the preset wager
// amounts offered to members.
type Config struct {
	StartingBalance int64
	IncomeAmount    int64
	BetAmounts      []int64
}

// Ledger owns the accounts and bets of every community. It is safe for
// concurrent use.
type Ledger struct {
	store *store.Store
	cfg   Config
	locks *keyLocker
}

// New returns a Ledger persisting to st.
func New(st *store.Store, cfg Config) *Ledger {
	return &Ledger{store: st, cfg: cfg, locks: newKeyLocker()}
}

// Config returns the economy parameters the ledger was built with.
func (l *Ledger) Config() Config {
	return l.cfg
}

// Ping checks that the store answers.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// Journal lists audit entries, newest first.
func (l *Ledger) Journal(ctx context.Context, f store.LedgerFilter, limit, offset int) ([]store.LedgerEntry, error) {
	entries, err := l.store.ListLedgerEntries(ctx, f, limit, offset)
	if err != nil {
		return nil, &StorageError{Op: "journal", Err: err}
	}
	return entries, nil
}

// inTx runs fn in one transaction. Ledger errors returned by fn pass through
// unchanged; anything else becomes a StorageError.
func (l *Ledger) inTx(ctx context.Context, op string, fn func(tx *store.Tx) error) error {
	err := l.store.WithTx(ctx, fn)
	if err == nil || isDomainError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// notFoundAs maps store.ErrNotFound to target and leaves other errors alone.
func notFoundAs(err, target error) error {
	if errors.Is(err, store.ErrNotFound) {
		return target
	}
	return err
}

func requireIDs(ids ...string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return ErrInvalidRequest
		}
	}
	return nil
}

func toAccount(a store.Account) Account {
	return Account{
		Community: a.CommunityID,
		Member:    a.MemberID,
		Balance:   a.Balance,
		Staked:    a.Staked,
	}
}

func toTally(totals []store.OptionTotal) []OptionTally {
	out := make([]OptionTally, 0, len(totals))
	for _, t := range totals {
		out = append(out, OptionTally{OptionID: t.OptionID, Total: t.Total, Bettors: t.Bettors})
	}
	return out
}
