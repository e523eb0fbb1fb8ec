package ledger

import (
	"context"
	"errors"

	"wager-pool/internal/store"
)

const defaultLeaderboardLimit = 10

// CreateAccount opens an account holding the starting balance.
func (l *Ledger) CreateAccount(ctx context.Context, community, member string) (AccountUpdate, error) {
	if err := requireIDs(community, member); err != nil {
		return AccountUpdate{}, err
	}
	release := l.locks.acquire(accountKey(community, member))
	defer release()

	start := l.cfg.StartingBalance
	err := l.inTx(ctx, "create_account", func(tx *store.Tx) error {
		if err := tx.InsertAccount(ctx, community, member, start); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyExists
			}
			return err
		}
		return tx.InsertLedgerEntry(ctx, store.LedgerEntry{
			CommunityID:  community,
			MemberID:     member,
			Type:         store.EntryAccountOpen,
			Amount:       start,
			BalanceAfter: start,
			RefType:      "account",
			RefID:        member,
		})
	})
	if err != nil {
		return AccountUpdate{}, err
	}
	return AccountUpdate{Community: community, Member: member, Diff: start, Balance: start}, nil
}

func (l *Ledger) Balance(ctx context.Context, community, member string) (int64, error) {
	acc, err := l.Account(ctx, community, member)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Account returns the spendable balance and the amount currently staked.
func (l *Ledger) Account(ctx context.Context, community, member string) (Account, error) {
	acc, err := l.store.GetAccount(ctx, community, member)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Account{}, ErrNotFound
		}
		return Account{}, &StorageError{Op: "get_account", Err: err}
	}
	return toAccount(acc), nil
}

func (l *Ledger) ListAccounts(ctx context.Context, community string) ([]Account, error) {
	rows, err := l.store.ListAccounts(ctx, community)
	if err != nil {
		return nil, &StorageError{Op: "list_accounts", Err: err}
	}
	out := make([]Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, toAccount(r))
	}
	return out, nil
}

// Leaderboard ranks a community by net worth (balance plus staked), then by
// balance. A non-positive limit means the default of 10.
func (l *Ledger) Leaderboard(ctx context.Context, community string, limit int) ([]Account, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	rows, err := l.store.ListLeaderboard(ctx, community, limit)
	if err != nil {
		return nil, &StorageError{Op: "leaderboard", Err: err}
	}
	out := make([]Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, toAccount(r))
	}
	return out, nil
}

// GrantIncome credits amount to every account of every community. Each
// account is credited in its own transaction and at most once per runID, so
// re-running an interrupted sweep with the same runID completes it without
// double credit. An empty runID gets a fresh one.
//
// On failure the updates applied so far are returned with the error.
func (l *Ledger) GrantIncome(ctx context.Context, runID string, amount int64) ([]AccountUpdate, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if runID == "" {
		runID = store.NewID()
	}
	keys, err := l.store.ListAccountKeys(ctx)
	if err != nil {
		return nil, &StorageError{Op: "grant_income", Err: err}
	}

	updates := make([]AccountUpdate, 0, len(keys))
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return updates, &StorageError{Op: "grant_income", Err: err}
		}
		upd, granted, err := l.grantOne(ctx, runID, k, amount)
		if err != nil {
			return updates, err
		}
		if granted {
			updates = append(updates, upd)
		}
	}
	return updates, nil
}

func (l *Ledger) grantOne(ctx context.Context, runID string, k store.AccountKey, amount int64) (AccountUpdate, bool, error) {
	release := l.locks.acquire(accountKey(k.CommunityID, k.MemberID))
	defer release()

	var upd AccountUpdate
	granted := false
	err := l.inTx(ctx, "grant_income", func(tx *store.Tx) error {
		claimed, err := tx.ClaimIncomeGrant(ctx, runID, k.CommunityID, k.MemberID, amount)
		if err != nil || !claimed {
			return err
		}
		acc, err := tx.GetAccount(ctx, k.CommunityID, k.MemberID)
		if err != nil {
			return err
		}
		balance := acc.Balance + amount
		if err := tx.UpdateAccount(ctx, k.CommunityID, k.MemberID, balance, acc.Staked); err != nil {
			return err
		}
		if err := tx.InsertLedgerEntry(ctx, store.LedgerEntry{
			CommunityID:  k.CommunityID,
			MemberID:     k.MemberID,
			Type:         store.EntryIncomeCredit,
			Amount:       amount,
			BalanceAfter: balance,
			RefType:      "income",
			RefID:        runID,
		}); err != nil {
			return err
		}
		upd = AccountUpdate{Community: k.CommunityID, Member: k.MemberID, Diff: amount, Balance: balance}
		granted = true
		return nil
	})
	if err != nil {
		return AccountUpdate{}, false, err
	}
	return upd, granted, nil
}

// ResetAll aborts every open or locked bet of the community, refunding the
// stakes, then puts every account back to the starting balance. Bets opened
// while the reset runs survive it, so each account keeps staked equal to its
// remaining live wagers.
func (l *Ledger) ResetAll(ctx context.Context, community string) (ResetResult, error) {
	res := ResetResult{AbortedBets: []string{}, Refunds: []AccountUpdate{}, Accounts: []AccountUpdate{}}
	if err := requireIDs(community); err != nil {
		return res, err
	}

	active, err := l.store.ListBetsByStatus(ctx, community, store.BetOpen, store.BetLocked)
	if err != nil {
		return res, &StorageError{Op: "reset_all", Err: err}
	}
	for _, betID := range active {
		refunds, err := l.abortBet(ctx, community, betID, "")
		if errors.Is(err, ErrInvalidState) {
			// settled concurrently
			continue
		}
		if err != nil {
			return res, err
		}
		res.AbortedBets = append(res.AbortedBets, betID)
		res.Refunds = append(res.Refunds, refunds...)
	}

	accounts, err := l.store.ListAccounts(ctx, community)
	if err != nil {
		return res, &StorageError{Op: "reset_all", Err: err}
	}
	for _, a := range accounts {
		upd, err := l.resetOne(ctx, community, a.MemberID)
		if err != nil {
			return res, err
		}
		res.Accounts = append(res.Accounts, upd)
	}
	return res, nil
}

func (l *Ledger) resetOne(ctx context.Context, community, member string) (AccountUpdate, error) {
	release := l.locks.acquire(accountKey(community, member))
	defer release()

	start := l.cfg.StartingBalance
	var upd AccountUpdate
	err := l.inTx(ctx, "reset_all", func(tx *store.Tx) error {
		acc, err := tx.GetAccount(ctx, community, member)
		if err != nil {
			return notFoundAs(err, ErrNotFound)
		}
		staked, err := tx.SumMemberWagers(ctx, community, member)
		if err != nil {
			return err
		}
		if err := tx.UpdateAccount(ctx, community, member, start, staked); err != nil {
			return err
		}
		diff := start - acc.Balance
		if err := tx.InsertLedgerEntry(ctx, store.LedgerEntry{
			CommunityID:  community,
			MemberID:     member,
			Type:         store.EntryReset,
			Amount:       diff,
			BalanceAfter: start,
			RefType:      "community",
			RefID:        community,
		}); err != nil {
			return err
		}
		upd = AccountUpdate{Community: community, Member: member, Diff: diff, Balance: start}
		return nil
	})
	return upd, err
}
