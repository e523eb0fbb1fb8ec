package ledger

import (
	"context"
	"errors"
	"fmt"

	"wager-pool/internal/store"
)

// RegisterBet creates an open bet with at least two distinct options. Option
// ids are unique within the community. Only author may later lock, abort or
// close it.
func (l *Ledger) RegisterBet(ctx context.Context, community, betID, author string, optionIDs []string) (Bet, error) {
	if err := requireIDs(community, betID, author); err != nil {
		return Bet{}, err
	}
	if len(optionIDs) < 2 {
		return Bet{}, ErrInvalidRequest
	}
	seen := make(map[string]struct{}, len(optionIDs))
	for _, id := range optionIDs {
		if err := requireIDs(id); err != nil {
			return Bet{}, err
		}
		if _, dup := seen[id]; dup {
			return Bet{}, ErrInvalidRequest
		}
		seen[id] = struct{}{}
	}

	release := l.locks.acquire(betKey(community, betID))
	defer release()

	err := l.inTx(ctx, "register_bet", func(tx *store.Tx) error {
		err := tx.InsertBet(ctx, community, betID, author, optionIDs)
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return err
	})
	if err != nil {
		return Bet{}, err
	}
	return Bet{
		Community: community,
		ID:        betID,
		Author:    author,
		Status:    StatusOpen,
		Options:   append([]string(nil), optionIDs...),
	}, nil
}

// PlaceWager stakes amount of member's balance on optionID. A member backs a
// single option per bet; wagering again on the same option tops it up.
func (l *Ledger) PlaceWager(ctx context.Context, community, betID, optionID, member string, amount int64) (WagerResult, error) {
	if err := requireIDs(community, betID, optionID, member); err != nil {
		return WagerResult{}, err
	}

	releaseBet := l.locks.acquire(betKey(community, betID))
	defer releaseBet()
	releaseAcct := l.locks.acquire(accountKey(community, member))
	defer releaseAcct()

	var res WagerResult
	err := l.inTx(ctx, "place_wager", func(tx *store.Tx) error {
		bet, err := tx.GetBet(ctx, community, betID)
		if err != nil {
			return notFoundAs(err, ErrNotFound)
		}
		if bet.Status != store.BetOpen {
			return &StateError{BetID: betID, Status: BetStatus(bet.Status), Op: "wager on"}
		}
		owner, err := tx.GetBetOfOption(ctx, community, optionID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && owner != betID) {
			return ErrUnknownOption
		}
		if err != nil {
			return err
		}
		acc, err := tx.GetAccount(ctx, community, member)
		if err != nil {
			return notFoundAs(err, ErrNotFound)
		}
		if amount <= 0 {
			return ErrInvalidAmount
		}

		existing, err := tx.GetWager(ctx, community, betID, member)
		switch {
		case errors.Is(err, store.ErrNotFound):
			existing = store.Wager{CommunityID: community, BetID: betID, MemberID: member, OptionID: optionID}
		case err != nil:
			return err
		case existing.OptionID != optionID:
			return &MultipleOptionsError{Options: []string{existing.OptionID}}
		}
		if acc.Balance < amount {
			return ErrInsufficientFunds
		}

		balance := acc.Balance - amount
		if err := tx.UpdateAccount(ctx, community, member, balance, acc.Staked+amount); err != nil {
			return err
		}
		existing.Amount += amount
		if err := tx.UpsertWager(ctx, existing); err != nil {
			return err
		}
		if err := tx.InsertLedgerEntry(ctx, store.LedgerEntry{
			CommunityID:  community,
			MemberID:     member,
			Type:         store.EntryWagerDebit,
			Amount:       -amount,
			BalanceAfter: balance,
			RefType:      "bet",
			RefID:        betID,
		}); err != nil {
			return err
		}
		totals, err := tx.ListOptionTotals(ctx, community, betID)
		if err != nil {
			return err
		}
		res = WagerResult{
			Account: AccountUpdate{Community: community, Member: member, Diff: -amount, Balance: balance},
			Tally:   toTally(totals),
		}
		return nil
	})
	if err != nil {
		return WagerResult{}, err
	}
	return res, nil
}

// PlaceWagerPreset wagers the preset amount at index preset of BetAmounts.
func (l *Ledger) PlaceWagerPreset(ctx context.Context, community, betID, optionID, member string, preset int) (WagerResult, error) {
	if preset < 0 || preset >= len(l.cfg.BetAmounts) {
		return WagerResult{}, ErrInvalidAmount
	}
	return l.PlaceWager(ctx, community, betID, optionID, member, l.cfg.BetAmounts[preset])
}

// LockBet stops accepting wagers on an open bet. actor must be the bet's
// author.
func (l *Ledger) LockBet(ctx context.Context, community, betID, actor string) error {
	if err := requireIDs(community, betID, actor); err != nil {
		return err
	}
	release := l.locks.acquire(betKey(community, betID))
	defer release()

	return l.inTx(ctx, "lock_bet", func(tx *store.Tx) error {
		bet, err := tx.GetBet(ctx, community, betID)
		if err != nil {
			return notFoundAs(err, ErrNotFound)
		}
		if err := authorize(bet, actor); err != nil {
			return err
		}
		if bet.Status != store.BetOpen {
			return &StateError{BetID: betID, Status: BetStatus(bet.Status), Op: "lock"}
		}
		return tx.UpdateBetStatus(ctx, community, betID, store.BetLocked, "")
	})
}

// AbortBet cancels an open or locked bet and refunds every stake in full.
// actor must be the bet's author.
func (l *Ledger) AbortBet(ctx context.Context, community, betID, actor string) ([]AccountUpdate, error) {
	if err := requireIDs(community, betID, actor); err != nil {
		return nil, err
	}
	return l.abortBet(ctx, community, betID, actor)
}

// abortBet skips the author check when actor is empty.
func (l *Ledger) abortBet(ctx context.Context, community, betID, actor string) ([]AccountUpdate, error) {
	releaseBet := l.locks.acquire(betKey(community, betID))
	defer releaseBet()
	releaseAccts, err := l.lockBettors(ctx, community, betID)
	if err != nil {
		return nil, err
	}
	defer releaseAccts()

	var refunds []AccountUpdate
	err = l.inTx(ctx, "abort_bet", func(tx *store.Tx) error {
		bet, err := tx.GetBet(ctx, community, betID)
		if err != nil {
			return notFoundAs(err, ErrNotFound)
		}
		if actor != "" {
			if err := authorize(bet, actor); err != nil {
				return err
			}
		}
		if bet.Status != store.BetOpen && bet.Status != store.BetLocked {
			return &StateError{BetID: betID, Status: BetStatus(bet.Status), Op: "abort"}
		}
		wagers, err := tx.ListWagers(ctx, community, betID)
		if err != nil {
			return err
		}
		refunds = make([]AccountUpdate, 0, len(wagers))
		for _, w := range wagers {
			acc, err := tx.GetAccount(ctx, community, w.MemberID)
			if err != nil {
				return err
			}
			if acc.Staked < w.Amount {
				return fmt.Errorf("account %s staked %d below wager %d", w.MemberID, acc.Staked, w.Amount)
			}
			balance := acc.Balance + w.Amount
			if err := tx.UpdateAccount(ctx, community, w.MemberID, balance, acc.Staked-w.Amount); err != nil {
				return err
			}
			if err := tx.InsertLedgerEntry(ctx, store.LedgerEntry{
				CommunityID:  community,
				MemberID:     w.MemberID,
				Type:         store.EntryWagerRefund,
				Amount:       w.Amount,
				BalanceAfter: balance,
				RefType:      "bet",
				RefID:        betID,
			}); err != nil {
				return err
			}
			refunds = append(refunds, AccountUpdate{Community: community, Member: w.MemberID, Diff: w.Amount, Balance: balance})
		}
		if err := tx.DeleteWagers(ctx, community, betID); err != nil {
			return err
		}
		return tx.UpdateBetStatus(ctx, community, betID, store.BetAborted, "")
	})
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

// CloseBet settles a locked bet on winningOption. The pot is shared between
// the winners in proportion to their stake; losing stakes are forfeit. Only
// members who receive a credit appear in the returned updates. actor must be
// the bet's author.
func (l *Ledger) CloseBet(ctx context.Context, community, betID, winningOption, actor string) ([]AccountUpdate, error) {
	if err := requireIDs(community, betID, winningOption, actor); err != nil {
		return nil, err
	}
	releaseBet := l.locks.acquire(betKey(community, betID))
	defer releaseBet()
	releaseAccts, err := l.lockBettors(ctx, community, betID)
	if err != nil {
		return nil, err
	}
	defer releaseAccts()

	var winners []AccountUpdate
	err = l.inTx(ctx, "close_bet", func(tx *store.Tx) error {
		bet, err := tx.GetBet(ctx, community, betID)
		if err != nil {
			return notFoundAs(err, ErrNotFound)
		}
		if err := authorize(bet, actor); err != nil {
			return err
		}
		if bet.Status != store.BetLocked {
			return &StateError{BetID: betID, Status: BetStatus(bet.Status), Op: "close"}
		}
		owner, err := tx.GetBetOfOption(ctx, community, winningOption)
		if errors.Is(err, store.ErrNotFound) || (err == nil && owner != betID) {
			return ErrUnknownOption
		}
		if err != nil {
			return err
		}

		wagers, err := tx.ListWagers(ctx, community, betID)
		if err != nil {
			return err
		}
		stakes := make([]Stake, 0, len(wagers))
		for _, w := range wagers {
			stakes = append(stakes, Stake{Member: w.MemberID, OptionID: w.OptionID, Amount: w.Amount})
		}
		settlement := ComputePayouts(stakes, winningOption)
		credits := make(map[string]int64, len(settlement.Payouts))
		for _, p := range settlement.Payouts {
			credits[p.Member] = p.Credit
		}

		winners = make([]AccountUpdate, 0, len(settlement.Payouts))
		for _, w := range wagers {
			acc, err := tx.GetAccount(ctx, community, w.MemberID)
			if err != nil {
				return err
			}
			if acc.Staked < w.Amount {
				return fmt.Errorf("account %s staked %d below wager %d", w.MemberID, acc.Staked, w.Amount)
			}
			credit, won := credits[w.MemberID]
			balance := acc.Balance + credit
			if err := tx.UpdateAccount(ctx, community, w.MemberID, balance, acc.Staked-w.Amount); err != nil {
				return err
			}
			entry := store.LedgerEntry{
				CommunityID:  community,
				MemberID:     w.MemberID,
				Type:         store.EntryStakeForfeit,
				Amount:       -w.Amount,
				BalanceAfter: balance,
				RefType:      "bet",
				RefID:        betID,
			}
			if won {
				entry.Type = store.EntryPayoutCredit
				entry.Amount = credit
			}
			if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
				return err
			}
			if won {
				winners = append(winners, AccountUpdate{Community: community, Member: w.MemberID, Diff: credit, Balance: balance})
			}
		}
		if err := tx.DeleteWagers(ctx, community, betID); err != nil {
			return err
		}
		return tx.UpdateBetStatus(ctx, community, betID, store.BetClosed, winningOption)
	})
	if err != nil {
		return nil, err
	}
	return winners, nil
}

// authorize rejects actors other than the bet's author. Bets registered
// before authors were recorded have none and accept any actor.
func authorize(bet store.Bet, actor string) error {
	if bet.AuthorID != "" && bet.AuthorID != actor {
		return ErrForbidden
	}
	return nil
}

// lockBettors locks the accounts holding a wager on the bet. The caller must
// hold the bet lock, which keeps the set of bettors stable.
func (l *Ledger) lockBettors(ctx context.Context, community, betID string) (func(), error) {
	wagers, err := l.store.ListWagers(ctx, community, betID)
	if err != nil {
		return nil, &StorageError{Op: "list_wagers", Err: err}
	}
	keys := make([]string, 0, len(wagers))
	for _, w := range wagers {
		keys = append(keys, accountKey(community, w.MemberID))
	}
	return l.locks.acquire(keys...), nil
}

// Bet returns the bet with its options in registration order.
func (l *Ledger) Bet(ctx context.Context, community, betID string) (Bet, error) {
	b, err := l.store.GetBet(ctx, community, betID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Bet{}, ErrNotFound
		}
		return Bet{}, &StorageError{Op: "get_bet", Err: err}
	}
	options, err := l.store.ListBetOptions(ctx, community, betID)
	if err != nil {
		return Bet{}, &StorageError{Op: "get_bet", Err: err}
	}
	return Bet{
		Community:     b.CommunityID,
		ID:            b.BetID,
		Author:        b.AuthorID,
		Status:        BetStatus(b.Status),
		Options:       options,
		WinningOption: b.WinningOptionID,
	}, nil
}

// Tally sums the live wagers per option. Settled bets have no live wagers.
func (l *Ledger) Tally(ctx context.Context, community, betID string) ([]OptionTally, error) {
	if _, err := l.Bet(ctx, community, betID); err != nil {
		return nil, err
	}
	totals, err := l.store.ListOptionTotals(ctx, community, betID)
	if err != nil {
		return nil, &StorageError{Op: "tally", Err: err}
	}
	return toTally(totals), nil
}

func (l *Ledger) BetOfOption(ctx context.Context, community, optionID string) (string, error) {
	betID, err := l.store.GetBetOfOption(ctx, community, optionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", &StorageError{Op: "bet_of_option", Err: err}
	}
	return betID, nil
}

func (l *Ledger) OptionsOfBet(ctx context.Context, community, betID string) ([]string, error) {
	b, err := l.Bet(ctx, community, betID)
	if err != nil {
		return nil, err
	}
	return b.Options, nil
}
