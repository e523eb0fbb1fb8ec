package ledger

import (
	"errors"
	"testing"
)

func TestCreateAccount(t *testing.T) {
	l, _, ctx := newTestLedger(t)

	upd, err := l.CreateAccount(ctx, "g", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if upd.Balance != 100 || upd.Diff != 100 {
		t.Fatalf("update = %+v, want balance 100", upd)
	}
	if _, err := l.CreateAccount(ctx, "g", "alice"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate error = %v, want %v", err, ErrAlreadyExists)
	}
	// same member in another community is a separate account
	if _, err := l.CreateAccount(ctx, "other", "alice"); err != nil {
		t.Fatalf("create in other community: %v", err)
	}
	if _, err := l.CreateAccount(ctx, "g", " "); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("blank member error = %v, want %v", err, ErrInvalidRequest)
	}

	bal, err := l.Balance(ctx, "g", "alice")
	if err != nil || bal != 100 {
		t.Fatalf("balance = %d, %v, want 100", bal, err)
	}
	if _, err := l.Balance(ctx, "g", "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing balance error = %v, want %v", err, ErrNotFound)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	l, _, ctx := newTestLedger(t)
	mustAccount(t, l, ctx, "g", "a", "b", "c", "d")
	mustBet(t, l, ctx, "g", "bet1", "x", "y")
	mustWager(t, l, ctx, "g", "bet1", "x", "b", 40)
	mustWager(t, l, ctx, "g", "bet1", "y", "d", 10)
	if _, err := l.GrantIncome(ctx, "run-1", 5); err != nil {
		t.Fatalf("grant: %v", err)
	}
	mustWager(t, l, ctx, "g", "bet1", "y", "d", 25)

	board, err := l.Leaderboard(ctx, "g", 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	got := make([]string, 0, len(board))
	for _, a := range board {
		got = append(got, a.Member)
	}
	// everyone is worth 105; a and c hold it all as balance, d has 70
	// spendable and b 65.
	want := []string{"a", "c", "d", "b"}
	if len(got) != len(want) {
		t.Fatalf("leaderboard = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("leaderboard = %v, want %v", got, want)
		}
	}

	top, err := l.Leaderboard(ctx, "g", 2)
	if err != nil {
		t.Fatalf("leaderboard limit: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("limited leaderboard = %d entries, want 2", len(top))
	}
}

func TestGrantIncomeIsIdempotentPerRun(t *testing.T) {
	l, _, ctx := newTestLedger(t)
	mustAccount(t, l, ctx, "g1", "a", "b")
	mustAccount(t, l, ctx, "g2", "a")

	updates, err := l.GrantIncome(ctx, "run-1", 10)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("updates = %d, want 3", len(updates))
	}
	for _, u := range updates {
		if u.Diff != 10 || u.Balance != 110 {
			t.Fatalf("update = %+v, want diff 10 balance 110", u)
		}
	}

	// a resumed run only reaches accounts it has not credited yet
	mustAccount(t, l, ctx, "g2", "late")
	updates, err = l.GrantIncome(ctx, "run-1", 10)
	if err != nil {
		t.Fatalf("resume grant: %v", err)
	}
	if len(updates) != 1 || updates[0].Member != "late" || updates[0].Community != "g2" {
		t.Fatalf("resumed updates = %+v, want only g2/late", updates)
	}
	if bal, _ := l.Balance(ctx, "g1", "a"); bal != 110 {
		t.Fatalf("g1/a balance = %d, want 110", bal)
	}

	if _, err := l.GrantIncome(ctx, "run-2", 10); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if bal, _ := l.Balance(ctx, "g1", "a"); bal != 120 {
		t.Fatalf("g1/a balance after run-2 = %d, want 120", bal)
	}
}

func TestGrantIncomeRejectsNonPositiveAmount(t *testing.T) {
	l, _, ctx := newTestLedger(t)
	mustAccount(t, l, ctx, "g", "a")
	for _, amount := range []int64{0, -10} {
		if _, err := l.GrantIncome(ctx, "run", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d error = %v, want %v", amount, err, ErrInvalidAmount)
		}
	}
}

func TestGrantIncomeDoesNotTouchStake(t *testing.T) {
	l, _, ctx := newTestLedger(t)
	mustAccount(t, l, ctx, "g", "a")
	mustBet(t, l, ctx, "g", "bet1", "x", "y")
	mustWager(t, l, ctx, "g", "bet1", "x", "a", 30)

	if _, err := l.GrantIncome(ctx, "", 10); err != nil {
		t.Fatalf("grant: %v", err)
	}
	acc := mustGetAccount(t, l, ctx, "g", "a")
	if acc.Balance != 80 || acc.Staked != 30 {
		t.Fatalf("account = %+v, want balance 80 staked 30", acc)
	}
}

func TestResetAllAbortsActiveBets(t *testing.T) {
	l, _, ctx := newTestLedger(t)
	mustAccount(t, l, ctx, "g", "a", "b")
	mustAccount(t, l, ctx, "other", "a")
	mustBet(t, l, ctx, "g", "open", "o1", "o2")
	mustBet(t, l, ctx, "g", "locked", "l1", "l2")
	mustBet(t, l, ctx, "g", "done", "d1", "d2")
	mustBet(t, l, ctx, "other", "elsewhere", "e1", "e2")

	mustWager(t, l, ctx, "g", "open", "o1", "a", 20)
	mustWager(t, l, ctx, "g", "locked", "l2", "b", 30)
	mustWager(t, l, ctx, "g", "done", "d1", "a", 10)
	mustWager(t, l, ctx, "other", "elsewhere", "e1", "a", 50)
	for _, id := range []string{"locked", "done"} {
		if err := l.LockBet(ctx, "g", id, testAuthor); err != nil {
			t.Fatalf("lock %s: %v", id, err)
		}
	}
	if _, err := l.CloseBet(ctx, "g", "done", "d1", testAuthor); err != nil {
		t.Fatalf("close: %v", err)
	}

	res, err := l.ResetAll(ctx, "g")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(res.AbortedBets) != 2 {
		t.Fatalf("aborted = %v, want open and locked", res.AbortedBets)
	}
	if len(res.Refunds) != 2 || len(res.Accounts) != 2 {
		t.Fatalf("refunds = %+v accounts = %+v", res.Refunds, res.Accounts)
	}
	for _, m := range []string{"a", "b"} {
		acc := mustGetAccount(t, l, ctx, "g", m)
		if acc.Balance != 100 || acc.Staked != 0 {
			t.Fatalf("%s = %+v, want balance 100 staked 0", m, acc)
		}
	}
	for _, id := range []string{"open", "locked"} {
		bet, err := l.Bet(ctx, "g", id)
		if err != nil {
			t.Fatalf("bet %s: %v", id, err)
		}
		if bet.Status != StatusAborted {
			t.Fatalf("bet %s status = %s, want aborted", id, bet.Status)
		}
	}
	if bet, _ := l.Bet(ctx, "g", "done"); bet.Status != StatusClosed {
		t.Fatalf("closed bet status = %s, want closed", bet.Status)
	}

	other := mustGetAccount(t, l, ctx, "other", "a")
	if other.Balance != 50 || other.Staked != 50 {
		t.Fatalf("other community account = %+v, want untouched", other)
	}
}

func TestResetKeepsStakeOfLiveWagers(t *testing.T) {
	l, _, ctx := newTestLedger(t)
	mustAccount(t, l, ctx, "g", "a")
	mustBet(t, l, ctx, "g", "bet1", "x", "y")
	mustWager(t, l, ctx, "g", "bet1", "x", "a", 30)

	// a bet opened after the abort phase of a reset is still live here
	upd, err := l.resetOne(ctx, "g", "a")
	if err != nil {
		t.Fatalf("reset account: %v", err)
	}
	if upd.Balance != 100 || upd.Diff != 30 {
		t.Fatalf("update = %+v, want balance 100 diff 30", upd)
	}
	if acc := mustGetAccount(t, l, ctx, "g", "a"); acc.Staked != 30 {
		t.Fatalf("staked = %d, want 30", acc.Staked)
	}

	refunds, err := l.AbortBet(ctx, "g", "bet1", testAuthor)
	if err != nil {
		t.Fatalf("abort after reset: %v", err)
	}
	if len(refunds) != 1 || refunds[0].Balance != 130 {
		t.Fatalf("refunds = %+v, want a back to 130", refunds)
	}
	if acc := mustGetAccount(t, l, ctx, "g", "a"); acc.Staked != 0 {
		t.Fatalf("staked after abort = %d, want 0", acc.Staked)
	}
}
