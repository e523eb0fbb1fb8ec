package ledger

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestConcurrentWagersCannotOverspend(t *testing.T) {
	l, _, ctx := newTestLedger(t)
	mustAccount(t, l, ctx, "g", "alice")
	mustBet(t, l, ctx, "g", "bet1", "x", "y")

	const attempts = 25
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.PlaceWager(ctx, "g", "bet1", "x", "alice", 10)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, broke := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientFunds):
			broke++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 10 || broke != attempts-10 {
		t.Fatalf("accepted = %d rejected = %d, want 10 and %d", ok, broke, attempts-10)
	}
	acc := mustGetAccount(t, l, ctx, "g", "alice")
	if acc.Balance != 0 || acc.Staked != 100 {
		t.Fatalf("account = %+v, want balance 0 staked 100", acc)
	}
}

func TestConcurrentCloseSettlesOnce(t *testing.T) {
	l, _, ctx := newTestLedger(t)
	mustAccount(t, l, ctx, "g", "a", "b")
	mustBet(t, l, ctx, "g", "bet1", "x", "y")
	mustWager(t, l, ctx, "g", "bet1", "x", "a", 50)
	mustWager(t, l, ctx, "g", "bet1", "y", "b", 50)
	if err := l.LockBet(ctx, "g", "bet1", testAuthor); err != nil {
		t.Fatalf("lock: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := l.CloseBet(ctx, "g", "bet1", "x", testAuthor)
				results <- err
				return
			}
			_, err := l.AbortBet(ctx, "g", "bet1", testAuthor)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	settled := 0
	for err := range results {
		if err == nil {
			settled++
			continue
		}
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if settled != 1 {
		t.Fatalf("settled %d times, want exactly once", settled)
	}
	if got := totalHoldings(t, l, ctx, "g"); got != 200 {
		t.Fatalf("total holdings = %d, want 200", got)
	}
	for _, m := range []string{"a", "b"} {
		if acc := mustGetAccount(t, l, ctx, "g", m); acc.Staked != 0 {
			t.Fatalf("%s staked = %d, want 0", m, acc.Staked)
		}
	}
}

func TestConcurrentMixedOperationsConserveCurrency(t *testing.T) {
	l, _, ctx := newTestLedger(t)
	const members = 6
	for i := 0; i < members; i++ {
		mustAccount(t, l, ctx, "g", fmt.Sprintf("m%d", i))
	}
	for b := 0; b < 3; b++ {
		mustBet(t, l, ctx, "g", fmt.Sprintf("bet%d", b), fmt.Sprintf("bet%d-x", b), fmt.Sprintf("bet%d-y", b))
	}

	var wg sync.WaitGroup
	for i := 0; i < members; i++ {
		for b := 0; b < 3; b++ {
			wg.Add(1)
			go func(i, b int) {
				defer wg.Done()
				side := "x"
				if (i+b)%2 == 1 {
					side = "y"
				}
				bet := fmt.Sprintf("bet%d", b)
				_, _ = l.PlaceWager(ctx, "g", bet, bet+"-"+side, fmt.Sprintf("m%d", i), int64(5+i))
			}(i, b)
		}
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = l.GrantIncome(ctx, "run-c", 7)
	}()
	wg.Wait()

	if got := totalHoldings(t, l, ctx, "g"); got != members*(100+7) {
		t.Fatalf("total holdings before settlement = %d, want %d", got, members*107)
	}

	var settle sync.WaitGroup
	for b := 0; b < 3; b++ {
		settle.Add(1)
		go func(b int) {
			defer settle.Done()
			bet := fmt.Sprintf("bet%d", b)
			if err := l.LockBet(ctx, "g", bet, testAuthor); err != nil {
				t.Errorf("lock %s: %v", bet, err)
				return
			}
			if b == 2 {
				if _, err := l.AbortBet(ctx, "g", bet, testAuthor); err != nil {
					t.Errorf("abort %s: %v", bet, err)
				}
				return
			}
			if _, err := l.CloseBet(ctx, "g", bet, bet+"-x", testAuthor); err != nil {
				t.Errorf("close %s: %v", bet, err)
			}
		}(b)
	}
	settle.Wait()

	if got := totalHoldings(t, l, ctx, "g"); got != members*107 {
		t.Fatalf("total holdings after settlement = %d, want %d", got, members*107)
	}
	accounts, err := l.ListAccounts(ctx, "g")
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	for _, a := range accounts {
		if a.Staked != 0 || a.Balance < 0 {
			t.Fatalf("account = %+v, want no stake and non-negative balance", a)
		}
	}
}

func TestResetRacingNewBetsLeavesThemSettleable(t *testing.T) {
	l, st, ctx := newTestLedger(t)
	members := []string{"a", "b", "c", "d"}
	mustAccount(t, l, ctx, "g", members...)

	for round := 0; round < 20; round++ {
		betID := fmt.Sprintf("bet%d", round)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := l.ResetAll(ctx, "g"); err != nil {
				t.Errorf("reset: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := l.RegisterBet(ctx, "g", betID, testAuthor, []string{betID + "-x", betID + "-y"}); err != nil {
				t.Errorf("register %s: %v", betID, err)
				return
			}
			for _, m := range members {
				if _, err := l.PlaceWager(ctx, "g", betID, betID+"-x", m, 5); err != nil && !errors.Is(err, ErrInvalidState) {
					t.Errorf("wager %s on %s: %v", m, betID, err)
				}
			}
		}()
		wg.Wait()

		for _, m := range members {
			live, err := st.SumMemberWagers(ctx, "g", m)
			if err != nil {
				t.Fatalf("sum wagers: %v", err)
			}
			if acc := mustGetAccount(t, l, ctx, "g", m); acc.Staked != live {
				t.Fatalf("round %d: %s staked = %d, live wagers = %d", round, m, acc.Staked, live)
			}
		}
		if _, err := l.AbortBet(ctx, "g", betID, testAuthor); err != nil && !errors.Is(err, ErrInvalidState) {
			t.Fatalf("round %d: abort %s: %v", round, betID, err)
		}
	}

	for _, m := range members {
		if acc := mustGetAccount(t, l, ctx, "g", m); acc.Staked != 0 {
			t.Fatalf("%s staked = %d after every bet settled", m, acc.Staked)
		}
	}
}
