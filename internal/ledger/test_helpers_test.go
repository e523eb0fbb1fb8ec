package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"wager-pool/internal/store"
)

// testAuthor registers every bet made through mustBet.
const testAuthor = "host"

func newTestLedger(t *testing.T) (*Ledger, *store.Store, context.Context) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	cfg := Config{StartingBalance: 100, IncomeAmount: 10, BetAmounts: []int64{10, 50, 100}}
	return New(st, cfg), st, context.Background()
}

func mustAccount(t *testing.T, l *Ledger, ctx context.Context, community string, members ...string) {
	t.Helper()
	for _, m := range members {
		if _, err := l.CreateAccount(ctx, community, m); err != nil {
			t.Fatalf("create account %s/%s: %v", community, m, err)
		}
	}
}

func mustBet(t *testing.T, l *Ledger, ctx context.Context, community, betID string, options ...string) {
	t.Helper()
	if _, err := l.RegisterBet(ctx, community, betID, testAuthor, options); err != nil {
		t.Fatalf("register bet %s: %v", betID, err)
	}
}

func mustWager(t *testing.T, l *Ledger, ctx context.Context, community, betID, optionID, member string, amount int64) WagerResult {
	t.Helper()
	res, err := l.PlaceWager(ctx, community, betID, optionID, member, amount)
	if err != nil {
		t.Fatalf("wager %s on %s/%s: %v", member, betID, optionID, err)
	}
	return res
}

func mustGetAccount(t *testing.T, l *Ledger, ctx context.Context, community, member string) Account {
	t.Helper()
	acc, err := l.Account(ctx, community, member)
	if err != nil {
		t.Fatalf("account %s/%s: %v", community, member, err)
	}
	return acc
}

// totalHoldings sums balance and staked across a community.
func totalHoldings(t *testing.T, l *Ledger, ctx context.Context, community string) int64 {
	t.Helper()
	accounts, err := l.ListAccounts(ctx, community)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	var sum int64
	for _, a := range accounts {
		sum += a.Balance + a.Staked
	}
	return sum
}
