package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "bets.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return st, context.Background()
}

func mustCreateAccount(t *testing.T, st *Store, ctx context.Context, community, member string, balance int64) {
	t.Helper()
	if err := st.InsertAccount(ctx, community, member, balance); err != nil {
		t.Fatalf("insert account %s/%s: %v", community, member, err)
	}
}

func mustCreateBet(t *testing.T, st *Store, ctx context.Context, community, betID string, options ...string) {
	t.Helper()
	if err := st.InsertBet(ctx, community, betID, "host", options); err != nil {
		t.Fatalf("insert bet %s: %v", betID, err)
	}
}
