package store

import (
	"errors"
	"testing"
)

func TestBetInsertGetOptions(t *testing.T) {
	st, ctx := openStore(t)
	mustCreateBet(t, st, ctx, "guild-1", "bet-1", "opt-b", "opt-a", "opt-c")

	b, err := st.GetBet(ctx, "guild-1", "bet-1")
	if err != nil {
		t.Fatalf("get bet: %v", err)
	}
	if b.Status != BetOpen {
		t.Fatalf("status = %q, want %q", b.Status, BetOpen)
	}
	if b.AuthorID != "host" {
		t.Fatalf("author = %q, want host", b.AuthorID)
	}
	opts, err := st.ListBetOptions(ctx, "guild-1", "bet-1")
	if err != nil {
		t.Fatalf("list options: %v", err)
	}
	if len(opts) != 3 || opts[0] != "opt-b" || opts[1] != "opt-a" || opts[2] != "opt-c" {
		t.Fatalf("options = %v, want registration order", opts)
	}
	betID, err := st.GetBetOfOption(ctx, "guild-1", "opt-c")
	if err != nil {
		t.Fatalf("bet of option: %v", err)
	}
	if betID != "bet-1" {
		t.Fatalf("bet of option = %q, want bet-1", betID)
	}
	if _, err := st.GetBetOfOption(ctx, "guild-2", "opt-c"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("bet of option in other community error = %v, want %v", err, ErrNotFound)
	}
}

func TestBetInsertDuplicateRollsBackInTx(t *testing.T) {
	st, ctx := openStore(t)
	mustCreateBet(t, st, ctx, "guild-1", "bet-1", "opt-a", "opt-b")

	err := st.WithTx(ctx, func(tx *Tx) error {
		return tx.InsertBet(ctx, "guild-1", "bet-2", "host", []string{"opt-c", "opt-a"})
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("reused option error = %v, want %v", err, ErrAlreadyExists)
	}
	if _, err := st.GetBet(ctx, "guild-1", "bet-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("bet-2 should be rolled back, got %v", err)
	}
	if _, err := st.GetBetOfOption(ctx, "guild-1", "opt-c"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("opt-c should be rolled back, got %v", err)
	}
	if err := st.InsertBet(ctx, "guild-1", "bet-1", "host", []string{"x", "y"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate bet error = %v, want %v", err, ErrAlreadyExists)
	}
}

func TestBetStatusAndListing(t *testing.T) {
	st, ctx := openStore(t)
	mustCreateBet(t, st, ctx, "guild-1", "bet-1", "a1", "b1")
	mustCreateBet(t, st, ctx, "guild-1", "bet-2", "a2", "b2")
	mustCreateBet(t, st, ctx, "guild-1", "bet-3", "a3", "b3")

	if err := st.UpdateBetStatus(ctx, "guild-1", "bet-2", BetLocked, ""); err != nil {
		t.Fatalf("lock bet-2: %v", err)
	}
	if err := st.UpdateBetStatus(ctx, "guild-1", "bet-3", BetClosed, "a3"); err != nil {
		t.Fatalf("close bet-3: %v", err)
	}
	active, err := st.ListBetsByStatus(ctx, "guild-1", BetOpen, BetLocked)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active bets = %v, want bet-1 and bet-2", active)
	}
	closed, err := st.GetBet(ctx, "guild-1", "bet-3")
	if err != nil {
		t.Fatalf("get bet-3: %v", err)
	}
	if closed.WinningOptionID != "a3" {
		t.Fatalf("winning option = %q, want a3", closed.WinningOptionID)
	}
	if err := st.UpdateBetStatus(ctx, "guild-1", "ghost", BetLocked, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing bet error = %v, want %v", err, ErrNotFound)
	}
}

func TestWagerUpsertTotalsAndDelete(t *testing.T) {
	st, ctx := openStore(t)
	mustCreateAccount(t, st, ctx, "guild-1", "u1", 100)
	mustCreateAccount(t, st, ctx, "guild-1", "u2", 100)
	mustCreateBet(t, st, ctx, "guild-1", "bet-1", "opt-a", "opt-b", "opt-c")

	for _, w := range []Wager{
		{CommunityID: "guild-1", BetID: "bet-1", MemberID: "u1", OptionID: "opt-a", Amount: 10},
		{CommunityID: "guild-1", BetID: "bet-1", MemberID: "u2", OptionID: "opt-b", Amount: 20},
		{CommunityID: "guild-1", BetID: "bet-1", MemberID: "u1", OptionID: "opt-a", Amount: 35},
	} {
		if err := st.UpsertWager(ctx, w); err != nil {
			t.Fatalf("upsert wager: %v", err)
		}
	}

	w, err := st.GetWager(ctx, "guild-1", "bet-1", "u1")
	if err != nil {
		t.Fatalf("get wager: %v", err)
	}
	if w.Amount != 35 || w.OptionID != "opt-a" {
		t.Fatalf("unexpected wager: %+v", w)
	}
	wagers, err := st.ListWagers(ctx, "guild-1", "bet-1")
	if err != nil {
		t.Fatalf("list wagers: %v", err)
	}
	if len(wagers) != 2 {
		t.Fatalf("expected 2 wagers, got %d", len(wagers))
	}

	totals, err := st.ListOptionTotals(ctx, "guild-1", "bet-1")
	if err != nil {
		t.Fatalf("list totals: %v", err)
	}
	want := []OptionTotal{{"opt-a", 35, 1}, {"opt-b", 20, 1}, {"opt-c", 0, 0}}
	if len(totals) != len(want) {
		t.Fatalf("totals = %+v, want %+v", totals, want)
	}
	for i := range want {
		if totals[i] != want[i] {
			t.Fatalf("totals = %+v, want %+v", totals, want)
		}
	}

	if err := st.DeleteWagers(ctx, "guild-1", "bet-1"); err != nil {
		t.Fatalf("delete wagers: %v", err)
	}
	if _, err := st.GetWager(ctx, "guild-1", "bet-1", "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("wager after delete error = %v, want %v", err, ErrNotFound)
	}
}

func TestWagerRequiresKnownOption(t *testing.T) {
	st, ctx := openStore(t)
	mustCreateAccount(t, st, ctx, "guild-1", "u1", 100)
	mustCreateBet(t, st, ctx, "guild-1", "bet-1", "opt-a", "opt-b")

	err := st.UpsertWager(ctx, Wager{CommunityID: "guild-1", BetID: "bet-1", MemberID: "u1", OptionID: "nope", Amount: 5})
	if err == nil {
		t.Fatal("expected foreign key error for unknown option")
	}
}

func TestSumMemberWagersSpansBets(t *testing.T) {
	st, ctx := openStore(t)
	mustCreateAccount(t, st, ctx, "guild-1", "u1", 100)
	mustCreateAccount(t, st, ctx, "guild-1", "u2", 100)
	mustCreateBet(t, st, ctx, "guild-1", "bet-1", "a1", "b1")
	mustCreateBet(t, st, ctx, "guild-1", "bet-2", "a2", "b2")

	for _, w := range []Wager{
		{CommunityID: "guild-1", BetID: "bet-1", MemberID: "u1", OptionID: "a1", Amount: 10},
		{CommunityID: "guild-1", BetID: "bet-2", MemberID: "u1", OptionID: "b2", Amount: 15},
		{CommunityID: "guild-1", BetID: "bet-2", MemberID: "u2", OptionID: "a2", Amount: 40},
	} {
		if err := st.UpsertWager(ctx, w); err != nil {
			t.Fatalf("upsert wager: %v", err)
		}
	}

	total, err := st.SumMemberWagers(ctx, "guild-1", "u1")
	if err != nil {
		t.Fatalf("sum wagers: %v", err)
	}
	if total != 25 {
		t.Fatalf("u1 live stake = %d, want 25", total)
	}

	if err := st.DeleteWagers(ctx, "guild-1", "bet-2"); err != nil {
		t.Fatalf("delete wagers: %v", err)
	}
	if total, _ = st.SumMemberWagers(ctx, "guild-1", "u1"); total != 10 {
		t.Fatalf("u1 live stake after settle = %d, want 10", total)
	}
	if total, _ = st.SumMemberWagers(ctx, "guild-1", "nobody"); total != 0 {
		t.Fatalf("unknown member stake = %d, want 0", total)
	}
}
