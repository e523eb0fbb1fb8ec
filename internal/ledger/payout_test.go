package ledger

import "testing"

func TestComputePayoutsProportional(t *testing.T) {
	s := ComputePayouts([]Stake{
		{Member: "a", OptionID: "yes", Amount: 40},
		{Member: "b", OptionID: "no", Amount: 60},
	}, "yes")
	if s.Pot != 100 || s.WinningPot != 40 {
		t.Fatalf("pot = %d winning = %d, want 100 and 40", s.Pot, s.WinningPot)
	}
	if len(s.Payouts) != 1 || s.Payouts[0].Member != "a" || s.Payouts[0].Credit != 100 {
		t.Fatalf("payouts = %+v, want a credited 100", s.Payouts)
	}
	if s.Remainder != 0 {
		t.Fatalf("remainder = %d, want 0", s.Remainder)
	}
}

func TestComputePayoutsRemainderToLargestStake(t *testing.T) {
	// pot 10, winning pot 3: a gets 3, b gets 6, 1 left over
	s := ComputePayouts([]Stake{
		{Member: "a", OptionID: "x", Amount: 1},
		{Member: "b", OptionID: "x", Amount: 2},
		{Member: "c", OptionID: "y", Amount: 7},
	}, "x")
	got := map[string]int64{}
	var sum int64
	for _, p := range s.Payouts {
		got[p.Member] = p.Credit
		sum += p.Credit
	}
	if got["a"] != 3 {
		t.Fatalf("a credit = %d, want 3", got["a"])
	}
	if got["b"] != 7 {
		t.Fatalf("b credit = %d, want 7 (6 + remainder 1)", got["b"])
	}
	if sum != s.Pot {
		t.Fatalf("sum of credits = %d, want pot %d", sum, s.Pot)
	}
	if s.Remainder != 1 || s.RemainderTo != "b" {
		t.Fatalf("remainder = %d to %q, want 1 to b", s.Remainder, s.RemainderTo)
	}
}

func TestComputePayoutsRemainderTieGoesToEarliest(t *testing.T) {
	s := ComputePayouts([]Stake{
		{Member: "late", OptionID: "z", Amount: 5},
		{Member: "a", OptionID: "x", Amount: 1},
		{Member: "b", OptionID: "x", Amount: 1},
		{Member: "c", OptionID: "x", Amount: 1},
	}, "x")
	// pot 8, winning 3: floor(8/3)=2 each, remainder 2
	if s.Remainder != 2 || s.RemainderTo != "a" {
		t.Fatalf("remainder = %d to %q, want 2 to a", s.Remainder, s.RemainderTo)
	}
	if s.Payouts[0].Credit != 4 || s.Payouts[1].Credit != 2 || s.Payouts[2].Credit != 2 {
		t.Fatalf("payouts = %+v, want 4/2/2", s.Payouts)
	}
}

func TestComputePayoutsNoWinners(t *testing.T) {
	s := ComputePayouts([]Stake{
		{Member: "a", OptionID: "x", Amount: 10},
		{Member: "b", OptionID: "y", Amount: 20},
	}, "z")
	if s.Pot != 30 || s.WinningPot != 0 {
		t.Fatalf("pot = %d winning = %d, want 30 and 0", s.Pot, s.WinningPot)
	}
	if len(s.Payouts) != 0 {
		t.Fatalf("payouts = %+v, want none", s.Payouts)
	}
}

func TestComputePayoutsEmpty(t *testing.T) {
	s := ComputePayouts(nil, "x")
	if s.Pot != 0 || len(s.Payouts) != 0 {
		t.Fatalf("settlement = %+v, want empty", s)
	}
}

func TestComputePayoutsLargeAmountsDoNotOverflow(t *testing.T) {
	const big = int64(1) << 40
	s := ComputePayouts([]Stake{
		{Member: "a", OptionID: "x", Amount: big},
		{Member: "b", OptionID: "y", Amount: big * 3},
	}, "x")
	if len(s.Payouts) != 1 || s.Payouts[0].Credit != big*4 {
		t.Fatalf("payouts = %+v, want a credited %d", s.Payouts, big*4)
	}
}

func TestComputePayoutsConservesPot(t *testing.T) {
	stakes := []Stake{
		{Member: "a", OptionID: "x", Amount: 7},
		{Member: "b", OptionID: "x", Amount: 11},
		{Member: "c", OptionID: "x", Amount: 13},
		{Member: "d", OptionID: "y", Amount: 17},
		{Member: "e", OptionID: "z", Amount: 19},
	}
	for _, winner := range []string{"x", "y", "z"} {
		s := ComputePayouts(stakes, winner)
		var sum int64
		for _, p := range s.Payouts {
			sum += p.Credit
		}
		if sum != s.Pot {
			t.Fatalf("winner %s: credits = %d, want pot %d", winner, sum, s.Pot)
		}
	}
}
