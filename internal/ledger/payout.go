package ledger

import "math/bits"

// Stake is one member's wager on an option, in placement order.
type Stake struct {
	Member   string
	OptionID string
	Amount   int64
}

// Payout is the credit owed to one winning member.
type Payout struct {
	Member string `json:"member"`
	Stake  int64  `json:"stake"`
	Credit int64  `json:"credit"`
}

// Settlement is the outcome of distributing a pot over the winning option.
// Remainder is the rounding leftover already included in RemainderTo's credit.
type Settlement struct {
	Pot         int64    `json:"pot"`
	WinningPot  int64    `json:"winning_pot"`
	Payouts     []Payout `json:"payouts"`
	Remainder   int64    `json:"remainder"`
	RemainderTo string   `json:"remainder_to,omitempty"`
}

// ComputePayouts splits the pot of stakes between the members who backed
// winning, proportionally to their stake. Each winner gets
// floor(stake*pot/winningPot); the leftover from flooring goes to the largest
// winning stake, the earliest one on ties. When nobody backed the winner the
// settlement has no payouts and the whole pot is forfeit.
//
// The sum of credits always equals Pot when WinningPot > 0.
func ComputePayouts(stakes []Stake, winning string) Settlement {
	var out Settlement
	for _, s := range stakes {
		out.Pot += s.Amount
		if s.OptionID == winning {
			out.WinningPot += s.Amount
		}
	}
	out.Payouts = []Payout{}
	if out.WinningPot == 0 {
		return out
	}

	var paid int64
	largest := -1
	for _, s := range stakes {
		if s.OptionID != winning || s.Amount <= 0 {
			continue
		}
		credit := proportion(s.Amount, out.Pot, out.WinningPot)
		paid += credit
		out.Payouts = append(out.Payouts, Payout{Member: s.Member, Stake: s.Amount, Credit: credit})
		if largest < 0 || s.Amount > out.Payouts[largest].Stake {
			largest = len(out.Payouts) - 1
		}
	}

	out.Remainder = out.Pot - paid
	if out.Remainder > 0 && largest >= 0 {
		out.Payouts[largest].Credit += out.Remainder
		out.RemainderTo = out.Payouts[largest].Member
	}
	return out
}

// proportion returns floor(stake*pot/winningPot) without overflowing.
// stake <= winningPot <= pot, so the quotient fits in 64 bits.
func proportion(stake, pot, winningPot int64) int64 {
	hi, lo := bits.Mul64(uint64(stake), uint64(pot))
	q, _ := bits.Div64(hi, lo, uint64(winningPot))
	return int64(q)
}
