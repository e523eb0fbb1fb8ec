package store

import "time"

// Bet statuses as persisted in bets.status.
const (
	BetOpen    = "open"
	BetLocked  = "locked"
	BetAborted = "aborted"
	BetClosed  = "closed"
)

// Journal entry types.
const (
	EntryAccountOpen  = "account_open"
	EntryWagerDebit   = "wager_debit"
	EntryWagerRefund  = "wager_refund"
	EntryPayoutCredit = "payout_credit"
	EntryStakeForfeit = "stake_forfeit"
	EntryIncomeCredit = "income_credit"
	EntryReset        = "reset"
)

type Account struct {
	CommunityID string
	MemberID    string
	Balance     int64
	Staked      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type AccountKey struct {
	CommunityID string
	MemberID    string
}

type Bet struct {
	CommunityID     string
	BetID           string
	AuthorID        string
	Status          string
	WinningOptionID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Wager struct {
	CommunityID string
	BetID       string
	MemberID    string
	OptionID    string
	Amount      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OptionTotal is the amount riding on one option, derived from its wagers.
type OptionTotal struct {
	OptionID string
	Total    int64
	Bettors  int
}

type LedgerEntry struct {
	ID           string    `json:"id"`
	CommunityID  string    `json:"community_id"`
	MemberID     string    `json:"member_id"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	RefType      string    `json:"ref_type"`
	RefID        string    `json:"ref_id"`
	CreatedAt    time.Time `json:"created_at"`
}
