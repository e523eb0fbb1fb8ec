package ledger

type BetStatus string

const (
	StatusOpen    BetStatus = "open"
	StatusLocked  BetStatus = "locked"
	StatusAborted BetStatus = "aborted"
	StatusClosed  BetStatus = "closed"
)

type Account struct {
	Community string `json:"community"`
	Member    string `json:"member"`
	Balance   int64  `json:"balance"`
	Staked    int64  `json:"staked"`
}

// AccountUpdate describes one balance movement so the caller can notify the
// member. Diff is signed: negative for a wager debit.
type AccountUpdate struct {
	Community string `json:"community"`
	Member    string `json:"member"`
	Diff      int64  `json:"diff"`
	Balance   int64  `json:"balance"`
}

type Bet struct {
	Community     string    `json:"community"`
	ID            string    `json:"bet_id"`
	Author        string    `json:"author"`
	Status        BetStatus `json:"status"`
	Options       []string  `json:"options"`
	WinningOption string    `json:"winning_option,omitempty"`
}

type OptionTally struct {
	OptionID string `json:"option_id"`
	Total    int64  `json:"total"`
	Bettors  int    `json:"bettors"`
}

type WagerResult struct {
	Account AccountUpdate `json:"account"`
	Tally   []OptionTally `json:"tally"`
}

type ResetResult struct {
	AbortedBets []string        `json:"aborted_bets"`
	Refunds     []AccountUpdate `json:"refunds"`
	Accounts    []AccountUpdate `json:"accounts"`
}
