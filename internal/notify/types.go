// Package notify fans account updates out to chat and event-stream sinks.
package notify

import (
	"context"
	"time"

	"wager-pool/internal/ledger"
)

// Reasons attached to a Notice.
const (
	ReasonAccountOpened = "account_opened"
	ReasonWager         = "wager"
	ReasonRefund        = "refund"
	ReasonPayout        = "payout"
	ReasonIncome        = "income"
	ReasonReset         = "reset"
)

// Notice is one balance movement to tell a member about.
type Notice struct {
	Reason string
	Update ledger.AccountUpdate
	At     time.Time
}

// Sink delivers notices to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, n Notice) error
}

// Publisher is what the ledger callers depend on.
type Publisher interface {
	Publish(reason string, updates ...ledger.AccountUpdate)
}

type job struct {
	sink    Sink
	notice  Notice
	attempt int
}
