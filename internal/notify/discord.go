package notify

import (
	"context"
	"fmt"
	"strings"
)

// DiscordSink posts notices to a Discord webhook, mentioning the member.
type DiscordSink struct {
	client   *HTTPClient
	endpoint string
	currency string
}

func NewDiscordSink(client *HTTPClient, endpoint, currency string) *DiscordSink {
	if strings.TrimSpace(currency) == "" {
		currency = "coins"
	}
	return &DiscordSink{client: client, endpoint: endpoint, currency: currency}
}

func (s *DiscordSink) Name() string {
	return "discord"
}

func (s *DiscordSink) Send(ctx context.Context, n Notice) error {
	payload := map[string]any{
		"content": FormatText(n, s.currency),
		"allowed_mentions": map[string]any{
			"users": []string{n.Update.Member},
		},
	}
	return s.client.PostJSON(ctx, s.endpoint, payload)
}

// FormatText renders a notice as a chat line.
func FormatText(n Notice, currency string) string {
	diff := fmt.Sprintf("%d", n.Update.Diff)
	if n.Update.Diff > 0 {
		diff = "+" + diff
	}
	return fmt.Sprintf("<@%s> %s: **%s** %s, balance %d", n.Update.Member, n.Reason, diff, currency, n.Update.Balance)
}
