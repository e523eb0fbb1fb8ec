package mcpserver

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

func clampLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		return maxLeaderboardLimit
	}
	return limit
}
