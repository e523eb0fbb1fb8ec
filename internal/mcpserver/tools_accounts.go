package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerAccountTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_balance",
			mcp.WithDescription("Get a member's spendable balance and staked amount"),
			mcp.WithString("community", mcp.Required(), mcp.Description("Community id")),
			mcp.WithString("member", mcp.Required(), mcp.Description("Member id")),
		),
		s.handleGetBalance,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_leaderboard",
			mcp.WithDescription("Rank a community by balance plus staked"),
			mcp.WithString("community", mcp.Required(), mcp.Description("Community id")),
			mcp.WithNumber("limit", mcp.Description("Entries, default 10, max 100")),
		),
		s.handleGetLeaderboard,
	)
}

func (s *Server) handleGetBalance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	community, err := request.RequireString("community")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	member, err := request.RequireString("member")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	acc, err := s.ledger.Account(ctx, community, member)
	if err != nil {
		return mapLedgerError(err), nil
	}
	return toolResult(acc), nil
}

func (s *Server) handleGetLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	community, err := request.RequireString("community")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	limit := clampLeaderboardLimit(request.GetInt("limit", defaultLeaderboardLimit))
	items, err := s.ledger.Leaderboard(ctx, community, limit)
	if err != nil {
		return mapLedgerError(err), nil
	}
	return toolResult(map[string]any{"items": items}), nil
}
