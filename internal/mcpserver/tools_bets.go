package mcpserver

import (
	"context"
	"math"

	"wager-pool/internal/notify"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerBetTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_bet",
			mcp.WithDescription("Get a bet's status, options and the amount riding on each option"),
			mcp.WithString("community", mcp.Required(), mcp.Description("Community id")),
			mcp.WithString("bet_id", mcp.Required(), mcp.Description("Bet id")),
		),
		s.handleGetBet,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"place_wager",
			mcp.WithDescription("Stake currency on one option of an open bet. Wagering again on the same option tops it up."),
			mcp.WithString("community", mcp.Required(), mcp.Description("Community id")),
			mcp.WithString("bet_id", mcp.Required(), mcp.Description("Bet id")),
			mcp.WithString("option_id", mcp.Required(), mcp.Description("Option id")),
			mcp.WithString("member", mcp.Required(), mcp.Description("Member id")),
			mcp.WithNumber("amount", mcp.Description("Amount to stake")),
			mcp.WithNumber("preset", mcp.Description("Index of a preset amount, instead of amount")),
		),
		s.handlePlaceWager,
	)
}

func (s *Server) handleGetBet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	community, err := request.RequireString("community")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	betID, err := request.RequireString("bet_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	bet, err := s.ledger.Bet(ctx, community, betID)
	if err != nil {
		return mapLedgerError(err), nil
	}
	tally, err := s.ledger.Tally(ctx, community, betID)
	if err != nil {
		return mapLedgerError(err), nil
	}
	return toolResult(map[string]any{"bet": bet, "tally": tally}), nil
}

func (s *Server) handlePlaceWager(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var ids [4]string
	for i, key := range []string{"community", "bet_id", "option_id", "member"} {
		v, err := request.RequireString(key)
		if err != nil {
			return toolError("invalid_request", err.Error()), nil
		}
		ids[i] = v
	}
	community, betID, optionID, member := ids[0], ids[1], ids[2], ids[3]

	args := request.GetArguments()
	_, hasAmount := args["amount"]
	_, hasPreset := args["preset"]
	if hasAmount == hasPreset {
		return toolError("invalid_request", "exactly one of amount or preset is required"), nil
	}

	if hasPreset {
		preset, errResult := wholeNumber(request, "preset")
		if errResult != nil {
			return errResult, nil
		}
		res, err := s.ledger.PlaceWagerPreset(ctx, community, betID, optionID, member, int(preset))
		if err != nil {
			return mapLedgerError(err), nil
		}
		s.publisher.Publish(notify.ReasonWager, res.Account)
		return toolResult(res), nil
	}

	amount, errResult := wholeNumber(request, "amount")
	if errResult != nil {
		return errResult, nil
	}
	res, err := s.ledger.PlaceWager(ctx, community, betID, optionID, member, amount)
	if err != nil {
		return mapLedgerError(err), nil
	}
	s.publisher.Publish(notify.ReasonWager, res.Account)
	return toolResult(res), nil
}

// wholeNumber reads a numeric argument that must carry no fractional part.
func wholeNumber(request mcp.CallToolRequest, key string) (int64, *mcp.CallToolResult) {
	v, err := request.RequireFloat(key)
	if err != nil {
		return 0, toolError("invalid_request", err.Error())
	}
	if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return 0, toolError("invalid_amount", key+" must be a whole number")
	}
	return int64(v), nil
}
