// Package mcpserver exposes ledger reads and wagering as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"wager-pool/internal/ledger"
	"wager-pool/internal/notify"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	ledger    *ledger.Ledger
	publisher notify.Publisher

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(l *ledger.Ledger, p notify.Publisher) *Server {
	mcpSrv := server.NewMCPServer(
		"wager-pool",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		ledger:     l,
		publisher:  p,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerAccountTools()
	s.registerBetTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"bet://{community}/{bet_id}",
			"bet_state",
			mcp.WithTemplateDescription("Bet status, options and live tally"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := string(request.Params.URI)
			community, betID, ok := parseBetURI(raw)
			if !ok {
				return nil, fmt.Errorf("malformed bet uri %q", raw)
			}
			bet, err := s.ledger.Bet(ctx, community, betID)
			if err != nil {
				return nil, err
			}
			tally, err := s.ledger.Tally(ctx, community, betID)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(map[string]any{"bet": bet, "tally": tally})
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}

func parseBetURI(raw string) (string, string, bool) {
	rest, ok := strings.CutPrefix(raw, "bet://")
	if !ok {
		return "", "", false
	}
	community, betID, ok := strings.Cut(rest, "/")
	if !ok || community == "" || betID == "" || strings.Contains(betID, "/") {
		return "", "", false
	}
	return community, betID, true
}
