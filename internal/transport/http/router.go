package httptransport

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"wager-pool/internal/config"
	"wager-pool/internal/ledger"
	"wager-pool/internal/mcpserver"
	"wager-pool/internal/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func NewRouter(l *ledger.Ledger, pub notify.Publisher, cfg config.ServerConfig) *chi.Mux {
	accountHandlers := NewAccountHandlers(l, pub)
	betHandlers := NewBetHandlers(l, pub)
	adminHandlers := NewAdminHandlers(l, pub)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(MetricsMiddleware)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.MCPEnabled {
		mcpSrv := mcpserver.New(l, pub)
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())
	} else {
		log.Info().Msg("mcp server disabled")
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Route("/communities/{community}", func(r chi.Router) {
			r.Post("/accounts", accountHandlers.Create())
			r.Get("/accounts", accountHandlers.List())
			r.Get("/accounts/{member}", accountHandlers.Get())
			r.Get("/leaderboard", accountHandlers.Leaderboard())

			r.Post("/bets", betHandlers.Register())
			r.Get("/bets/{bet}", betHandlers.Get())
			r.Get("/bets/{bet}/options", betHandlers.Options())
			r.Post("/bets/{bet}/wagers", betHandlers.Wager())
			r.Post("/bets/{bet}/lock", betHandlers.Lock())
			r.Post("/bets/{bet}/abort", betHandlers.Abort())
			r.Post("/bets/{bet}/close", betHandlers.Close())
			r.Get("/options/{option}/bet", betHandlers.BetOfOption())
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Use(BodyCaptureMiddleware(4096))
			r.Get("/ledger", adminHandlers.Ledger())
			r.Post("/income", adminHandlers.Income())
			r.Post("/communities/{community}/reset", adminHandlers.Reset())
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
