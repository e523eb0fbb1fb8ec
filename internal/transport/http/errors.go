package httptransport

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"wager-pool/internal/ledger"
)

func statusForCode(code string) int {
	switch code {
	case "not_found":
		return http.StatusNotFound
	case "forbidden":
		return http.StatusForbidden
	case "already_exists", "invalid_state", "insufficient_funds", "multiple_options":
		return http.StatusConflict
	case "invalid_request", "invalid_amount", "unknown_option":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeLedgerError renders a ledger error as {"error": code}. A
// MultipleOptionsError also lists the option already backed.
func writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	code := ledger.Code(err)
	metricLedgerErrors.WithLabelValues(code).Inc()

	var multi *ledger.MultipleOptionsError
	if errors.As(err, &multi) {
		writeJSON(w, http.StatusConflict, map[string]any{"error": code, "options": multi.Options})
		return
	}
	status := statusForCode(code)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("route", routePattern(r)).
			Msg("ledger operation failed")
	}
	WriteHTTPError(w, status, code)
}
