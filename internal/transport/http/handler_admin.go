package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"wager-pool/internal/ledger"
	"wager-pool/internal/notify"
	"wager-pool/internal/store"

	"github.com/go-chi/chi/v5"
)

type AdminHandlers struct {
	ledger    *ledger.Ledger
	publisher notify.Publisher
}

func NewAdminHandlers(l *ledger.Ledger, p notify.Publisher) *AdminHandlers {
	return &AdminHandlers{ledger: l, publisher: p}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.ledger.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		q := r.URL.Query()
		f := store.LedgerFilter{
			CommunityID: q.Get("community"),
			MemberID:    q.Get("member"),
			RefType:     q.Get("ref_type"),
			RefID:       q.Get("ref_id"),
		}
		items, err := h.ledger.Journal(r.Context(), f, limit, offset)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

// Income runs a grant sweep. The amount defaults to the configured income.
func (h *AdminHandlers) Income() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount *int64 `json:"amount"`
			RunID  string `json:"run_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		amount := h.ledger.Config().IncomeAmount
		if body.Amount != nil {
			amount = *body.Amount
		}
		runID := body.RunID
		if runID == "" {
			runID = store.NewRunID("manual")
		}
		updates, err := h.ledger.GrantIncome(r.Context(), runID, amount)
		h.publisher.Publish(notify.ReasonIncome, updates...)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "amount": amount, "credited": len(updates)})
	}
}

func (h *AdminHandlers) Reset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.ledger.ResetAll(r.Context(), chi.URLParam(r, "community"))
		h.publisher.Publish(notify.ReasonRefund, res.Refunds...)
		h.publisher.Publish(notify.ReasonReset, res.Accounts...)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		for range res.AbortedBets {
			metricBetsSettled.WithLabelValues(string(ledger.StatusAborted)).Inc()
		}
		writeJSON(w, http.StatusOK, res)
	}
}
