package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"wager-pool/internal/ledger"
	"wager-pool/internal/notify"

	"github.com/go-chi/chi/v5"
)

type AccountHandlers struct {
	ledger    *ledger.Ledger
	publisher notify.Publisher
}

func NewAccountHandlers(l *ledger.Ledger, p notify.Publisher) *AccountHandlers {
	return &AccountHandlers{ledger: l, publisher: p}
}

func (h *AccountHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Member string `json:"member"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		upd, err := h.ledger.CreateAccount(r.Context(), chi.URLParam(r, "community"), body.Member)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		h.publisher.Publish(notify.ReasonAccountOpened, upd)
		writeJSON(w, http.StatusCreated, upd)
	}
}

func (h *AccountHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.ledger.ListAccounts(r.Context(), chi.URLParam(r, "community"))
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

func (h *AccountHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, err := h.ledger.Account(r.Context(), chi.URLParam(r, "community"), chi.URLParam(r, "member"))
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, acc)
	}
}

func (h *AccountHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 100 {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			limit = n
		}
		items, err := h.ledger.Leaderboard(r.Context(), chi.URLParam(r, "community"), limit)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}
