package httptransport

import (
	"encoding/json"
	"net/http"

	"wager-pool/internal/ledger"
	"wager-pool/internal/notify"

	"github.com/go-chi/chi/v5"
)

type BetHandlers struct {
	ledger    *ledger.Ledger
	publisher notify.Publisher
}

func NewBetHandlers(l *ledger.Ledger, p notify.Publisher) *BetHandlers {
	return &BetHandlers{ledger: l, publisher: p}
}

func (h *BetHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			BetID   string   `json:"bet_id"`
			Author  string   `json:"author"`
			Options []string `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		bet, err := h.ledger.RegisterBet(r.Context(), chi.URLParam(r, "community"), body.BetID, body.Author, body.Options)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, bet)
	}
}

func (h *BetHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		community, betID := chi.URLParam(r, "community"), chi.URLParam(r, "bet")
		bet, err := h.ledger.Bet(r.Context(), community, betID)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		tally, err := h.ledger.Tally(r.Context(), community, betID)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bet": bet, "tally": tally})
	}
}

func (h *BetHandlers) Options() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := h.ledger.OptionsOfBet(r.Context(), chi.URLParam(r, "community"), chi.URLParam(r, "bet"))
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"options": options})
	}
}

func (h *BetHandlers) BetOfOption() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		betID, err := h.ledger.BetOfOption(r.Context(), chi.URLParam(r, "community"), chi.URLParam(r, "option"))
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bet_id": betID})
	}
}

// Wager accepts either an explicit amount or the index of a preset amount.
func (h *BetHandlers) Wager() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Member   string `json:"member"`
			OptionID string `json:"option_id"`
			Amount   *int64 `json:"amount"`
			Preset   *int   `json:"preset"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if (body.Amount == nil) == (body.Preset == nil) {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		community, betID := chi.URLParam(r, "community"), chi.URLParam(r, "bet")

		var res ledger.WagerResult
		var err error
		if body.Preset != nil {
			res, err = h.ledger.PlaceWagerPreset(r.Context(), community, betID, body.OptionID, body.Member, *body.Preset)
		} else {
			res, err = h.ledger.PlaceWager(r.Context(), community, betID, body.OptionID, body.Member, *body.Amount)
		}
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		metricWagersPlaced.Inc()
		metricWagerVolume.Add(float64(-res.Account.Diff))
		h.publisher.Publish(notify.ReasonWager, res.Account)
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *BetHandlers) Lock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := decodeActor(w, r)
		if !ok {
			return
		}
		community, betID := chi.URLParam(r, "community"), chi.URLParam(r, "bet")
		if err := h.ledger.LockBet(r.Context(), community, betID, actor); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bet_id": betID, "status": ledger.StatusLocked})
	}
}

func (h *BetHandlers) Abort() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := decodeActor(w, r)
		if !ok {
			return
		}
		community, betID := chi.URLParam(r, "community"), chi.URLParam(r, "bet")
		refunds, err := h.ledger.AbortBet(r.Context(), community, betID, actor)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		metricBetsSettled.WithLabelValues(string(ledger.StatusAborted)).Inc()
		h.publisher.Publish(notify.ReasonRefund, refunds...)
		writeJSON(w, http.StatusOK, map[string]any{"bet_id": betID, "status": ledger.StatusAborted, "refunds": refunds})
	}
}

func (h *BetHandlers) Close() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Member          string `json:"member"`
			WinningOptionID string `json:"winning_option_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		community, betID := chi.URLParam(r, "community"), chi.URLParam(r, "bet")
		winners, err := h.ledger.CloseBet(r.Context(), community, betID, body.WinningOptionID, body.Member)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		metricBetsSettled.WithLabelValues(string(ledger.StatusClosed)).Inc()
		h.publisher.Publish(notify.ReasonPayout, winners...)
		writeJSON(w, http.StatusOK, map[string]any{
			"bet_id":         betID,
			"status":         ledger.StatusClosed,
			"winning_option": body.WinningOptionID,
			"winners":        winners,
		})
	}
}

// decodeActor reads the {"member": ...} body of a lifecycle request.
func decodeActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		Member string `json:"member"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
		return "", false
	}
	return body.Member, true
}
