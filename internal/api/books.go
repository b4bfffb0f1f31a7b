package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/susu3304/cashflow/internal/ledger"
	"github.com/susu3304/cashflow/internal/settle"
	"go.uber.org/zap"
)

type transactionJSON struct {
	Lender   int   `json:"lender"`
	Borrower int   `json:"borrower"`
	Amount   int64 `json:"amount"`
}

type participantJSON struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type settlementJSON struct {
	Strategy  string              `json:"strategy"`
	Payments  []ledger.NamedEntry `json:"payments"`
	TotalFlow int64               `json:"total_flow"`
	TotalCost int64               `json:"total_cost"`
}

func (a *API) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"strategies": settle.Names(),
		"default":    a.strategy.Name(),
	})
}

func (a *API) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req struct {
		Participants []string `json:"participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	participants, err := a.ledger.Create(id, claims.UserID, req.Participants)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("book created",
		zap.String("book_id", id), zap.String("user_id", claims.UserID), zap.Int("participants", len(participants)))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":           id,
		"participants": toParticipantJSON(participants),
	})
}

func (a *API) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := a.authorizeBook(w, r)
	if !ok {
		return
	}
	participants, err := a.ledger.Participants(id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	txs, err := a.ledger.Transactions(id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":           id,
		"participants": toParticipantJSON(participants),
		"transactions": toTransactionJSON(txs),
	})
}

func (a *API) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := a.authorizeBook(w, r)
	if !ok {
		return
	}
	if err := a.ledger.Stop(id); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "book deleted",
	})
}

func (a *API) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := a.authorizeBook(w, r)
	if !ok {
		return
	}
	txs, err := a.ledger.Transactions(id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(txs))
}

func (a *API) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := a.authorizeBook(w, r)
	if !ok {
		return
	}

	var req transactionJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := a.ledger.AddDebt(id, req.Lender, req.Borrower, req.Amount); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (a *API) handleUndo(w http.ResponseWriter, r *http.Request) {
	id, ok := a.authorizeBook(w, r)
	if !ok {
		return
	}
	if err := a.ledger.Undo(id); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "last transaction undone",
	})
}

func (a *API) handleBalances(w http.ResponseWriter, r *http.Request) {
	id, ok := a.authorizeBook(w, r)
	if !ok {
		return
	}
	balances, err := a.ledger.Balances(id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balances": balances,
	})
}

func (a *API) handleSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := a.authorizeBook(w, r)
	if !ok {
		return
	}

	strategy := a.strategy
	if name := r.URL.Query().Get("strategy"); name != "" {
		s, err := settle.Lookup(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		strategy = s
	}

	res, err := a.ledger.Settle(id, strategy)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementJSON{
		Strategy:  res.Plan.Strategy,
		Payments:  res.Entries,
		TotalFlow: res.Plan.TotalFlow,
		TotalCost: res.Plan.TotalCost,
	})
}

// authorizeBook resolves the book in the path and checks the caller started it.
func (a *API) authorizeBook(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["book_id"]
	owner, err := a.ledger.Owner(id)
	if err != nil {
		a.writeError(w, err)
		return "", false
	}
	if claims := claimsFrom(r); claims == nil || claims.UserID != owner {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return id, true
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settle.ErrValidation), errors.Is(err, ledger.ErrNoParticipants):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, settle.ErrPrecondition):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ledger.ErrNoSession):
		http.Error(w, "book not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrNothingToUndo):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		a.logger.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toParticipantJSON(ps []settle.Participant) []participantJSON {
	out := make([]participantJSON, 0, len(ps))
	for _, p := range ps {
		out = append(out, participantJSON{Index: p.Index, Name: p.Name})
	}
	return out
}

func toTransactionJSON(txs []settle.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionJSON{Lender: tx.Lender, Borrower: tx.Borrower, Amount: tx.Amount})
	}
	return out
}
