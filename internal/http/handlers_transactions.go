package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type transactionList struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, log.OpList)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewJSONResponse().Body(transactionList{Transactions: txs, Count: len(txs)}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	tx, verrs := ParseTransaction(p, s.now())
	if verrs != nil {
		log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction rejected",
			log.FieldOperation, log.OpValidate,
			log.FieldError, verrs)
		ValidationError(verrs).Write(w)
		return
	}

	saved, err := s.svc.Create(r.Context(), tx)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpCreate)
		return
	}
	s.invalidateOverviews()
	s.appMetrics.created()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+saved.ID).
		Body(saved).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		BadRequestError("transaction id is required").Write(w)
		return
	}

	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, log.OpDelete)
		return
	}
	s.invalidateOverviews()
	s.appMetrics.deleted()

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpDelete)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Clear(r.Context()); err != nil {
		s.writeServiceError(w, r, err, log.OpClear)
		return
	}
	s.invalidateOverviews()

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transactions cleared", log.FieldOperation, log.OpClear)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
