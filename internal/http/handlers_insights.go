package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type financialsResponse struct {
	core.Financials
	Formatted formattedFinancials `json:"formatted"`
}

type formattedFinancials struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

func (s *Server) handleFinancials(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.Financials(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Body(financialsResponse{
		Financials: f,
		Formatted: formattedFinancials{
			Income:  s.money.Format(f.Income),
			Expense: s.money.Format(f.Expense),
			Balance: s.money.Format(f.Balance),
		},
	}).Write(w)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.svc.Insights(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Body(map[string][]string{"insights": msgs}).Write(w)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	ov, err := s.getOverview(r.Context(), params.Year, params.Month)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpRead)
		return
	}
	if ov.ByCategory == nil {
		ov.ByCategory = []core.CategoryAmount{}
	}
	NewJSONResponse().Body(ov).Write(w)
}

type categoriesResponse struct {
	Expense []core.Category `json:"expense"`
	Income  []core.Category `json:"income"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(categoriesResponse{
		Expense: core.ExpenseCategories,
		Income:  core.IncomeCategories,
	}).Write(w)
}

// maxQueryLength bounds assistant questions.
const maxQueryLength = 500

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	query := p.Get("query")
	if len(query) > maxQueryLength {
		BadRequestError("query is too long").Write(w)
		return
	}

	reply, err := s.svc.Ask(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpRead)
		return
	}
	s.appMetrics.asked()

	log.FromContext(r.Context()).InfoContext(r.Context(), "Assistant query answered", log.FieldIntent, reply.Intent)
	NewJSONResponse().Body(reply).Write(w)
}
