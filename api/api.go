// Package api serves the savings analytics as a read-only JSON HTTP API.
//
//	GET /accounts
//	GET /accounts/{id}/summary
//	GET /accounts/{id}/positions
//	GET /accounts/{id}/annual
//	GET /accounts/{id}/valuation
//	GET /net-worth?currency=EUR
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/etnz/savings"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server handles the API requests.
type Server struct {
	engine   *savings.Engine
	currency string
}

// New returns the API handler. currency is the default net worth currency.
func New(engine *savings.Engine, currency string) http.Handler {
	s := &Server{engine: engine, currency: currency}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/accounts", s.handleAccounts)
	r.Route("/accounts/{id}", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/positions", s.handlePositions)
		r.Get("/annual", s.handleAnnual)
		r.Get("/valuation", s.handleValuation)
	})
	r.Get("/net-worth", s.handleNetWorth)
	return r
}

// sendJSON writes v as the JSON response.
func sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api-encode-failed err=%q", err)
	}
}

// sendJSONError writes an {"error": message} response.
func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// sendEngineError maps an engine error to its status code.
func sendEngineError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, savings.ErrAccountNotFound) {
		sendJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	log.Printf("api-request-failed path=%q err=%q", r.URL.Path, err)
	sendJSONError(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.engine.Accounts(r.Context())
	if err != nil {
		sendEngineError(w, r, err)
		return
	}
	res := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		res = append(res, newAccountResponse(a))
	}
	sendJSON(w, res)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary, err := s.engine.Summary(r.Context(), id)
	if err != nil {
		sendEngineError(w, r, err)
		return
	}
	sendJSON(w, newSummaryResponse(id, s.engine.Today(), summary))
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.engine.Positions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sendEngineError(w, r, err)
		return
	}
	res := make([]positionResponse, 0, len(positions))
	for _, p := range positions {
		res = append(res, newPositionResponse(p))
	}
	sendJSON(w, res)
}

func (s *Server) handleAnnual(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rows, err := s.engine.AnnualOverview(r.Context(), id)
	if err != nil {
		sendEngineError(w, r, err)
		return
	}
	sendJSON(w, newAnnualResponse(id, rows))
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	v, err := s.engine.Valuate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sendEngineError(w, r, err)
		return
	}
	sendJSON(w, newValuationResponse(v))
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	currency := s.currency
	if c := r.URL.Query().Get("currency"); c != "" {
		currency = strings.ToUpper(c)
		if err := savings.ValidateCurrency(currency); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	n, err := s.engine.NetWorth(r.Context(), currency)
	if err != nil {
		sendEngineError(w, r, err)
		return
	}
	sendJSON(w, newNetWorthResponse(n))
}
