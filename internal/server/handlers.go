package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/sample"
	"github.com/koustreak/querytalk/internal/schema"
)

type interpretRequest struct {
	Request string `json:"request"`
}

type interpretResponse struct {
	SQL     string           `json:"sql,omitempty"`
	OK      bool             `json:"ok"`
	Columns []string         `json:"columns,omitempty"`
	Rows    []map[string]any `json:"rows,omitempty"`
	Message string           `json:"message,omitempty"`
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Request == "" {
		respondError(w, errs.New(errs.ErrKindInvalidInput, "body must be JSON with a non-empty request field"))
		return
	}

	start := time.Now()
	result, err := s.interp.Interpret(r.Context(), req.Request)
	s.metrics.ObserveInterpret(time.Since(start), err == nil && result.OK)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, interpretResponse{
		SQL:     result.SQL,
		OK:      result.OK,
		Columns: result.Columns,
		Rows:    result.Rows,
		Message: result.Message,
	})
}

type sampleResponse struct {
	SQL         string `json:"sql"`
	Description string `json:"description"`
}

// handleSamples returns generated queries. With ?keyword= the set is
// filtered to statements containing the keyword; an exhausted attempt
// budget yields an empty array, not an error.
func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")

	var generated []sample.Sample
	var err error
	if keyword != "" {
		generated, err = s.samples.GenerateWithKeyword(r.Context(), keyword)
	} else {
		generated, err = s.samples.GenerateSet(r.Context())
	}
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]sampleResponse, 0, len(generated))
	for _, g := range generated {
		out = append(out, sampleResponse{SQL: g.SQL, Description: g.Description})
	}
	respondJSON(w, http.StatusOK, out)
}

type schemaColumn struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Class string `json:"class"`
}

type schemaTable struct {
	Name    string         `json:"name"`
	Columns []schemaColumn `json:"columns"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	snap, err := schema.Take(r.Context(), s.db)
	if err != nil {
		respondError(w, err)
		return
	}

	tables := make([]schemaTable, 0, len(snap.Tables))
	for _, t := range snap.Tables {
		cols := make([]schemaColumn, 0, len(t.Columns))
		for _, c := range t.Columns {
			cols = append(cols, schemaColumn{Name: c.Name, Type: c.DataType, Class: c.Class.String()})
		}
		tables = append(tables, schemaTable{Name: t.Name, Columns: cols})
	}
	respondJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// respondError maps the unified error taxonomy onto HTTP statuses. The
// message is user-facing; the cause stays in the server log only.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var e *errs.Error
	if errors.As(err, &e) {
		message = e.Message
		switch e.Kind {
		case errs.ErrKindInvalidInput:
			status = http.StatusBadRequest
		case errs.ErrKindNotFound:
			status = http.StatusNotFound
		case errs.ErrKindTimeout:
			status = http.StatusGatewayTimeout
		case errs.ErrKindConnectionFailed:
			status = http.StatusBadGateway
		}
	}
	respondJSON(w, status, map[string]string{"error": message})
}
