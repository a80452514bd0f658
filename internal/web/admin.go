package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// ResetConfirmation is the text the reset form must submit.
const ResetConfirmation = "RESET"

// handleExport downloads a table as CSV with values exactly as stored.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	table := mux.Vars(r)["table"]

	var buf bytes.Buffer
	err := s.store.Export(table, types.ExportCSV, &buf)
	if errors.Is(err, types.ErrTableNotFound) {
		s.notFound(w, "table "+table)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table+".csv"))
	_, _ = buf.WriteTo(w)
}

// handleReset drops every record. The form must carry confirm=RESET.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, "malformed form")
		return
	}
	if r.FormValue("confirm") != ResetConfirmation {
		s.badRequest(w, "type "+ResetConfirmation+" to confirm the reset")
		return
	}
	if err := s.store.Reset(); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.log.Warn().Str("request_id", requestID(r)).Msg("database reset")
	redirect(w, r, "/")
}
