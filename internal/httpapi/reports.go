// Report handler: the derived financial view over the journal.
package httpapi

import (
	"net/http"

	"github.com/kasbuku/kasbuku/internal/ledger"
)

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeyDateRange)
	dr, ok := v.(ledger.DateRange)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	rep, err := s.reportSvc.Generate(r.Context(), dr)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	resp, err := toReportResponse(rep)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, resp)
}
