package http

import (
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/log"
)

// handleSummary serves GET /dashboard/summary?startDate&endDate.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	rng, err := ParseRangeParams(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	summary, err := s.summaries.ComputeSummary(ctx, u.ID, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(ctx).DebugContext(ctx, "Dashboard summary computed",
		log.NewFields().WithUser(u.ID).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
			WithHTTPResponse(http.StatusOK, time.Since(start).Milliseconds())...)
	writeJSON(w, http.StatusOK, summary)
}
