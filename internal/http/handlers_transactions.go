package http

import (
	"context"
	"net/http"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

type createTransactionRequest struct {
	Title    string     `json:"title"`
	Amount   core.Money `json:"amount"`
	Category string     `json:"category"`
	Date     string     `json:"date"`
}

// transactionRoutes serves the /income and /expense families.
type transactionRoutes struct {
	s    *Server
	kind core.Kind
}

func (tr transactionRoutes) handleAdd(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.CreateInput{
		Title:    sanitizeInput(req.Title),
		Amount:   req.Amount,
		Category: sanitizeInput(req.Category),
	}
	if strings.TrimSpace(req.Date) != "" {
		d, err := core.ParseDate(req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.Date = d
	}

	ctx, cancel := tr.s.withTimeout(r)
	defer cancel()
	tx, err := tr.s.transactions.Create(ctx, u.ID, tr.kind, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (tr transactionRoutes) handleList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	query := r.URL.Query()
	rng, err := ParseRangeParams(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page := ParsePageParams(query)

	ctx, cancel := tr.s.withTimeout(r)
	defer cancel()
	res, err := tr.s.transactions.List(ctx, store.Query{Owner: u.ID, Kind: tr.kind, Range: rng}, page.Page, page.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	plural := tr.kind.Plural()
	writeJSON(w, http.StatusOK, map[string]any{
		plural:                  res.Items,
		"page":                  res.Page,
		"limit":                 res.Limit,
		"totalPages":            res.TotalPages,
		"total" + title(plural): res.Total,
	})
}

func (tr transactionRoutes) handleDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	id := r.PathValue("id")

	ctx, cancel := tr.s.withTimeout(r)
	defer cancel()
	if err := tr.s.transactions.Delete(ctx, u.ID, tr.kind, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (tr transactionRoutes) handleExport(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	// Exports get twice the query timeout.
	ctx, cancel := context.WithTimeout(r.Context(), 2*tr.s.queryTimeout)
	defer cancel()
	data, err := tr.s.transactions.Export(ctx, u.ID, tr.kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Attachment(export.Filename(tr.kind), export.ContentType, data).
		Header("Cache-Control", "no-store").
		Write(w)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
