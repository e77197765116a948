package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	maxBodyBytes = 1 << 20
)

var errBadRequestBody = errors.New("malformed request body")

// decodeJSON reads a single JSON object into dst. Amount errors keep their
// sentinel so they map to the amount message.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequestBody)
		}
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errBadRequestBody)
	}
	return nil
}

// PageParams is a 1-based page request.
type PageParams struct {
	Page  int
	Limit int
}

// ParsePageParams reads page and limit, falling back to the defaults on
// missing or non-positive values and capping limit.
func ParsePageParams(query url.Values) PageParams {
	p := PageParams{Page: defaultPage, Limit: defaultLimit}
	if v, err := strconv.Atoi(strings.TrimSpace(query.Get("page"))); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(query.Get("limit"))); err == nil && v > 0 {
		p.Limit = min(v, maxLimit)
	}
	return p
}

// ParseRangeParams reads startDate and endDate.
func ParseRangeParams(query url.Values) (core.DateRange, error) {
	return core.ParseDateRange(query.Get("startDate"), query.Get("endDate"))
}

// sanitizeInput trims s and drops control characters.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s))
}
