package handler

import (
	"errors"
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

var errBadPagination = errors.New("invalid pagination parameters")

// parsePagination reads page and limit from the query string. Absent values
// fall back to the defaults, non-numeric or non-positive values are rejected,
// and limit is clamped to maxLimit.
func parsePagination(r *http.Request) (page, limit int, err error) {
	page, limit = defaultPage, defaultLimit

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return 0, 0, errBadPagination
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return 0, 0, errBadPagination
		}
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit, nil
}

// totalPages is ceil(total/limit); zero rows still report one page worth of
// envelope arithmetic consistently.
func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}
