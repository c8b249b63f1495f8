package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/brightcart/storefront-backend/internal/http/middleware"
	"github.com/brightcart/storefront-backend/internal/repository"
)

func parsePathID(input string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(input), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func parsePageRequest(r *http.Request) (repository.PageRequest, error) {
	page := repository.DefaultPage
	pageSize := repository.DefaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page must be a positive integer")
		}
		page = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page_size must be a positive integer")
		}
		if v > repository.MaxPageSize {
			return repository.PageRequest{}, fmt.Errorf("page_size must be <= %d", repository.MaxPageSize)
		}
		pageSize = v
	}
	return repository.PageRequest{Page: page, PageSize: pageSize}, nil
}

func paginatedData[T any](res repository.PageResult[T]) map[string]any {
	return map[string]any{
		"items": res.Items,
		"pagination": map[string]any{
			"page":        res.Page,
			"page_size":   res.PageSize,
			"total":       res.Total,
			"total_pages": res.TotalPages,
		},
	}
}

// principal pulls the authenticated identity the auth middleware stored on
// the request. Handlers behind the guard can assume it is present; the nil
// case is still handled for direct handler tests.
func principal(r *http.Request) (*middleware.Principal, bool) {
	return middleware.PrincipalFromContext(r.Context())
}

func actorIDString(p *middleware.Principal) string {
	if p == nil {
		return ""
	}
	return strconv.FormatUint(uint64(p.UserID), 10)
}
