package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/EaziLuizi/raceradar/internal/presenter"
	"github.com/EaziLuizi/raceradar/internal/search"
)

// SearchResponse is the body of GET /api/races
type SearchResponse struct {
	Races     []presenter.Card   `json:"races"`
	Total     int                `json:"total"`
	Skipped   int                `json:"skipped"`
	Page      int                `json:"page"`
	PageSize  int                `json:"page_size"`
	PageCount int                `json:"page_count"`
	Facets    search.FacetCounts `json:"facets"`
	Filtered  bool               `json:"filtered"`
}

type searchParams struct {
	Text       string
	Province   string
	RaceType   string
	Difficulty string
	Upcoming   bool
	Sort       string `validate:"omitempty,max=32"`
	Page       int    `validate:"gte=0"`
	PageSize   int    `validate:"gte=0"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidParameter, err.Error())
		return
	}

	q := search.DefaultQuery()
	q.SearchText = params.Text
	q.OnlyUpcoming = params.Upcoming
	q.Sort = search.SortOrder(params.Sort).Normalize()
	if params.Province != "" {
		q.Province = params.Province
	}
	if params.RaceType != "" {
		q.RaceType = params.RaceType
	}
	if params.Difficulty != "" {
		q.Difficulty = params.Difficulty
	}
	q = q.WithPage(params.Page, params.PageSize)

	view, err := s.races.Search(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Races:     presenter.NewCards(view.Items, s.config.Now()),
		Total:     view.TotalCount,
		Skipped:   view.Skipped,
		Page:      view.Page.Index,
		PageSize:  view.Page.Size,
		PageCount: view.PageCount,
		Facets:    view.Facets,
		Filtered:  q.IsFiltered(),
	})
}

func (s *Server) parseSearchParams(values url.Values) (searchParams, error) {
	params := searchParams{
		Text:       values.Get("q"),
		Province:   values.Get("province"),
		RaceType:   values.Get("type"),
		Difficulty: values.Get("difficulty"),
		Upcoming:   true,
		Sort:       values.Get("sort"),
		PageSize:   s.config.DefaultPageSize,
	}
	if params.Sort == "" {
		params.Sort = string(s.config.DefaultSort)
	}

	var err error
	if v := values.Get("upcoming"); v != "" {
		if params.Upcoming, err = strconv.ParseBool(v); err != nil {
			return params, fmt.Errorf("upcoming must be true or false")
		}
	}
	if v := values.Get("page"); v != "" {
		if params.Page, err = strconv.Atoi(v); err != nil {
			return params, fmt.Errorf("page must be an integer")
		}
	}
	if v := values.Get("page_size"); v != "" {
		if params.PageSize, err = strconv.Atoi(v); err != nil {
			return params, fmt.Errorf("page_size must be an integer")
		}
	}

	// zero means "server default"; the finder enforces the maximum
	if params.PageSize == 0 {
		params.PageSize = s.config.DefaultPageSize
	}

	if err := s.validate.Struct(params); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return params, fmt.Errorf("%s is out of range", paramName(verrs[0].Field()))
		}
		return params, err
	}
	return params, nil
}

func paramName(field string) string {
	switch field {
	case "PageSize":
		return "page_size"
	default:
		return strings.ToLower(field)
	}
}

func (s *Server) handleRace(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if strings.TrimSpace(slug) == "" {
		writeError(w, r, http.StatusBadRequest, codeInvalidParameter, "slug is required")
		return
	}

	race, err := s.races.RaceBySlug(r.Context(), slug)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, presenter.NewDetail(race, s.config.Now()))
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.races.FilterOptions())
}
