package service

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/logger"
	"github.com/EaziLuizi/raceradar/internal/metrics"
	"github.com/EaziLuizi/raceradar/internal/search"
)

// ErrSuperseded is returned by Apply when a newer query was applied before this one finished
var ErrSuperseded = errors.New("query superseded by a newer query")

// Session holds the browser's current query and the last result shown for it.
// Each Apply starts a new generation and cancels the one in flight; a result is
// published only while its generation is still the latest.
type Session struct {
	finder   Searcher
	pageSize int
	logger   *logger.SearchLogger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	query      search.Query
	current    *search.ResultView
}

// NewSession creates a session. pageSize is used by Reset.
func NewSession(finder Searcher, pageSize int, baseLogger *logrus.Logger) *Session {
	if baseLogger == nil {
		baseLogger = logrus.StandardLogger()
	}
	return &Session{
		finder:   finder,
		pageSize: pageSize,
		logger:   logger.NewSearchLogger(baseLogger),
		query:    search.DefaultQuery().WithPage(0, pageSize),
	}
}

// Apply evaluates q and publishes the result unless a newer Apply started meanwhile.
// On a fetch error the previously published result is kept.
func (s *Session) Apply(ctx context.Context, q search.Query) (search.ResultView, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	view, err := s.finder.Search(runCtx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		metrics.RecordSupersededQuery()
		s.logger.LogSupersededQuery(gen, s.generation)
		return search.ResultView{}, ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		return search.ResultView{}, err
	}

	s.query = q
	s.current = &view
	return view, nil
}

// Reset applies the cleared-filters query
func (s *Session) Reset(ctx context.Context) (search.ResultView, error) {
	return s.Apply(ctx, search.DefaultQuery().WithPage(0, s.pageSize))
}

// Current returns the last published query and result. ok is false before the first publish.
func (s *Session) Current() (q search.Query, view search.ResultView, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return s.query, search.ResultView{}, false
	}
	return s.query, *s.current, true
}

// Generation returns the number of queries applied so far
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
