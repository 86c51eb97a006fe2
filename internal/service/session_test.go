package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/search"
)

// gatedSearcher blocks queries with SearchText "slow" until released or cancelled
type gatedSearcher struct {
	release chan struct{}
	started chan struct{}
	mu      sync.Mutex
	seen    []context.Context
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{release: make(chan struct{}), started: make(chan struct{}, 1)}
}

func (g *gatedSearcher) Search(ctx context.Context, q search.Query) (search.ResultView, error) {
	g.mu.Lock()
	g.seen = append(g.seen, ctx)
	g.mu.Unlock()

	if q.SearchText == "slow" {
		g.started <- struct{}{}
		select {
		case <-g.release:
		case <-ctx.Done():
			return search.ResultView{}, ctx.Err()
		}
	}
	return search.ResultView{TotalCount: len(q.SearchText)}, nil
}

func TestSessionApplyPublishes(t *testing.T) {
	finder, _ := newTestFinder(RaceFinderConfig{})
	session := NewSession(finder, 12, testLogger())

	_, _, ok := session.Current()
	assert.False(t, ok)

	q := search.DefaultQuery().WithPage(0, 12)
	q.SearchText = "otter"
	view, err := session.Apply(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	current, published, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, q, current)
	assert.Equal(t, view, published)
	assert.Equal(t, uint64(1), session.Generation())
}

func TestSessionReset(t *testing.T) {
	finder, _ := newTestFinder(RaceFinderConfig{})
	session := NewSession(finder, 2, testLogger())

	q := search.DefaultQuery()
	q.Difficulty = "hard"
	_, err := session.Apply(context.Background(), q)
	require.NoError(t, err)

	view, err := session.Reset(context.Background())
	require.NoError(t, err)

	current, _, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, search.DefaultQuery().WithPage(0, 2), current)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.TotalCount)
}

func TestSessionNewerQuerySupersedesInFlight(t *testing.T) {
	searcher := newGatedSearcher()
	session := NewSession(searcher, 0, testLogger())

	type outcome struct {
		view search.ResultView
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		view, err := session.Apply(context.Background(), search.Query{SearchText: "slow"})
		done <- outcome{view, err}
	}()

	<-searcher.started
	view, err := session.Apply(context.Background(), search.Query{SearchText: "fast"})
	require.NoError(t, err)
	assert.Equal(t, 4, view.TotalCount)

	select {
	case out := <-done:
		assert.ErrorIs(t, out.err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded query was not cancelled")
	}

	current, published, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, "fast", current.SearchText)
	assert.Equal(t, 4, published.TotalCount)
}

func TestSessionErrorKeepsLastResult(t *testing.T) {
	finder, _ := newTestFinder(RaceFinderConfig{})
	session := NewSession(finder, 0, testLogger())

	first, err := session.Apply(context.Background(), search.DefaultQuery())
	require.NoError(t, err)

	session.finder = NewRaceFinder(failingSource{err: errors.New("offline")}, RaceFinderConfig{Now: fixedClock}, testLogger())
	_, err = session.Apply(context.Background(), search.Query{SearchText: "otter"})
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	current, published, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, search.DefaultQuery(), current)
	assert.Equal(t, first, published)
}

func TestSessionConcurrentApply(t *testing.T) {
	source := datasource.NewStaticSource(testCatalog())
	session := NewSession(NewRaceFinder(source, RaceFinderConfig{Now: fixedClock}, testLogger()), 0, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := session.Apply(context.Background(), search.DefaultQuery())
			if err != nil {
				assert.ErrorIs(t, err, ErrSuperseded)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(20), session.Generation())
	_, view, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, 3, view.TotalCount)
}
