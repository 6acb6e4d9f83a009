package listing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencer(t *testing.T) {
	var s Sequencer
	assert.False(t, s.Current(0))

	first := s.Next()
	assert.True(t, s.Current(first))

	second := s.Next()
	assert.Greater(t, second, first)
	assert.False(t, s.Current(first))
	assert.True(t, s.Current(second))
}

func TestTracker_DiscardsOutOfOrderResponse(t *testing.T) {
	tr := NewTracker[string](New(StandardDefaults))

	slowRelease := make(chan struct{})
	slowStarted := make(chan struct{})
	fetch := func(ctx context.Context, q Query) (Page[string], error) {
		if q.SortColumn == "Name" {
			close(slowStarted)
			<-slowRelease
			return Page[string]{Data: []string{"by-name"}, Metadata: Metadata{CurrentPage: 1}}, nil
		}
		return Page[string]{Data: []string{"by-date"}, Metadata: Metadata{CurrentPage: 1}}, nil
	}

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = tr.Load(context.Background(), SortBy("Name"), fetch)
	}()

	<-slowStarted
	page, err := tr.Load(context.Background(), SortBy("CreatedAt"), fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"by-date"}, page.Data)

	close(slowRelease)
	wg.Wait()

	assert.ErrorIs(t, slowErr, ErrStale)
	latest, ok := tr.Page()
	require.True(t, ok)
	assert.Equal(t, []string{"by-date"}, latest.Data, "the stale response never replaces the newer one")
	assert.Equal(t, "CreatedAt", tr.Query().SortColumn)
}

func TestTracker_OnStaleHook(t *testing.T) {
	tr := NewTracker[int](New(StandardDefaults))
	var stale []Query
	tr.OnStale(func(q Query) { stale = append(stale, q) })

	q1, t1 := tr.Apply(GoToPage(2))
	_, t2 := tr.Apply(GoToPage(3))

	assert.False(t, tr.Accept(t1, q1, Page[int]{}))
	assert.True(t, tr.Accept(t2, tr.Query(), Page[int]{Data: []int{1}}))
	require.Len(t, stale, 1)
	assert.Equal(t, 2, stale[0].Page)
}

func TestTracker_ErrorFromCurrentFetch(t *testing.T) {
	tr := NewTracker[int](New(StandardDefaults))
	boom := errors.New("boom")

	_, err := tr.Load(context.Background(), Patch{}, func(context.Context, Query) (Page[int], error) {
		return Page[int]{}, boom
	})
	assert.ErrorIs(t, err, boom)
	_, ok := tr.Page()
	assert.False(t, ok)
}

func TestPage_Indices(t *testing.T) {
	p := Page[int]{Data: []int{1, 2, 3}, Metadata: Metadata{CurrentPage: 2, PageSize: 10, PageCount: 3, TotalCount: 23}}
	assert.Equal(t, 11, p.StartIndex())
	assert.Equal(t, 13, p.EndIndex())
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())

	empty := Empty[int](New(StandardDefaults))
	assert.Zero(t, empty.StartIndex())
	assert.Zero(t, empty.EndIndex())
	assert.False(t, empty.HasNext())
	assert.NotNil(t, empty.Data)
}

func TestMap(t *testing.T) {
	p := Page[int]{Data: []int{1, 2}, Metadata: Metadata{CurrentPage: 1}}
	got := Map(p, func(n int) string { return string(rune('a' + n)) })
	assert.Equal(t, []string{"b", "c"}, got.Data)
	assert.Equal(t, p.Metadata, got.Metadata)
}
