package pager

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/matst80/dematerialized-catalog/pkg/navigation"
	"github.com/matst80/dematerialized-catalog/pkg/query"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pagingSource struct{}

func (pagingSource) ListQuery(_ context.Context, page, limit int) url.Values {
	return query.Build(query.Params{Page: page, Limit: limit})
}

type listFunc func(ctx context.Context, q url.Values) (*types.ListResponse, error)

func (f listFunc) List(ctx context.Context, q url.Values) (*types.ListResponse, error) {
	return f(ctx, q)
}

type recordingView struct {
	mu           sync.Mutex
	items        []types.Item
	empty        string
	state        types.PageState
	prevDisabled bool
	nextDisabled bool
}

func (v *recordingView) RenderItems(items []types.Item) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = items
	v.empty = ""
}

func (v *recordingView) RenderEmpty(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = nil
	v.empty = message
}

func (v *recordingView) UpdatePager(state types.PageState, prevDisabled, nextDisabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = state
	v.prevDisabled = prevDisabled
	v.nextDisabled = nextDisabled
}

func makeItems(n int) []types.Item {
	ret := make([]types.Item, n)
	for i := range ret {
		ret[i] = types.Item{Id: types.FlexString(fmt.Sprint(i + 1)), Name: fmt.Sprintf("Item %d", i+1)}
	}
	return ret
}

func TestLoadPageSecondPage(t *testing.T) {
	var sent string
	lister := listFunc(func(_ context.Context, q url.Values) (*types.ListResponse, error) {
		sent = query.Encode(q)
		return &types.ListResponse{Items: makeItems(20), Page: 2, TotalPages: 3, TotalItems: 55}, nil
	})
	view := &recordingView{}
	history := navigation.NewMemoryHistory(url.Values{})
	p := New(lister, pagingSource{}, view, Options{PageSize: 20, History: history})

	require.True(t, p.LoadPage(context.Background(), 2, true))

	assert.True(t, strings.Contains(sent, "page=2&limit=20"), sent)
	assert.Equal(t, types.PageState{CurrentPage: 2, TotalPages: 3}, p.State())
	assert.False(t, view.prevDisabled)
	assert.False(t, view.nextDisabled)
	assert.Len(t, view.items, 20)

	entry, ok := history.Current()
	require.True(t, ok)
	assert.Equal(t, "2", entry.Query.Get("page"))
	assert.Equal(t, 2, entry.State.CurrentPage)
	assert.Equal(t, 2, history.Len())
}

func TestLoadPageControlsAtBounds(t *testing.T) {
	lister := listFunc(func(_ context.Context, q url.Values) (*types.ListResponse, error) {
		return &types.ListResponse{Items: makeItems(3), Page: 1, TotalPages: 0}, nil
	})
	view := &recordingView{}
	p := New(lister, pagingSource{}, view, Options{PageSize: 20})

	require.True(t, p.LoadPage(context.Background(), 0, false))
	assert.Equal(t, types.PageState{CurrentPage: 1, TotalPages: 1}, p.State())
	assert.True(t, view.prevDisabled)
	assert.True(t, view.nextDisabled)
	assert.False(t, p.Next(context.Background()))
	assert.False(t, p.Prev(context.Background()))
}

func TestLoadPageBoundsItemsToPageSize(t *testing.T) {
	lister := listFunc(func(_ context.Context, q url.Values) (*types.ListResponse, error) {
		return &types.ListResponse{Items: makeItems(30), Page: 1, TotalPages: 1}, nil
	})
	view := &recordingView{}
	p := New(lister, pagingSource{}, view, Options{PageSize: 12})
	p.LoadPage(context.Background(), 1, false)
	assert.Len(t, view.items, 12)
}

func TestLoadPageFailureRendersMessage(t *testing.T) {
	lister := listFunc(func(_ context.Context, q url.Values) (*types.ListResponse, error) {
		return nil, errors.New("502 bad gateway")
	})
	view := &recordingView{}
	afterLoadCalled := false
	p := New(lister, pagingSource{}, view, Options{
		AfterLoad: func(context.Context, types.PageState, *types.ListResponse) { afterLoadCalled = true },
	})

	assert.False(t, p.LoadPage(context.Background(), 3, true))
	assert.Equal(t, ErrorMessage, view.empty)
	assert.Equal(t, types.NewPageState(), p.State())
	assert.False(t, afterLoadCalled)
}

func TestLoadPageEmptyResult(t *testing.T) {
	lister := listFunc(func(_ context.Context, q url.Values) (*types.ListResponse, error) {
		return &types.ListResponse{Page: 1, TotalPages: 1}, nil
	})
	view := &recordingView{}
	p := New(lister, pagingSource{}, view, Options{})
	assert.True(t, p.LoadPage(context.Background(), 1, false))
	assert.Equal(t, EmptyMessage, view.empty)
}

func TestLoadPageDiscardsStaleResponses(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	lister := listFunc(func(_ context.Context, q url.Values) (*types.ListResponse, error) {
		if q.Get("page") == "1" {
			close(started)
			<-release
			return &types.ListResponse{Items: makeItems(1), Page: 1, TotalPages: 5}, nil
		}
		return &types.ListResponse{Items: makeItems(2), Page: 2, TotalPages: 5}, nil
	})
	view := &recordingView{}
	p := New(lister, pagingSource{}, view, Options{})

	firstApplied := make(chan bool)
	go func() {
		firstApplied <- p.LoadPage(context.Background(), 1, false)
	}()
	<-started
	require.True(t, p.LoadPage(context.Background(), 2, false))
	close(release)

	assert.False(t, <-firstApplied)
	assert.Equal(t, 2, p.State().CurrentPage)
	assert.Len(t, view.items, 2)
}

type blockingView struct {
	recordingView
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (v *blockingView) RenderItems(items []types.Item) {
	if len(items) == 1 {
		v.once.Do(func() {
			close(v.entered)
			<-v.release
		})
	}
	v.recordingView.RenderItems(items)
}

func TestLoadPageOvertakenWhileRendering(t *testing.T) {
	secondListed := make(chan struct{})
	lister := listFunc(func(_ context.Context, q url.Values) (*types.ListResponse, error) {
		if q.Get("page") == "1" {
			return &types.ListResponse{Items: makeItems(1), Page: 1, TotalPages: 5}, nil
		}
		close(secondListed)
		return &types.ListResponse{Items: makeItems(2), Page: 2, TotalPages: 5}, nil
	})
	view := &blockingView{entered: make(chan struct{}), release: make(chan struct{})}
	history := navigation.NewMemoryHistory(url.Values{})
	var afterLoads []int
	p := New(lister, pagingSource{}, view, Options{
		History: history,
		AfterLoad: func(_ context.Context, state types.PageState, _ *types.ListResponse) {
			afterLoads = append(afterLoads, state.CurrentPage)
		},
	})
	ctx := context.Background()

	firstApplied := make(chan bool)
	go func() {
		firstApplied <- p.LoadPage(ctx, 1, true)
	}()
	<-view.entered

	secondApplied := make(chan bool)
	go func() {
		secondApplied <- p.LoadPage(ctx, 2, true)
	}()
	<-secondListed
	close(view.release)

	assert.False(t, <-firstApplied)
	assert.True(t, <-secondApplied)

	assert.Equal(t, 2, p.State().CurrentPage)
	assert.Equal(t, 2, view.state.CurrentPage)
	assert.Len(t, view.items, 2)
	current, ok := history.Current()
	require.True(t, ok)
	assert.Equal(t, 2, current.State.CurrentPage)
	assert.Equal(t, 2, history.Len())
	assert.Equal(t, []int{2}, afterLoads)
}

func TestNextAndPrev(t *testing.T) {
	lister := listFunc(func(_ context.Context, q url.Values) (*types.ListResponse, error) {
		var page int
		fmt.Sscanf(q.Get("page"), "%d", &page)
		return &types.ListResponse{Items: makeItems(1), Page: page, TotalPages: 3}, nil
	})
	history := navigation.NewMemoryHistory(url.Values{})
	p := New(lister, pagingSource{}, &recordingView{}, Options{History: history})
	ctx := context.Background()

	p.LoadPage(ctx, 1, false)
	require.True(t, p.Next(ctx))
	require.True(t, p.Next(ctx))
	assert.False(t, p.Next(ctx))
	assert.Equal(t, 3, p.State().CurrentPage)

	require.True(t, p.Prev(ctx))
	assert.Equal(t, 2, p.State().CurrentPage)

	back, ok := history.Back()
	require.True(t, ok)
	require.True(t, p.Restore(ctx, back))
	assert.Equal(t, back.State.CurrentPage, p.State().CurrentPage)
}

func TestAfterLoadReceivesState(t *testing.T) {
	lister := listFunc(func(_ context.Context, q url.Values) (*types.ListResponse, error) {
		return &types.ListResponse{Items: makeItems(1), Page: 1, TotalPages: 2}, nil
	})
	var got types.PageState
	p := New(lister, pagingSource{}, nil, Options{
		AfterLoad: func(_ context.Context, state types.PageState, _ *types.ListResponse) { got = state },
	})
	p.LoadPage(context.Background(), 1, false)
	assert.Equal(t, types.PageState{CurrentPage: 1, TotalPages: 2}, got)
}
