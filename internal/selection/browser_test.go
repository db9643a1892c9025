package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/querycache"
	"github.com/huangsam/contacts/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
	before func(schema.ListParams) // runs inside ListEntry, before returning
}

func (m *mockSource) ListEntry(ctx context.Context, params schema.ListParams) (querycache.Entry[schema.PageResult], error) {
	if m.before != nil {
		m.before(params)
	}
	ret := m.Called(ctx, params)
	entry, _ := ret.Get(0).(querycache.Entry[schema.PageResult])
	return entry, ret.Error(1)
}

func (m *mockSource) GetContact(ctx context.Context, id string) (schema.Contact, error) {
	ret := m.Called(ctx, id)
	c, _ := ret.Get(0).(schema.Contact)
	return c, ret.Error(1)
}

func pageOf(names ...string) schema.PageResult {
	items := make([]schema.Contact, 0, len(names))
	for _, n := range names {
		items = append(items, schema.Contact{ID: n, Name: n})
	}
	return schema.PageResult{Items: items, Total: len(items)}
}

func success(params schema.ListParams, page schema.PageResult) querycache.Entry[schema.PageResult] {
	return querycache.Entry[schema.PageResult]{
		Key:     schema.ListKey(params),
		Status:  schema.SuccessStatus,
		Data:    page,
		HasData: true,
	}
}

func TestParamsFollowState(t *testing.T) {
	b := NewBrowser(&mockSource{}, nil, 9)
	assert.Equal(t, schema.ListParams{Page: 1, Limit: 9}, b.Params())

	b.SetPage(3)
	b.State().SetSearchQuery("ada")
	assert.Equal(t, schema.ListParams{Page: 1, Limit: 9, Search: "ada"}, b.Params(), "filters set on the state reset the page")
	assert.Equal(t, schema.ListKey(b.Params()), b.Key())

	b.SetPage(2)
	b.State().SetShowFavouritesOnly(true)
	assert.Equal(t, 1, b.Page())

	b.SetPage(5)
	b.State().SetSearchQuery("ada")
	assert.Equal(t, 5, b.Page(), "an unchanged filter keeps the page")
}

func TestStateFilterChangeResetsPageOnLoad(t *testing.T) {
	src := &mockSource{}
	src.On("ListEntry", mock.Anything, schema.ListParams{Page: 1, Limit: 9, Search: "bob"}).
		Return(success(schema.ListParams{Page: 1, Limit: 9, Search: "bob"}, schema.PageResult{Items: []schema.Contact{}}), nil).Once()

	b := NewBrowser(src, nil, 9)
	b.SetPage(3)
	b.State().SetSearchQuery("bob")

	view, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schema.ListKey(schema.ListParams{Page: 1, Limit: 9, Search: "bob"}), view.Key)
	src.AssertExpectations(t)
}

func TestFilterChangesResetPage(t *testing.T) {
	b := NewBrowser(&mockSource{}, nil, 9)

	b.SetPage(4)
	b.SetSearch("ada")
	assert.Equal(t, 1, b.Page())

	b.SetPage(4)
	b.SetSearch("ada")
	assert.Equal(t, 4, b.Page(), "same search keeps the page")

	b.SetFavouritesOnly(true)
	assert.Equal(t, 1, b.Page())

	b.SetPage(2)
	assert.False(t, b.ToggleFavouritesOnly())
	assert.Equal(t, 1, b.Page())

	b.SetPage(-5)
	assert.Equal(t, 1, b.Page())
}

func TestLoadShowsPage(t *testing.T) {
	src := &mockSource{}
	b := NewBrowser(src, nil, 2)
	params := b.Params()
	page := schema.PageResult{Items: pageOf("a", "b").Items, Total: 5}
	src.On("ListEntry", mock.Anything, params).Return(success(params, page), nil).Once()

	view, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schema.ListKey(params), view.Key)
	assert.Equal(t, page, view.Page)
	assert.True(t, view.HasData)
	assert.False(t, view.Stale)
	assert.Equal(t, 3, b.PageCount())
	src.AssertExpectations(t)
}

func TestLoadFailureKeepsPreviousPage(t *testing.T) {
	src := &mockSource{}
	b := NewBrowser(src, nil, 9)
	first := b.Params()
	src.On("ListEntry", mock.Anything, first).Return(success(first, pageOf("a")), nil).Once()
	_, err := b.Load(context.Background())
	require.NoError(t, err)

	b.SetPage(2)
	second := b.Params()
	boom := errors.Join(contract.ErrNetworkFailure, errors.New("connection refused"))
	src.On("ListEntry", mock.Anything, second).Return(querycache.Entry[schema.PageResult]{Key: schema.ListKey(second), Status: schema.ErrorStatus}, boom).Once()

	view, err := b.Load(context.Background())
	assert.ErrorIs(t, err, contract.ErrNetworkFailure)
	assert.True(t, view.HasData)
	assert.True(t, view.Stale)
	assert.Equal(t, pageOf("a"), view.Page)
	assert.Equal(t, schema.ListKey(first), view.Key)
	assert.ErrorIs(t, view.Err, contract.ErrNetworkFailure)
}

func TestLoadFailureWithRetainedData(t *testing.T) {
	src := &mockSource{}
	b := NewBrowser(src, nil, 9)
	params := b.Params()
	boom := errors.Join(contract.ErrInvalidResponse, errors.New("status 500"))
	retained := querycache.Entry[schema.PageResult]{
		Key:     schema.ListKey(params),
		Status:  schema.ErrorStatus,
		Data:    pageOf("old"),
		HasData: true,
	}
	src.On("ListEntry", mock.Anything, params).Return(retained, boom).Once()

	view, err := b.Load(context.Background())
	assert.ErrorIs(t, err, contract.ErrInvalidResponse)
	assert.Equal(t, pageOf("old"), view.Page)
	assert.True(t, view.Stale)
}

func TestLastKeyWins(t *testing.T) {
	src := &mockSource{}
	b := NewBrowser(src, nil, 9)
	old := b.Params()

	src.before = func(p schema.ListParams) {
		if p == old {
			b.SetSearch("grace")
		}
	}
	src.On("ListEntry", mock.Anything, old).Return(success(old, pageOf("ada")), nil).Once()

	view, err := b.Load(context.Background())
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.False(t, view.HasData, "a superseded result is not shown")

	current := b.Params()
	src.On("ListEntry", mock.Anything, current).Return(success(current, pageOf("grace")), nil).Once()
	view, err = b.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pageOf("grace"), view.Page)
	assert.Equal(t, schema.ListKey(current), view.Key)
	src.AssertExpectations(t)
}

func TestSelected(t *testing.T) {
	src := &mockSource{}
	b := NewBrowser(src, nil, 9)
	ctx := context.Background()

	_, ok, err := b.Selected(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ada := schema.Contact{ID: "7", Name: "Ada"}
	src.On("GetContact", mock.Anything, "7").Return(ada, nil).Once()
	src.On("GetContact", mock.Anything, "8").Return(schema.Contact{}, contract.ErrNotFound).Once()

	b.Select("7")
	got, ok, err := b.Selected(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ada, got)

	b.Select("8")
	_, ok, err = b.Selected(ctx)
	assert.True(t, ok)
	assert.ErrorIs(t, err, contract.ErrNotFound)
	src.AssertExpectations(t)
}
