package contacts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/huangsam/contacts/internal/contactstore"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/querycache"
	"github.com/huangsam/contacts/internal/restclient"
	"github.com/huangsam/contacts/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	listPath = "/contacts"
	itemPath = "/contacts/{id}"
)

// fixture wires a Service to a live store over HTTP.
type fixture struct {
	svc    *Service
	server *contactstore.Server
}

func (f *fixture) lists() uint64 { return f.server.Requests(http.MethodGet, listPath) }

func newFixture(t *testing.T, cs ...schema.Contact) *fixture {
	t.Helper()
	server := contactstore.NewServer(contactstore.NewInmem(cs...), nil, "test")
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	svc := NewService(restclient.New(ts.URL+listPath), querycache.New())
	return &fixture{svc: svc, server: server}
}

// tenContacts holds three favourites: ids 1, 2 and 3.
func tenContacts() []schema.Contact {
	cs := make([]schema.Contact, 10)
	for i := range cs {
		cs[i] = schema.Contact{
			ID:        fmt.Sprintf("%d", i+1),
			Name:      fmt.Sprintf("Contact %d", i+1),
			Email:     fmt.Sprintf("c%d@example.com", i+1),
			Phone:     fmt.Sprintf("555-01%02d", i+1),
			Address:   fmt.Sprintf("%d Main Street", i+1),
			Favourite: i < 3,
		}
	}
	return cs
}

var firstPage = schema.ListParams{Page: 1, Limit: 9}

func TestConcurrentIdenticalListsShareOneCall(t *testing.T) {
	f := newFixture(t, tenContacts()...)
	ctx := context.Background()

	const readers = 10
	results := make([]schema.PageResult, readers)
	errs := make([]error, readers)
	var wg sync.WaitGroup
	for i := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.svc.ListContacts(ctx, firstPage)
		}()
	}
	wg.Wait()

	for i := range readers {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
	assert.Len(t, results[0].Items, 9)
	assert.Equal(t, 10, results[0].Total)
	assert.Equal(t, uint64(1), f.lists())
}

func TestRepeatedListIsCached(t *testing.T) {
	f := newFixture(t, tenContacts()...)
	ctx := context.Background()

	first, err := f.svc.ListContacts(ctx, firstPage)
	require.NoError(t, err)
	second, err := f.svc.ListContacts(ctx, firstPage)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, uint64(1), f.lists())
	assert.Equal(t, 1, f.svc.Cache().Stats().Hits)
}

func TestDistinctKeysFetchSeparately(t *testing.T) {
	f := newFixture(t, tenContacts()...)
	ctx := context.Background()

	for _, p := range []schema.ListParams{
		firstPage,
		{Page: 2, Limit: 9},
		{Page: 1, Limit: 9, Search: "contact 1"},
		{Page: 1, Limit: 9, FavouritesOnly: true},
	} {
		_, err := f.svc.ListContacts(ctx, p)
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(4), f.lists())
}

func TestSuccessfulMutationsInvalidateEveryList(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(context.Context, *Service) error
	}{
		{"create", func(ctx context.Context, s *Service) error {
			_, err := s.CreateContact(ctx, schema.ContactFields{Name: "Ada", Email: "a@b.com", Phone: "123", Address: "X"})
			return err
		}},
		{"update", func(ctx context.Context, s *Service) error {
			_, err := s.UpdateContact(ctx, "5", schema.ContactFields{Name: "Five", Email: "5@b.com", Phone: "5", Address: "5"})
			return err
		}},
		{"delete", func(ctx context.Context, s *Service) error {
			return s.DeleteContact(ctx, "5")
		}},
	}

	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			f := newFixture(t, tenContacts()...)
			ctx := context.Background()
			views := []schema.ListParams{firstPage, {Page: 2, Limit: 9}, {Page: 1, Limit: 9, FavouritesOnly: true}}
			for _, p := range views {
				_, err := f.svc.ListContacts(ctx, p)
				require.NoError(t, err)
			}
			require.Equal(t, uint64(3), f.lists())

			require.NoError(t, m.mutate(ctx, f.svc))

			for _, p := range views {
				entry, ok := f.svc.Cache().Peek(schema.ListKey(p))
				require.True(t, ok)
				assert.True(t, entry.Stale, "%v should be stale", p)
			}
			for _, p := range views {
				_, err := f.svc.ListContacts(ctx, p)
				require.NoError(t, err)
			}
			assert.Equal(t, uint64(6), f.lists())
		})
	}
}

func TestMissingIDFailsWithoutInvalidation(t *testing.T) {
	f := newFixture(t, tenContacts()...)
	ctx := context.Background()

	_, err := f.svc.ListContacts(ctx, firstPage)
	require.NoError(t, err)

	_, err = f.svc.UpdateContact(ctx, "missing", schema.ContactFields{Name: "X", Email: "x@y.com", Phone: "1", Address: "X"})
	assert.ErrorIs(t, err, contract.ErrNotFound)
	err = f.svc.DeleteContact(ctx, "missing")
	assert.ErrorIs(t, err, contract.ErrNotFound)
	_, err = f.svc.GetContact(ctx, "missing")
	assert.ErrorIs(t, err, contract.ErrNotFound)

	entry, ok := f.svc.Cache().Peek(schema.ListKey(firstPage))
	require.True(t, ok)
	assert.False(t, entry.Stale)

	_, err = f.svc.ListContacts(ctx, firstPage)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), f.lists())
}

func TestToggleFavouriteTwiceRestores(t *testing.T) {
	f := newFixture(t, tenContacts()...)
	ctx := context.Background()

	original, err := f.svc.GetContact(ctx, "4")
	require.NoError(t, err)
	require.False(t, original.Favourite)

	toggled, err := f.svc.ToggleFavourite(ctx, original)
	require.NoError(t, err)
	assert.True(t, toggled.Favourite)
	assert.Equal(t, original.Fields().Name, toggled.Name)

	want := original.Fields()
	want.Favourite = true
	assert.Equal(t, want.WithID(original.ID), toggled, "toggle is an update with only the flag flipped")

	restored, err := f.svc.ToggleFavourite(ctx, toggled)
	require.NoError(t, err)
	assert.Equal(t, original, restored)

	fetched, err := f.svc.GetContact(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, original, fetched)
}

func TestFavouritesScenario(t *testing.T) {
	f := newFixture(t, tenContacts()...)
	ctx := context.Background()
	favourites := schema.ListParams{Page: 1, Limit: 9, FavouritesOnly: true}

	page, err := f.svc.ListContacts(ctx, favourites)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Total)

	fourth, err := f.svc.GetContact(ctx, "4")
	require.NoError(t, err)
	_, err = f.svc.ToggleFavourite(ctx, fourth)
	require.NoError(t, err)

	page, err = f.svc.ListContacts(ctx, favourites)
	require.NoError(t, err)
	assert.Len(t, page.Items, 4)
	assert.Equal(t, 4, page.Total)
}

func TestCreateThenGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fields := schema.ContactFields{Name: "Ada", Email: "a@b.com", Phone: "123", Address: "X", Favourite: false}

	created, err := f.svc.CreateContact(ctx, fields)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := f.svc.GetContact(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, fields, got.Fields())
}

func TestDeleteDropsContactEntry(t *testing.T) {
	f := newFixture(t, tenContacts()...)
	ctx := context.Background()

	_, err := f.svc.GetContact(ctx, "2")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteContact(ctx, "2"))

	_, ok := f.svc.Cache().Peek(schema.ContactKey("2"))
	assert.False(t, ok)
	_, err = f.svc.GetContact(ctx, "2")
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

func TestOutOfRangePageReturnsStoreAnswer(t *testing.T) {
	f := newFixture(t, tenContacts()...)

	page, err := f.svc.ListContacts(context.Background(), schema.ListParams{Page: 7, Limit: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 10, page.Total)
}

func TestValidationNeverReachesStore(t *testing.T) {
	store := &contract.MockContactStore{}
	svc := NewService(store, nil)
	ctx := context.Background()

	_, err := svc.ListContacts(ctx, schema.ListParams{Page: 0, Limit: 9})
	assert.ErrorIs(t, err, contract.ErrValidation)
	_, err = svc.ListContacts(ctx, schema.ListParams{Page: 1, Limit: 0})
	assert.ErrorIs(t, err, contract.ErrValidation)

	_, err = svc.CreateContact(ctx, schema.ContactFields{Name: "Ada", Email: "not-an-email", Phone: "123", Address: "X"})
	var verr *contract.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")

	_, err = svc.UpdateContact(ctx, "1", schema.ContactFields{Name: "Ada", Email: "a@b.com", Phone: "abc", Address: "X"})
	assert.ErrorIs(t, err, contract.ErrValidation)
	_, err = svc.UpdateContact(ctx, "", schema.ContactFields{})
	assert.ErrorIs(t, err, contract.ErrValidation)
	assert.ErrorIs(t, svc.DeleteContact(ctx, " "), contract.ErrValidation)
	_, err = svc.GetContact(ctx, "")
	assert.ErrorIs(t, err, contract.ErrValidation)

	store.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestFailedMutationKeepsListsFresh(t *testing.T) {
	store := &contract.MockContactStore{}
	svc := NewService(store, nil)
	ctx := context.Background()
	boom := fmt.Errorf("%w: connection refused", contract.ErrNetworkFailure)

	store.On("List", mock.Anything, firstPage).Return(schema.PageResult{Items: []schema.Contact{}, Total: 0}, nil).Once()
	store.On("Create", mock.Anything, mock.Anything).Return(schema.Contact{}, boom).Once()

	_, err := svc.ListContacts(ctx, firstPage)
	require.NoError(t, err)
	_, err = svc.CreateContact(ctx, schema.ContactFields{Name: "Ada", Email: "a@b.com", Phone: "1", Address: "X"})
	assert.ErrorIs(t, err, contract.ErrNetworkFailure)

	_, err = svc.ListContacts(ctx, firstPage)
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "List", 1)
}

func TestListFailureRetainsPreviousPage(t *testing.T) {
	store := &contract.MockContactStore{}
	svc := NewService(store, nil)
	ctx := context.Background()
	good := schema.PageResult{Items: []schema.Contact{{ID: "1", Name: "Ada"}}, Total: 1}
	boom := fmt.Errorf("%w: connection reset", contract.ErrNetworkFailure)

	store.On("List", mock.Anything, firstPage).Return(good, nil).Once()
	store.On("List", mock.Anything, firstPage).Return(schema.PageResult{}, boom).Once()

	_, err := svc.ListContacts(ctx, firstPage)
	require.NoError(t, err)
	svc.Cache().InvalidateResource(schema.ContactsResource)

	entry, err := svc.ListEntry(ctx, firstPage)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrNetworkFailure))
	assert.Equal(t, schema.ErrorStatus, entry.Status)
	assert.True(t, entry.HasData)
	assert.Equal(t, good, entry.Data)
	store.AssertExpectations(t)
}

func TestListAllWalksEveryPage(t *testing.T) {
	f := newFixture(t, tenContacts()...)
	ctx := context.Background()

	all, err := f.svc.ListAll(ctx, "", false, 4)
	require.NoError(t, err)
	require.Len(t, all, 10)
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, "10", all[9].ID)
	assert.Equal(t, uint64(3), f.lists())

	favs, err := f.svc.ListAll(ctx, "", true, 2)
	require.NoError(t, err)
	assert.Len(t, favs, 3)

	_, err = f.svc.ListAll(ctx, "", false, 0)
	assert.ErrorIs(t, err, contract.ErrValidation)
}
