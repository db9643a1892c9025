package restclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/contacts", WithUserAgent("contacts/test"))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestListQueryParameters(t *testing.T) {
	tests := []struct {
		name   string
		params schema.ListParams
		want   map[string]string
		absent []string
	}{
		{
			name:   "plain page",
			params: schema.ListParams{Page: 2, Limit: 9},
			want:   map[string]string{"_page": "2", "_limit": "9"},
			absent: []string{"q", "favourite"},
		},
		{
			name:   "search and favourites",
			params: schema.ListParams{Page: 1, Limit: 5, Search: "ada l", FavouritesOnly: true},
			want:   map[string]string{"_page": "1", "_limit": "5", "q": "ada l", "favourite": "true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/contacts", r.URL.Path)
				assert.Equal(t, "contacts/test", r.UserAgent())
				q := r.URL.Query()
				for k, v := range tt.want {
					assert.Equal(t, v, q.Get(k), "query param %s", k)
				}
				for _, k := range tt.absent {
					assert.False(t, q.Has(k), "query param %s must be omitted", k)
				}
				w.Header().Set(TotalCountHeader, "12")
				writeJSON(t, w, http.StatusOK, []schema.Contact{{ID: "1", Name: "Ada"}})
			})

			page, err := client.List(context.Background(), tt.params)
			require.NoError(t, err)
			assert.Len(t, page.Items, 1)
			assert.Equal(t, 12, page.Total)
		})
	}
}

func TestListTotalFallback(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"absent header", "", 2},
		{"garbled header", "lots", 2},
		{"smaller than page", "1", 2},
		{"valid header", "40", 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				if tt.header != "" {
					w.Header().Set(TotalCountHeader, tt.header)
				}
				writeJSON(t, w, http.StatusOK, []schema.Contact{{ID: "1"}, {ID: "2"}})
			})

			page, err := client.List(context.Background(), schema.ListParams{Page: 1, Limit: 9})
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Total)
		})
	}
}

func TestListEmptyBodyIsEmptySlice(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(TotalCountHeader, "10")
		writeJSON(t, w, http.StatusOK, []schema.Contact{})
	})

	page, err := client.List(context.Background(), schema.ListParams{Page: 99, Limit: 9})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 10, page.Total, "out of range pages keep the store's total")
}

func TestItemRoutes(t *testing.T) {
	stored := schema.Contact{ID: "a b", Name: "Ada", Email: "ada@example.com", Phone: "1", Address: "X"}

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/contacts/a%20b", r.URL.EscapedPath())
			writeJSON(t, w, http.StatusOK, stored)
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var f schema.ContactFields
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f))
			writeJSON(t, w, http.StatusCreated, f.WithID("new"))
		case http.MethodPut:
			var f schema.ContactFields
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f))
			writeJSON(t, w, http.StatusOK, f.WithID("a b"))
		case http.MethodDelete:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{}"))
		}
	})
	ctx := context.Background()

	got, err := client.Get(ctx, "a b")
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	created, err := client.Create(ctx, stored.Fields())
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)
	assert.Equal(t, stored.Name, created.Name)

	fields := stored.Fields()
	fields.Favourite = true
	updated, err := client.Update(ctx, "a b", fields)
	require.NoError(t, err)
	assert.True(t, updated.Favourite)

	assert.NoError(t, client.Delete(ctx, "a b"))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		call    func(*Client) error
		wantErr error
	}{
		{
			name:   "get missing",
			status: http.StatusNotFound,
			body:   "{}",
			call: func(c *Client) error {
				_, err := c.Get(context.Background(), "x")
				return err
			},
			wantErr: contract.ErrNotFound,
		},
		{
			name:   "update missing",
			status: http.StatusNotFound,
			body:   "{}",
			call: func(c *Client) error {
				_, err := c.Update(context.Background(), "x", schema.ContactFields{})
				return err
			},
			wantErr: contract.ErrNotFound,
		},
		{
			name:    "delete missing",
			status:  http.StatusNotFound,
			body:    "{}",
			call:    func(c *Client) error { return c.Delete(context.Background(), "x") },
			wantErr: contract.ErrNotFound,
		},
		{
			name:   "list 404 is not a missing contact",
			status: http.StatusNotFound,
			body:   "{}",
			call: func(c *Client) error {
				_, err := c.List(context.Background(), schema.ListParams{Page: 1, Limit: 1})
				return err
			},
			wantErr: contract.ErrInvalidResponse,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "oops",
			call: func(c *Client) error {
				_, err := c.List(context.Background(), schema.ListParams{Page: 1, Limit: 1})
				return err
			},
			wantErr: contract.ErrInvalidResponse,
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   "[{",
			call: func(c *Client) error {
				_, err := c.List(context.Background(), schema.ListParams{Page: 1, Limit: 1})
				return err
			},
			wantErr: contract.ErrInvalidResponse,
		},
		{
			name:   "empty body",
			status: http.StatusOK,
			body:   "",
			call: func(c *Client) error {
				_, err := c.Get(context.Background(), "x")
				return err
			},
			wantErr: contract.ErrInvalidResponse,
		},
		{
			name:   "created without id",
			status: http.StatusCreated,
			body:   `{"name":"Ada"}`,
			call: func(c *Client) error {
				_, err := c.Create(context.Background(), schema.ContactFields{Name: "Ada"})
				return err
			},
			wantErr: contract.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := tt.call(client)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/contacts"
	srv.Close()

	client := New(base)
	_, err := client.List(context.Background(), schema.ListParams{Page: 1, Limit: 9})
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrNetworkFailure)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	client := New(srv.URL+"/contacts", WithTimeout(20*time.Millisecond))
	_, err := client.Get(context.Background(), "1")
	assert.ErrorIs(t, err, contract.ErrNetworkFailure)
}

func TestContextCancellation(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []schema.Contact{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.List(ctx, schema.ListParams{Page: 1, Limit: 9})
	assert.ErrorIs(t, err, contract.ErrNetworkFailure)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNumericIDs(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			w.Header().Set(TotalCountHeader, "2")
			_, _ = w.Write([]byte(`[{"id":1,"name":"Ada","email":"ada@example.com","phone":"1","address":"X","favourite":true},` +
				`{"id":"b2","name":"Bob","email":"bob@example.com","phone":"2","address":"Y","favourite":false}]`))
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":11,"name":"Cy","email":"cy@example.com","phone":"3","address":"Z","favourite":false}`))
		}
	})
	ctx := context.Background()

	page, err := client.List(ctx, schema.ListParams{Page: 1, Limit: 9})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "1", page.Items[0].ID)
	assert.Equal(t, "Ada", page.Items[0].Name)
	assert.True(t, page.Items[0].Favourite)
	assert.Equal(t, "b2", page.Items[1].ID)

	created, err := client.Create(ctx, schema.ContactFields{Name: "Cy", Email: "cy@example.com", Phone: "3", Address: "Z"})
	require.NoError(t, err)
	assert.Equal(t, "11", created.ID)
	assert.Equal(t, "Cy", created.Name)
}

func TestTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{}
	client := New("http://localhost/contacts", WithHTTPClient(shared), WithTimeout(time.Second))

	assert.Equal(t, time.Duration(0), shared.Timeout)
	assert.Equal(t, time.Second, client.http.Timeout)
	assert.NotSame(t, shared, client.http)
}
