package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != CategoriesPath {
			t.Errorf("Expected path %s, got %s", CategoriesPath, r.URL.Path)
		}
		w.Write([]byte(`["Jackets", {"id": 2, "name": "Bags", "slug": "bags"}, {"name": ""}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	options, err := c.Options(context.Background(), types.Category)
	require.NoError(t, err)
	assert.Equal(t, []types.FacetOption{
		{Name: "Jackets"},
		{Id: "2", Name: "Bags", Slug: "bags"},
	}, options)
}

func TestOptionsUnknownGroup(t *testing.T) {
	c := NewClient("http://localhost")
	_, err := c.Options(context.Background(), types.Group("size"))
	assert.Error(t, err)
}

func TestListSendsCanonicalQuery(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{"clothing_items": [{"id": 1, "name": "Bomber"}], "page": 2, "total_pages": 3, "total_items": 41}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.List(context.Background(), url.Values{"limit": {"20"}, "page": {"2"}, "category_slug": {"jackets"}})
	require.NoError(t, err)
	assert.Equal(t, "page=2&limit=20&category_slug=jackets", rawQuery)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 3, res.TotalPages)
	assert.Len(t, res.Items, 1)
}

func TestCountUsesProbePaging(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"clothing_items": [{"id": 1}], "page": 1, "total_pages": 17, "total_items": 17}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	in := url.Values{"color": {"Red"}, "page": {"4"}}
	n, err := c.Count(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 17, n)
	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, "1", got.Get("limit"))
	assert.Equal(t, "Red", got.Get("color"))
	assert.Equal(t, "4", in.Get("page"))
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.List(context.Background(), nil)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestOptionsAcceptsWrappedLists(t *testing.T) {
	bodies := map[string]string{
		CategoriesPath:    `{"categories": [{"id": 1, "name": "Jackets"}]}`,
		SubcategoriesPath: `{"data": {"subcategories": ["Bomber"]}}`,
		ColorsPath:        `{"colors": "nope"}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bodies[r.URL.Path]))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	categories, err := c.Options(ctx, types.Category)
	require.NoError(t, err)
	assert.Equal(t, []types.FacetOption{{Id: "1", Name: "Jackets"}}, categories)

	subcategories, err := c.Options(ctx, types.Subcategory)
	require.NoError(t, err)
	assert.Equal(t, []types.FacetOption{{Name: "Bomber"}}, subcategories)

	colors, err := c.Options(ctx, types.Color)
	require.NoError(t, err)
	assert.Empty(t, colors)
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name": `))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Options(context.Background(), types.Color)
	assert.Error(t, err)
}
