package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/matst80/dematerialized-catalog/pkg/api"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApi(t *testing.T, honored map[types.Group][]string) *api.Client {
	t.Helper()
	srv := httptest.NewServer(NewServer(DefaultDataset(), honored, nil).Handler())
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL)
}

func names(items []types.Item) []string {
	ret := make([]string, 0, len(items))
	for _, item := range items {
		ret = append(ret, item.Name)
	}
	return ret
}

func TestServesOptions(t *testing.T) {
	client := newTestApi(t, nil)
	options, err := client.Options(context.Background(), types.Subcategory)
	require.NoError(t, err)
	require.Len(t, options, 5)
	assert.Equal(t, "Bomber", options[0].Name)
	assert.Equal(t, []string{"1"}, options[0].CatIds)
}

func TestFiltersByHonoredKeysOnly(t *testing.T) {
	s := NewServer(DefaultDataset(), nil, nil)

	got := s.Filter(url.Values{"category_id": {"2"}})
	assert.Equal(t, []string{"Market Tote", "Canvas Tote", "Trail Backpack"}, names(got))

	ignored := s.Filter(url.Values{"category": {"Bags"}})
	assert.Len(t, ignored, len(DefaultDataset().Items))
}

func TestSingularKeysSplitOnComma(t *testing.T) {
	s := NewServer(DefaultDataset(), nil, nil)
	got := s.Filter(url.Values{"color": {"red,Green"}})
	assert.Equal(t, []string{"Market Tote"}, names(got))
}

func TestArrayKeysRepeat(t *testing.T) {
	s := NewServer(DefaultDataset(), nil, nil)
	got := s.Filter(url.Values{"subcategory_slug[]": {"tote", "parka"}})
	assert.Equal(t, []string{"Arctic Parka", "City Parka", "Market Tote", "Canvas Tote"}, names(got))
}

func TestFiltersCombine(t *testing.T) {
	s := NewServer(DefaultDataset(), nil, nil)
	got := s.Filter(url.Values{"category_id": {"1"}, "color": {"Blue"}})
	assert.Equal(t, []string{"Flight Bomber", "City Parka"}, names(got))
}

func TestListPaging(t *testing.T) {
	client := newTestApi(t, nil)
	res, err := client.List(context.Background(), url.Values{"page": {"2"}, "limit": {"4"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 9, res.TotalItems)
	assert.Len(t, res.Items, 4)
	assert.Equal(t, "Market Tote", res.Items[0].Name)
}

func TestListPastLastPageIsEmpty(t *testing.T) {
	client := newTestApi(t, nil)
	res, err := client.List(context.Background(), url.Values{"page": {"9"}, "limit": {"4"}})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 9, res.Count())
}

func TestCountThroughClient(t *testing.T) {
	client := newTestApi(t, map[types.Group][]string{types.Color: {"color_slug[]"}})
	count, err := client.Count(context.Background(), url.Values{"color_slug[]": {"black"}})
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestInvalidPagingIsBadRequest(t *testing.T) {
	srv := httptest.NewServer(NewServer(DefaultDataset(), nil, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + api.ItemsPath + "?page=two")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"categories": ["Hats", {"id": 5, "title": "Scarves"}],
		"colors": [],
		"clothing_items": [{"id": 1, "name": "Beanie", "category": "Hats"}]
	}`), 0o644))

	d, err := LoadDataset(path)
	require.NoError(t, err)
	require.Len(t, d.Categories, 2)
	assert.Equal(t, "Hats", d.Categories[0].Name)
	assert.Equal(t, "5", d.Categories[1].Id)
	assert.Equal(t, "Scarves", d.Categories[1].Name)
	assert.Equal(t, types.FlexString("1"), d.Items[0].Id)

	_, err = LoadDataset(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
