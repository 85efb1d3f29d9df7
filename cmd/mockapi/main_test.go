package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matst80/dematerialized-catalog/pkg/api"
	"github.com/matst80/dematerialized-catalog/pkg/backend"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHonored(t *testing.T) {
	honored, err := parseHonored([]string{"color=color_slug[], colors", "category=category_id"})
	require.NoError(t, err)
	assert.Equal(t, map[types.Group][]string{
		types.Color:    {"color_slug[]", "colors"},
		types.Category: {"category_id"},
	}, honored)

	honored, err = parseHonored(nil)
	require.NoError(t, err)
	assert.Nil(t, honored)

	_, err = parseHonored([]string{"size=size"})
	assert.Error(t, err)
	_, err = parseHonored([]string{"color"})
	assert.Error(t, err)
}

func TestMuxServesMetricsAndCatalog(t *testing.T) {
	srv := httptest.NewServer(newMux(backend.NewServer(backend.DefaultDataset(), nil, nil)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + api.ColorsPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "catalog_backend_requests_total")
}
