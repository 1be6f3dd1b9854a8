package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"storefront/catalog/internal/config"
	"storefront/catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(baseURL string) *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{BaseURL: baseURL, Timeout: 2},
		Browser: config.BrowserConfig{DebounceMs: 500, QueryTimeout: 15},
	}
}

func TestNewPingsAndLoadsCategories(t *testing.T) {
	var pings atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ping":
			pings.Add(1)
			_, _ = w.Write([]byte(`{"status":"success","connected":true}`))
		case "/categories":
			_, _ = w.Write([]byte(`{"categories":["Bags","Hats"],"count":2}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := New(context.Background(), newTestConfig(srv.URL))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, int32(1), pings.Load())
	assert.Equal(t, []domain.Category{"Bags", "Hats"}, c.filterCategories())
}

func TestNewSurvivesUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"error","message":"database unreachable","connected":false}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), newTestConfig(srv.URL))
	require.NoError(t, err)
	defer c.Close()

	assert.False(t, c.Registry.Available())
	assert.Nil(t, c.filterCategories())
}
