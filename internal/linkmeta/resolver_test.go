package linkmeta_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classwork_service/internal/errdefs"
	"classwork_service/internal/linkmeta"
)

func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolve(t *testing.T) {
	resolver := linkmeta.NewHTTPResolver(2 * time.Second)

	t.Run("TitleTag", func(t *testing.T) {
		srv := servePage(t, `<html><head><title> Example Domain </title></head><body></body></html>`)
		meta, err := resolver.Resolve(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "Example Domain", meta.Title)
		assert.Empty(t, meta.ThumbnailURL)
	})

	t.Run("OpenGraphOverridesTitle", func(t *testing.T) {
		srv := servePage(t, `<html><head>
			<title>Raw Title</title>
			<meta property="og:title" content="OG Title">
			<meta property="og:image" content="http://cdn.test/thumb.png">
		</head><body></body></html>`)
		meta, err := resolver.Resolve(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "OG Title", meta.Title)
		assert.Equal(t, "http://cdn.test/thumb.png", meta.ThumbnailURL)
	})

	t.Run("NoTitle", func(t *testing.T) {
		srv := servePage(t, `<html><head></head><body><h1>nothing</h1></body></html>`)
		_, err := resolver.Resolve(context.Background(), srv.URL)
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
	})

	t.Run("Non200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(srv.Close)
		_, err := resolver.Resolve(context.Background(), srv.URL)
		assert.ErrorIs(t, err, errdefs.ErrUnavailable)
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		srv := servePage(t, "")
		url := srv.URL
		srv.Close()
		_, err := resolver.Resolve(context.Background(), url)
		assert.ErrorIs(t, err, errdefs.ErrUnavailable)
	})
}
