package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitsphere/gitsphere-backend/internal/port"
)

func TestClientGet(t *testing.T) {
	t.Run("decodes successful response", func(t *testing.T) {
		var gotAuth, gotAccept string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotAccept = r.Header.Get("Accept")
			json.NewEncoder(w).Encode(map[string]any{"login": "octocat"})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		var out struct {
			Login string `json:"login"`
		}
		err := client.Get(context.Background(), "/users/octocat", nil, "gho_abc", &out)
		require.NoError(t, err)
		assert.Equal(t, "octocat", out.Login)
		assert.Equal(t, "Bearer gho_abc", gotAuth)
		assert.Equal(t, "application/vnd.github.v3+json", gotAccept)
	})

	t.Run("omits authorization header without token", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		require.NoError(t, client.Get(context.Background(), "/rate_limit", nil, "", nil))
		assert.Empty(t, gotAuth)
	})

	t.Run("encodes query parameters", func(t *testing.T) {
		var gotQuery url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		q := url.Values{}
		q.Set("per_page", "100")
		q.Set("page", "2")
		var out []any
		require.NoError(t, client.Get(context.Background(), "/users/octocat/repos", q, "gho_abc", &out))
		assert.Equal(t, "100", gotQuery.Get("per_page"))
		assert.Equal(t, "2", gotQuery.Get("page"))
	})

	t.Run("maps 404 to not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		err := client.Get(context.Background(), "/users/nobody", nil, "gho_abc", nil)
		require.ErrorIs(t, err, port.ErrNotFound)
	})

	t.Run("maps 403 to forbidden", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		err := client.Get(context.Background(), "/users/octocat", nil, "gho_abc", nil)
		require.ErrorIs(t, err, port.ErrForbidden)
	})

	t.Run("other failure statuses become upstream errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("bad gateway"))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		err := client.Get(context.Background(), "/users/octocat", nil, "gho_abc", nil)

		var ue *port.UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, http.StatusBadGateway, ue.StatusCode)
		assert.Equal(t, "bad gateway", ue.Body)
	})

	t.Run("slow upstream maps to timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 20*time.Millisecond)
		err := client.Get(context.Background(), "/users/octocat", nil, "gho_abc", nil)
		require.ErrorIs(t, err, port.ErrTimeout)
	})

	t.Run("connection refused maps to transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		err := client.Get(context.Background(), "/users/octocat", nil, "gho_abc", nil)
		require.ErrorIs(t, err, port.ErrTransport)
	})
}

func TestCheckToken(t *testing.T) {
	t.Run("live token passes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/user", r.URL.Path)
			w.Write([]byte(`{"login":"octocat"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		require.NoError(t, client.CheckToken(context.Background(), "gho_live"))
	})

	t.Run("revoked token fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		err := client.CheckToken(context.Background(), "gho_revoked")
		require.Error(t, err)
		assert.True(t, errors.Is(err, port.ErrUpstreamTokenBad))
	})
}
