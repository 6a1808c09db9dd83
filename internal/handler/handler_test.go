package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitsphere/gitsphere-backend/internal/domain"
	"github.com/gitsphere/gitsphere-backend/internal/middleware"
	"github.com/gitsphere/gitsphere-backend/internal/port"
	"github.com/gitsphere/gitsphere-backend/internal/scoring"
	"github.com/gitsphere/gitsphere-backend/internal/service"
	"github.com/gitsphere/gitsphere-backend/internal/token"
)

// stubGitHub serves canned JSON responses keyed by path, ignoring paging.
type stubGitHub struct {
	responses map[string]any
	errors    map[string]error
}

func newStubGitHub() *stubGitHub {
	return &stubGitHub{responses: map[string]any{}, errors: map[string]error{}}
}

func (s *stubGitHub) Get(ctx context.Context, path string, query url.Values, tok string, out any) error {
	if err, ok := s.errors[path]; ok {
		return err
	}
	resp, ok := s.responses[path]
	if !ok {
		return fmt.Errorf("%w: %s", port.ErrNotFound, path)
	}
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *stubGitHub) CheckToken(ctx context.Context, tok string) error { return nil }

type stubExchanger struct {
	accessToken string
	scopes      []string
	err         error
}

func (s *stubExchanger) ExchangeCode(ctx context.Context, code string) (string, []string, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return s.accessToken, s.scopes, nil
}

// newAuthedApp builds an app with a stand-in for the auth gate that
// attaches a fixed GitHub token, then registers the protected handlers
// under /api/v1.
func newAuthedApp(gh *stubGitHub) *fiber.App {
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals("github_token", "gho_test")
		return c.Next()
	})

	profiles := service.NewProfileService(gh)
	api := app.Group("/api/v1")
	NewProfileHandler(profiles).Register(api)
	NewRepositoryHandler(service.NewRepositoryService(gh)).Register(api)
	NewBattleHandler(service.NewBattleService(profiles, scoring.NewEngine())).Register(api)
	return app
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func registerProfile(gh *stubGitHub, username string) {
	gh.responses["/users/"+username] = domain.Profile{
		Login:     username,
		Followers: 30,
		Following: 10,
		CreatedAt: time.Now().UTC().AddDate(-2, 0, 0),
	}
	gh.responses["/users/"+username+"/repos"] = []domain.ProfileRepository{
		{Name: "alpha", Language: "Go", StargazersCount: 12},
		{Name: "beta", Language: "Python", StargazersCount: 3},
	}
	gh.responses["/users/"+username+"/events"] = []domain.Event{}
}

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", port.ErrValidation, http.StatusBadRequest},
		{"not found", port.ErrNotFound, http.StatusNotFound},
		{"forbidden", port.ErrForbidden, http.StatusForbidden},
		{"timeout", port.ErrTimeout, http.StatusRequestTimeout},
		{"wrapped not found", fmt.Errorf("fetch profile: %w", port.ErrNotFound), http.StatusNotFound},
		{"upstream carries its status", &port.UpstreamError{StatusCode: 502}, http.StatusBadGateway},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFromError(tc.err))
		})
	}
}

func TestProfileEndpoints(t *testing.T) {
	t.Run("analyze returns the derived snapshot", func(t *testing.T) {
		gh := newStubGitHub()
		registerProfile(gh, "octocat")
		app := newAuthedApp(gh)

		resp := get(t, app, "/api/v1/profile-analyzer/analyze/octocat")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Contains(t, body, "profile")
		assert.Contains(t, body, "stats")
		assert.Contains(t, body, "language_stats")
	})

	t.Run("unknown user maps to 404", func(t *testing.T) {
		app := newAuthedApp(newStubGitHub())
		resp := get(t, app, "/api/v1/profile-analyzer/analyze/ghost")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("repositories respects the limit", func(t *testing.T) {
		gh := newStubGitHub()
		registerProfile(gh, "octocat")
		app := newAuthedApp(gh)

		resp := get(t, app, "/api/v1/profile-analyzer/repositories/octocat?limit=1")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, float64(1), body["total_count"])
		assert.Equal(t, true, body["limited"])
	})

	t.Run("out-of-range limit is rejected", func(t *testing.T) {
		app := newAuthedApp(newStubGitHub())
		resp := get(t, app, "/api/v1/profile-analyzer/repositories/octocat?limit=500")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "limit must be between 1 and 100", decodeBody(t, resp)["error"])
	})
}

func TestBattleEndpoints(t *testing.T) {
	t.Run("start requires at least two usernames", func(t *testing.T) {
		app := newAuthedApp(newStubGitHub())
		resp := postJSON(t, app, "/api/v1/battle/start", `{"usernames":["solo"]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "At least 2 usernames required", decodeBody(t, resp)["error"])
	})

	t.Run("start rejects unknown battle type", func(t *testing.T) {
		app := newAuthedApp(newStubGitHub())
		resp := postJSON(t, app, "/api/v1/battle/start", `{"usernames":["a","b"],"battle_type":"arm-wrestling"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("start runs a full battle", func(t *testing.T) {
		gh := newStubGitHub()
		registerProfile(gh, "alice")
		registerProfile(gh, "bob")
		app := newAuthedApp(gh)

		resp := postJSON(t, app, "/api/v1/battle/start", `{"usernames":["alice","bob"]}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Contains(t, body, "winner")
		assert.Contains(t, body, "battle_id")
		participants, ok := body["participants"].([]any)
		require.True(t, ok)
		assert.Len(t, participants, 2)
	})

	t.Run("quick battle returns the trimmed result", func(t *testing.T) {
		gh := newStubGitHub()
		registerProfile(gh, "alice")
		registerProfile(gh, "bob")
		app := newAuthedApp(gh)

		resp := postJSON(t, app, "/api/v1/battle/quick-battle", `{"user1":"alice","user2":"bob"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Contains(t, body, "winner")
		assert.Contains(t, body, "scores")
		assert.Contains(t, body, "key_insights")
		assert.Contains(t, body, "battle_id")
		assert.NotContains(t, body, "participants")
	})

	t.Run("quick battle requires both users", func(t *testing.T) {
		app := newAuthedApp(newStubGitHub())
		resp := postJSON(t, app, "/api/v1/battle/quick-battle", `{"user1":"alice"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "user1 and user2 are required", decodeBody(t, resp)["error"])
	})

	t.Run("category battle rejects comprehensive", func(t *testing.T) {
		app := newAuthedApp(newStubGitHub())
		resp := postJSON(t, app, "/api/v1/battle/category-battle/comprehensive", `{"usernames":["a","b"]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid category. Choose: technical, social, or activity", decodeBody(t, resp)["error"])
	})

	t.Run("battle types are public metadata", func(t *testing.T) {
		app := newAuthedApp(newStubGitHub())
		resp := get(t, app, "/api/v1/battle/battle-types")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRepositoryEndpoints(t *testing.T) {
	t.Run("info returns the repository record", func(t *testing.T) {
		gh := newStubGitHub()
		gh.responses["/repos/octocat/hello-world"] = domain.RepositoryInfo{
			Name:          "hello-world",
			FullName:      "octocat/hello-world",
			DefaultBranch: "main",
		}
		app := newAuthedApp(gh)

		resp := get(t, app, "/api/v1/repository-analyzer/info/octocat/hello-world")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "octocat/hello-world", decodeBody(t, resp)["full_name"])
	})

	t.Run("bulk analyze caps the batch size", func(t *testing.T) {
		app := newAuthedApp(newStubGitHub())
		resp := postJSON(t, app, "/api/v1/repository-analyzer/bulk-analyze",
			`[{"owner":"a","repo":"r1"},{"owner":"a","repo":"r2"},{"owner":"a","repo":"r3"},{"owner":"a","repo":"r4"},{"owner":"a","repo":"r5"},{"owner":"a","repo":"r6"}]`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bulk analyze reports per-repo status", func(t *testing.T) {
		gh := newStubGitHub()
		gh.responses["/repos/octocat/hello-world"] = domain.RepositoryInfo{Name: "hello-world", DefaultBranch: "main"}
		app := newAuthedApp(gh)

		resp := postJSON(t, app, "/api/v1/repository-analyzer/bulk-analyze",
			`[{"owner":"octocat","repo":"hello-world"},{"owner":"octocat","repo":"missing"}]`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, float64(1), body["total_analyzed"])
		results, ok := body["analyses"].([]any)
		require.True(t, ok)
		require.Len(t, results, 2)

		first := results[0].(map[string]any)
		second := results[1].(map[string]any)
		assert.Equal(t, "success", first["status"])
		assert.Equal(t, "failed", second["status"])
	})
}

func TestAuthEndpoints(t *testing.T) {
	codec, err := token.NewCodec("test-secret", "HS256")
	require.NoError(t, err)

	newApp := func(exchanger *stubExchanger) *fiber.App {
		app := fiber.New()
		auth := service.NewAuthService(exchanger, codec, 120*time.Hour)
		guard := middleware.NewTokenGuard(codec, newStubGitHub(), 30*time.Minute, 24*time.Hour)
		NewAuthHandler(auth, guard).Register(app)
		return app
	}

	t.Run("callback mints a credential", func(t *testing.T) {
		app := newApp(&stubExchanger{accessToken: "gho_live", scopes: []string{"public_repo", "read:user"}})

		resp := postJSON(t, app, "/api/auth/github", `{"code":"auth-code"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		claims, err := codec.Decode(body["access_token"].(string), true)
		require.NoError(t, err)
		assert.Equal(t, "gho_live", claims.AccessToken)
	})

	t.Run("callback without code maps the validation error", func(t *testing.T) {
		app := newApp(&stubExchanger{err: fmt.Errorf("%w: authorization code is required", port.ErrValidation)})

		resp := postJSON(t, app, "/api/auth/github", `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("refresh replaces an expired credential", func(t *testing.T) {
		app := newApp(&stubExchanger{})
		signed, err := codec.Encode(token.NewClaims("gho_live", []string{"public_repo"}, -time.Hour))
		require.NoError(t, err)

		resp := postJSON(t, app, "/api/auth/refresh", fmt.Sprintf(`{"token":%q}`, signed))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		claims, err := codec.Decode(body["access_token"].(string), true)
		require.NoError(t, err)
		assert.Equal(t, token.KindRefreshed, claims.Kind)
	})

	t.Run("refresh of garbage is a 401", func(t *testing.T) {
		app := newApp(&stubExchanger{})
		resp := postJSON(t, app, "/api/auth/refresh", `{"token":"garbage"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token status reports validity", func(t *testing.T) {
		app := newApp(&stubExchanger{})
		signed, err := codec.Encode(token.NewClaims("gho_live", nil, 2*time.Hour))
		require.NoError(t, err)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/token/status?token="+url.QueryEscape(signed), nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, decodeBody(t, resp)["valid"])
	})

	t.Run("token status without token is a 400", func(t *testing.T) {
		app := newApp(&stubExchanger{})
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/token/status", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
