package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescrm/internal/config"
	"salescrm/internal/modules/conversion"
	"salescrm/internal/modules/session"
	"salescrm/internal/repository/repotest"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (c *client) signUp(email string) {
	c.t.Helper()
	code, env := c.do(http.MethodPost, "/api/v1/auth/signup", gin.H{"email": email, "password": "secret123"})
	require.Equal(c.t, http.StatusCreated, code, env.Error.Message)
	var res struct {
		Session session.Session `json:"session"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(c.t, res.Session.AccessToken)
	c.token = res.Session.AccessToken
}

func newApp(t *testing.T, mode string) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a := New(Deps{
		Config: &config.AppConfig{
			JWTSecret:         "test-secret",
			JWTAccessTTL:      time.Hour,
			RefreshTTL:        time.Hour,
			ConversionMode:    mode,
			ConversionLockTTL: time.Second,
		},
		DB:       repotest.New(t),
		Sessions: session.NewMemoryStore(),
		Locker:   conversion.NewLocalLocker(),
	})
	t.Cleanup(a.Close)
	return a
}

func TestApp_SignUpConvertDashboard(t *testing.T) {
	for _, mode := range []string{config.ConversionTransactional, config.ConversionSequential} {
		t.Run(mode, func(t *testing.T) {
			a := newApp(t, mode)
			alice := &client{t: t, router: a.Router}
			alice.signUp("alice@example.com")

			code, env := alice.do(http.MethodPost, "/api/v1/leads", gin.H{
				"first_name": "Bo", "last_name": "Lee", "company": "Acme", "email": "bo@acme.test",
			})
			require.Equal(t, http.StatusCreated, code, env.Error.Message)
			var lead struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &lead))
			assert.Equal(t, "new", lead.Status)

			code, env = alice.do(http.MethodPost, "/api/v1/leads/"+lead.ID+"/convert", nil)
			require.Equal(t, http.StatusOK, code, env.Error.Message)

			code, env = alice.do(http.MethodPost, "/api/v1/leads/"+lead.ID+"/convert", nil)
			assert.Equal(t, http.StatusConflict, code)
			assert.Equal(t, "ALREADY_CONVERTED", env.Error.Code)

			code, env = alice.do(http.MethodGet, "/api/v1/dashboard", nil)
			require.Equal(t, http.StatusOK, code)
			var summary struct {
				Stats struct {
					Accounts int64 `json:"accounts"`
					Contacts int64 `json:"contacts"`
					Leads    int64 `json:"leads"`
				} `json:"stats"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &summary))
			assert.EqualValues(t, 1, summary.Stats.Accounts)
			assert.EqualValues(t, 1, summary.Stats.Contacts)
			assert.EqualValues(t, 1, summary.Stats.Leads)

			code, env = alice.do(http.MethodGet, "/api/v1/contacts?q=acme", nil)
			require.Equal(t, http.StatusOK, code)
			var contacts []map[string]any
			require.NoError(t, json.Unmarshal(env.Data, &contacts))
			require.Len(t, contacts, 1)
			assert.Equal(t, "Bo", contacts[0]["first_name"])
		})
	}
}

func TestApp_OwnerScopingAndSignOut(t *testing.T) {
	a := newApp(t, config.ConversionTransactional)
	alice := &client{t: t, router: a.Router}
	alice.signUp("alice@example.com")
	bob := &client{t: t, router: a.Router}
	bob.signUp("bob@example.com")

	code, env := alice.do(http.MethodPost, "/api/v1/accounts", gin.H{"name": "Globex"})
	require.Equal(t, http.StatusCreated, code, env.Error.Message)
	var account struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &account))

	code, env = bob.do(http.MethodGet, "/api/v1/accounts/"+account.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, env = bob.do(http.MethodGet, "/api/v1/accounts", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, _ = alice.do(http.MethodPost, "/api/v1/auth/signout", nil)
	require.Equal(t, http.StatusOK, code)
	code, env = alice.do(http.MethodGet, "/api/v1/accounts", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, _ = (&client{t: t, router: a.Router}).do(http.MethodGet, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestApp_Health(t *testing.T) {
	a := newApp(t, config.ConversionTransactional)
	code, env := (&client{t: t, router: a.Router}).do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}
