package conversion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescrm/internal/domain"
	"salescrm/internal/middleware"
	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/apperr"
)

type staticAuth map[string]session.Principal

func (a staticAuth) Authenticate(_ context.Context, token string) (session.Principal, error) {
	if p, ok := a[token]; ok {
		return p, nil
	}
	return session.Principal{}, apperr.ErrAuthentication
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func serve(t *testing.T, f *fixture, leadID string) (int, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(f.svc).RegisterRoutes(r.Group("/api/v1", middleware.RequireSession(staticAuth{"tok": alice})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/"+leadID+"/convert", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestHandler_Convert(t *testing.T) {
	f := newFixture(t, ModeSequential, false)
	lead := f.lead(t, alice, domain.Lead{FirstName: "Bo", LastName: "Lee", Company: strPtr("Acme")})

	code, env := serve(t, f, lead.ID)
	require.Equal(t, http.StatusOK, code)
	var res Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "Acme", res.Account.Name)
	assert.True(t, res.Lead.Converted)

	code, env = serve(t, f, lead.ID)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_CONVERTED", env.Error.Code)

	code, env = serve(t, f, "missing")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestHandler_ConvertFailures(t *testing.T) {
	t.Run("partial", func(t *testing.T) {
		f := newFixture(t, ModeSequential, false)
		lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})
		f.contacts.createErr = storeErr("contacts_email_check")

		code, env := serve(t, f, lead.ID)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "PARTIAL_CONVERSION", env.Error.Code)

		var details PartialConversionError
		require.NoError(t, json.Unmarshal(env.Error.Details, &details))
		assert.Equal(t, StepCreateContact, details.Step)
		assert.Equal(t, lead.ID, details.LeadID)
		assert.NotEmpty(t, details.AccountID)
	})

	t.Run("remote", func(t *testing.T) {
		f := newFixture(t, ModeTransactional, false)
		lead := f.lead(t, alice, domain.Lead{FirstName: "Ana", LastName: "Ruiz"})
		f.accounts.createErr = storeErr("permission denied for table accounts")

		code, env := serve(t, f, lead.ID)
		assert.Equal(t, http.StatusBadGateway, code)
		assert.Equal(t, "REMOTE_ERROR", env.Error.Code)
		assert.Equal(t, "permission denied for table accounts", env.Error.Message)
	})
}
