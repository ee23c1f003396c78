package leads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescrm/internal/domain"
	"salescrm/internal/middleware"
	"salescrm/internal/modules/notify"
	"salescrm/internal/modules/notify/notifytest"
	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/apperr"
	"salescrm/internal/repository"
	"salescrm/internal/repository/repotest"
)

var alice = session.Principal{UserID: "user-alice", Email: "alice@example.com", SessionID: "s1"}

func newService(t *testing.T) (*Service, *notifytest.Recorder) {
	t.Helper()
	rec := notifytest.New()
	return NewService(repository.NewLeadRepository(repotest.New(t)), rec, nil), rec
}

func strPtr(s string) *string { return &s }

func TestService_CreateDefaults(t *testing.T) {
	svc, rec := newService(t)

	l, err := svc.Create(context.Background(), alice, CreateLeadRequest{FirstName: "Ana", LastName: "Ruiz"})
	require.NoError(t, err)
	assert.Equal(t, domain.LeadNew, l.Status)
	assert.Equal(t, domain.RatingWarm, l.Rating)
	assert.False(t, l.Converted)
	assert.Nil(t, l.Company)
	assert.Equal(t, "Lead created successfully", rec.Last().Message)
	assert.Equal(t, []string{notify.KeyLeads, notify.KeyDashboard}, rec.Invalidated(alice.UserID))

	_, err = svc.Create(context.Background(), alice, CreateLeadRequest{FirstName: "Ana", LastName: "Ruiz", Rating: "lukewarm"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_ListFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, req := range []CreateLeadRequest{
		{FirstName: "Ana", LastName: "Ruiz", Company: strPtr("Acme"), Rating: domain.RatingHot},
		{FirstName: "Bo", LastName: "Chen", Email: strPtr("bo@initech.com"), Status: domain.LeadQualified},
		{FirstName: "Cy", LastName: "Acme-Smith", Rating: domain.RatingCold, Status: domain.LeadQualified},
	} {
		_, err := svc.Create(ctx, alice, req)
		require.NoError(t, err)
	}

	names := func(f ListFilter) []string {
		rows, err := svc.List(ctx, alice, f)
		require.NoError(t, err)
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.FirstName)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Ana", "Cy"}, names(ListFilter{Q: "acme"}))
	assert.ElementsMatch(t, []string{"Bo"}, names(ListFilter{Q: "initech"}))
	assert.ElementsMatch(t, []string{"Bo", "Cy"}, names(ListFilter{Status: "qualified"}))
	assert.ElementsMatch(t, []string{"Cy"}, names(ListFilter{Status: "qualified", Rating: "cold"}))
	assert.ElementsMatch(t, []string{"Ana", "Bo", "Cy"}, names(ListFilter{Status: "all", Rating: "all"}))
}

type staticAuth map[string]session.Principal

func (a staticAuth) Authenticate(_ context.Context, token string) (session.Principal, error) {
	if p, ok := a[token]; ok {
		return p, nil
	}
	return session.Principal{}, apperr.ErrAuthentication
}

func TestHandler_PatchCannotConvert(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newService(t)
	l, err := svc.Create(context.Background(), alice, CreateLeadRequest{FirstName: "Ana", LastName: "Ruiz"})
	require.NoError(t, err)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1", middleware.RequireSession(staticAuth{"tok": alice})))

	body := `{"status":"contacted","converted":true,"converted_account_id":"x"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/leads/"+l.ID, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := svc.Get(context.Background(), alice, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadContacted, got.Status)
	assert.False(t, got.Converted)
	assert.Nil(t, got.ConvertedAccountID)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestService_UpdateAndDelete(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()
	l, err := svc.Create(ctx, alice, CreateLeadRequest{FirstName: "Ana", LastName: "Ruiz", Company: strPtr("Acme")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, alice, l.ID, UpdateLeadRequest{Company: strPtr(""), FirstName: strPtr("Anna")})
	require.NoError(t, err)
	assert.Nil(t, updated.Company)
	assert.Equal(t, "Anna Ruiz", updated.AccountName())
	assert.Equal(t, "Lead updated successfully", rec.Last().Message)

	require.NoError(t, svc.Delete(ctx, alice, l.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice, l.ID), apperr.ErrNotFound)
	assert.Equal(t, notify.Error, rec.Last().Level)
}
