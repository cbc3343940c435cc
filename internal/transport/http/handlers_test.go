package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgate/internal/access"
	actorstore "fleetgate/internal/actor/store"
	"fleetgate/internal/audit"
	"fleetgate/internal/capability"
	jwttoken "fleetgate/internal/jwt_token"
	"fleetgate/internal/navigation"
	"fleetgate/internal/platform/metrics"
	"fleetgate/internal/routes"
	sessionstore "fleetgate/internal/session/store"
)

type fixture struct {
	router    http.Handler
	tokens    *jwttoken.Service
	actors    *actorstore.InMemoryStore
	sessions  *sessionstore.InMemoryStore
	publisher *audit.InMemoryPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwttoken.NewService("test-signing-key", "test-issuer")
	actors := actorstore.NewMemory()
	sessions := sessionstore.NewMemory()
	publisher := audit.NewInMemoryPublisher()

	handler := NewHandler(
		logger,
		access.New(routes.Registry()),
		navigation.New(routes.Menu()),
		actors,
		sessions,
		tokens,
		WithAuditPublisher(publisher),
		WithMetrics(metrics.NewWith(prometheus.NewRegistry())),
		WithSessionTTL(time.Hour),
	)

	return &fixture{
		router:    NewRouter(handler),
		tokens:    tokens,
		actors:    actors,
		sessions:  sessions,
		publisher: publisher,
	}
}

func (f *fixture) seedActor(t *testing.T, email string, keys ...capability.Key) *capability.Actor {
	t.Helper()
	bag := capability.Bag{}
	for _, k := range keys {
		bag[k] = true
	}
	actor := &capability.Actor{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test Actor",
		Capabilities: bag,
	}
	require.NoError(t, f.actors.Put(t.Context(), actor))
	return actor
}

func (f *fixture) token(t *testing.T, email string, sessionID uuid.UUID) string {
	t.Helper()
	token, err := f.tokens.GenerateSessionToken(email, sessionID, time.Hour)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func Test_Healthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func Test_AccessRequired(t *testing.T) {
	f := newFixture(t)

	t.Run("missing path is a bad request", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/access/required", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("protected path requires auth", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/access/required?path=/vehicles", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[accessRequiredResponse](t, rec)
		assert.True(t, body.AuthRequired)
	})

	t.Run("login path is public", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/access/required?path=/auth/login", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[accessRequiredResponse](t, rec)
		assert.False(t, body.AuthRequired)
	})

	t.Run("unknown path defaults to protected", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/access/required?path=/not-registered", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[accessRequiredResponse](t, rec)
		assert.True(t, body.AuthRequired)
	})
}

func Test_AccessCheck(t *testing.T) {
	f := newFixture(t)
	f.seedActor(t, "viewer@fleet.example", capability.KeyViewVehicles)
	token := f.token(t, "viewer@fleet.example", uuid.New())

	t.Run("requires a token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/access/check?path=/vehicles", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("grants a held capability", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/access/check?path=/vehicles", token)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[accessCheckResponse](t, rec)
		assert.True(t, body.Allowed)
	})

	t.Run("denies a missing capability and records the event", func(t *testing.T) {
		f.publisher.Clear()
		rec := f.do(t, http.MethodGet, "/access/check?path=/owners", token)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[accessCheckResponse](t, rec)
		assert.False(t, body.Allowed)

		events := f.publisher.Events()
		require.Len(t, events, 1)
		assert.Equal(t, audit.EventAccessDenied, events[0].Kind)
		assert.Equal(t, "/owners", events[0].Path)
		assert.Equal(t, "viewer@fleet.example", events[0].ActorEmail)
	})

	t.Run("deleted actor means unauthorized", func(t *testing.T) {
		gone := f.token(t, "gone@fleet.example", uuid.New())
		rec := f.do(t, http.MethodGet, "/access/check?path=/vehicles", gone)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_ActorFetch(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedActor(t, "manager@fleet.example", capability.KeyViewDashboard, capability.KeyViewReports)

	t.Run("rejects a non-email id", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/actor?id=not-an-email", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown actor is a 404", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/actor?id=nobody@fleet.example", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns the full capability bag", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/actor?id=manager@fleet.example", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[capability.Actor](t, rec)
		assert.Equal(t, seeded.ID, body.ID)
		assert.True(t, body.Has(capability.KeyViewReports))
		assert.False(t, body.Has(capability.KeyEditSettings))
	})
}

func Test_Navigation(t *testing.T) {
	f := newFixture(t)
	f.seedActor(t, "viewer@fleet.example", capability.KeyViewVehicles, capability.KeyViewOwners)
	token := f.token(t, "viewer@fleet.example", uuid.New())

	rec := f.do(t, http.MethodGet, "/navigation", token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[navigationResponse](t, rec)

	var ids []string
	for _, e := range body.Entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"vehicles", "owners"}, ids)
}

func Test_NavigationLanding(t *testing.T) {
	f := newFixture(t)

	t.Run("dashboard holder lands on dashboard", func(t *testing.T) {
		f.seedActor(t, "admin@fleet.example", capability.KeyViewDashboard, capability.KeyViewVehicles)
		token := f.token(t, "admin@fleet.example", uuid.New())

		rec := f.do(t, http.MethodGet, "/navigation/landing", token)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[landingResponse](t, rec)
		assert.Equal(t, routes.DashboardPath, body.LandingPath)
	})

	t.Run("non dashboard holder lands on first visible entry", func(t *testing.T) {
		f.seedActor(t, "driver@fleet.example", capability.KeyViewDeliveryNotes)
		token := f.token(t, "driver@fleet.example", uuid.New())

		rec := f.do(t, http.MethodGet, "/navigation/landing", token)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[landingResponse](t, rec)
		assert.Equal(t, "/delivery-notes", body.LandingPath)
	})
}

func Test_SessionLifecycle(t *testing.T) {
	f := newFixture(t)
	f.seedActor(t, "dispatcher@fleet.example", capability.KeyViewVehicles)
	sessionID := uuid.New()
	token := f.token(t, "dispatcher@fleet.example", sessionID)

	rec := f.do(t, http.MethodPost, "/auth/session", token)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[sessionResponse](t, rec)
	assert.Equal(t, sessionID.String(), created.SessionID)
	assert.Equal(t, "dispatcher@fleet.example", created.ActorEmail)

	rec = f.do(t, http.MethodGet, "/auth/session", token)
	require.Equal(t, http.StatusOK, rec.Code)
	actor := decodeBody[capability.Actor](t, rec)
	assert.Equal(t, "dispatcher@fleet.example", actor.Email)
	assert.True(t, actor.Has(capability.KeyViewVehicles))

	rec = f.do(t, http.MethodDelete, "/auth/session", token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/auth/session", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var kinds []audit.EventKind
	for _, e := range f.publisher.Events() {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, audit.EventSessionCreated)
	assert.Contains(t, kinds, audit.EventSessionCleared)
}

func Test_Session_ValidateWithoutRecord(t *testing.T) {
	f := newFixture(t)
	f.seedActor(t, "dispatcher@fleet.example", capability.KeyViewVehicles)
	token := f.token(t, "dispatcher@fleet.example", uuid.New())

	rec := f.do(t, http.MethodGet, "/auth/session", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
