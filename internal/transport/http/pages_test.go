package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgate/internal/access"
	actorstore "fleetgate/internal/actor/store"
	"fleetgate/internal/audit"
	"fleetgate/internal/capability"
	"fleetgate/internal/guard"
	jwttoken "fleetgate/internal/jwt_token"
	"fleetgate/internal/navigation"
	"fleetgate/internal/platform/metrics"
	"fleetgate/internal/routes"
	"fleetgate/internal/session"
	sessionstore "fleetgate/internal/session/store"
	"fleetgate/pkg/platform/sentinel"
	"fleetgate/pkg/testutil"
)

func newGuardedFixture(t *testing.T) (*fixture, *guard.Guard) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwttoken.NewService("test-signing-key", "test-issuer")
	actors := actorstore.NewMemory()
	sessions := sessionstore.NewMemory()
	publisher := audit.NewInMemoryPublisher()

	evaluator := access.New(routes.Registry())
	nav := navigation.New(routes.Menu())
	g := guard.New(evaluator, nav, session.NewContext(),
		guard.WithLoginPath(routes.LoginPath),
		guard.WithLogger(logger),
	)

	handler := NewHandler(
		logger,
		evaluator,
		nav,
		actors,
		sessions,
		tokens,
		WithAuditPublisher(publisher),
		WithMetrics(metrics.NewWith(prometheus.NewRegistry())),
		WithGuard(g),
	)

	f := &fixture{
		router:    NewRouter(handler),
		tokens:    tokens,
		actors:    actors,
		sessions:  sessions,
		publisher: publisher,
	}
	return f, g
}

func Test_PageShell_BeforeHydration(t *testing.T) {
	f, _ := newGuardedFixture(t)

	rec := f.do(t, http.MethodGet, "/vehicles", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "loading")
}

func Test_PageShell_PublicRoute(t *testing.T) {
	f, g := newGuardedFixture(t)
	g.Hydrate(nil)

	rec := f.do(t, http.MethodGet, "/auth/login", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[pageShellResponse](t, rec)
	assert.Equal(t, "/auth/login", body.Path)
}

func Test_PageShell_AnonymousRedirectsToLogin(t *testing.T) {
	f, g := newGuardedFixture(t)
	g.Hydrate(nil)

	rec := f.do(t, http.MethodGet, "/vehicles", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, routes.LoginPath, rec.Header().Get("Location"))
}

func Test_PageShell_AuthorizedAndDenied(t *testing.T) {
	f, g := newGuardedFixture(t)
	g.Hydrate(nil)

	f.seedActor(t, "viewer@fleet.example", capability.KeyViewVehicles)
	token := f.token(t, "viewer@fleet.example", uuid.New())

	rec := f.do(t, http.MethodGet, "/vehicles", token)
	require.Equal(t, http.StatusOK, rec.Code)

	// Same session, uncovered route: denial with a landing path, no redirect.
	rec = f.do(t, http.MethodGet, "/owners", token)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_denied")
	assert.Contains(t, rec.Body.String(), "/vehicles")
}

func Test_PageShell_SessionScopedToRequest(t *testing.T) {
	f, g := newGuardedFixture(t)
	g.Hydrate(nil)

	f.seedActor(t, "admin@fleet.example", capability.Keys()...)
	token := f.token(t, "admin@fleet.example", uuid.New())

	rec := f.do(t, http.MethodGet, "/dashboard", token)
	require.Equal(t, http.StatusOK, rec.Code)

	// A later tokenless request must stay anonymous even though another
	// client just authenticated through the same guard.
	rec = f.do(t, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, routes.LoginPath, rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "fleet-backoffice")
}

func Test_SessionValidator_ResolvesRequestActor(t *testing.T) {
	actors := actorstore.NewMemory()
	require.NoError(t, actors.Put(t.Context(), &capability.Actor{
		ID:           uuid.New(),
		Email:        "viewer@fleet.example",
		Capabilities: capability.Bag{capability.KeyViewVehicles: true},
	}))
	v := NewSessionValidator(actors)

	req := testutil.WithAuth(testutil.NewRequest(t, http.MethodGet, "/vehicles"),
		"viewer@fleet.example", uuid.NewString())
	actor, err := v.Validate(req.Context())
	require.NoError(t, err)
	assert.Equal(t, "viewer@fleet.example", actor.Email)

	// A context without bearer claims reads as no session.
	_, err = v.Validate(context.Background())
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func Test_PageShell_TrailingSlashNormalized(t *testing.T) {
	f, g := newGuardedFixture(t)
	g.Hydrate(nil)

	f.seedActor(t, "viewer@fleet.example", capability.KeyViewVehicles)
	token := f.token(t, "viewer@fleet.example", uuid.New())

	rec := f.do(t, http.MethodGet, "/vehicles/", token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[pageShellResponse](t, rec)
	assert.Equal(t, "/vehicles", body.Path)
}
