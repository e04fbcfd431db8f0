package httpapi

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	jwttoken "slfcert/internal/jwt_token"
	id "slfcert/pkg/domain"
	"slfcert/pkg/platform/httputil"
	"slfcert/pkg/requestcontext"
	"slfcert/pkg/testutil"
)

type whoami struct{}

func (whoami) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		actor := requestcontext.Actor(r.Context())
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"id":         actor.ID.String(),
			"role":       string(actor.Role),
			"request_id": requestcontext.RequestID(r.Context()),
		})
	})
}

func newTestRouter(checks map[string]HealthCheck) (http.Handler, *jwttoken.JWTService) {
	jwt := jwttoken.NewJWTService("test-secret", "slf-auth", "slf-api")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewRouter(Deps{
		Logger:        logger,
		ActorResolver: jwt,
		HealthChecks:  checks,
		Modules:       []Registrar{whoami{}},
	}), jwt
}

func TestModuleRoutesRequireBearerToken(t *testing.T) {
	router, jwt := newTestRouter(nil)

	rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	testutil.AssertStatusAndError(t, rec, http.StatusUnauthorized, "unauthorized")

	userID := id.UserID(uuid.New())
	token, err := jwt.GenerateActorToken(userID, id.RoleAdminTeam, time.Minute)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", "req-42")
	rec = testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rec)
	if rec.Header().Get("X-Request-ID") != "req-42" {
		t.Fatalf("expected request id to be echoed")
	}
	resp := testutil.UnmarshalResponse[map[string]string](t, rec)
	if (*resp)["id"] != userID.String() || (*resp)["role"] != "admin_team" || (*resp)["request_id"] != "req-42" {
		t.Fatalf("unexpected actor context: %v", *resp)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	testutil.AssertStatusOK(t, rec)
	testutil.AssertJSONContains(t, rec, "status", "ok")

	router, _ = newTestRouter(map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	rec = testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	testutil.AssertStatus(t, rec, http.StatusServiceUnavailable)
}

func TestPanicsBecomeInternalErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	jwt := jwttoken.NewJWTService("test-secret", "slf-auth", "slf-api")
	router := NewRouter(Deps{Logger: logger, ActorResolver: jwt, Modules: []Registrar{panicky{}}})

	token, err := jwt.GenerateActorToken(id.UserID(uuid.New()), id.RoleInspector, time.Minute)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rec, http.StatusInternalServerError, "internal_error")
}

type panicky struct{}

func (panicky) Register(r chi.Router) {
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
}
