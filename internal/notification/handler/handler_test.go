package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"slfcert/internal/notification/models"
	"slfcert/internal/notification/service"
	"slfcert/internal/notification/store"
	workflow "slfcert/internal/workflow/models"
	id "slfcert/pkg/domain"
	"slfcert/pkg/testutil"
)

func TestInboxViaHandler(t *testing.T) {
	router, svc := newNotificationRouter(t)
	creator := id.UserID(uuid.New())

	err := svc.Fanout(context.Background(), workflow.TransitionEvent{
		Document: workflow.Document{
			ID:           id.DocumentID(uuid.New()),
			ProjectID:    id.ProjectID(uuid.New()),
			DocumentType: "PBG",
			CreatedBy:    creator,
		},
		From:    workflow.StatusPending,
		To:      workflow.StatusRevisionRequested,
		ActorID: id.UserID(uuid.New()),
	})
	if err != nil {
		t.Fatalf("fan-out failed: %v", err)
	}

	rec := testutil.DoRequest(router, testutil.WithActor(httptest.NewRequest(http.MethodGet, "/notifications?unread=true", nil), creator.String(), id.RoleDrafter))
	testutil.AssertStatusOK(t, rec)
	list := testutil.UnmarshalResponse[struct {
		Notifications []models.Notification `json:"notifications"`
	}](t, rec)
	if len(list.Notifications) != 1 {
		t.Fatalf("expected 1 unread notification, got %d", len(list.Notifications))
	}
	notificationID := list.Notifications[0].ID.String()

	other := testutil.WithActor(httptest.NewRequest(http.MethodPost, "/notifications/"+notificationID+"/read", nil), uuid.NewString(), id.RoleDrafter)
	rec = testutil.DoRequest(router, other)
	testutil.AssertStatusAndError(t, rec, http.StatusNotFound, "not_found")

	mine := testutil.WithActor(httptest.NewRequest(http.MethodPost, "/notifications/"+notificationID+"/read", nil), creator.String(), id.RoleDrafter)
	rec = testutil.DoRequest(router, mine)
	testutil.AssertStatusOK(t, rec)
	testutil.AssertJSONContains(t, rec, "read", true)

	rec = testutil.DoRequest(router, testutil.WithActor(httptest.NewRequest(http.MethodGet, "/notifications?unread=true", nil), creator.String(), id.RoleDrafter))
	list = testutil.UnmarshalResponse[struct {
		Notifications []models.Notification `json:"notifications"`
	}](t, rec)
	if len(list.Notifications) != 0 {
		t.Fatalf("expected empty unread inbox, got %d", len(list.Notifications))
	}
}

func TestInboxRejectsBadInput(t *testing.T) {
	router, _ := newNotificationRouter(t)
	user := uuid.NewString()

	rec := testutil.DoRequest(router, testutil.WithActor(httptest.NewRequest(http.MethodGet, "/notifications?unread=maybe", nil), user, id.RoleDrafter))
	testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "validation_error")

	rec = testutil.DoRequest(router, testutil.WithActor(httptest.NewRequest(http.MethodPost, "/notifications/nope/read", nil), user, id.RoleDrafter))
	testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "bad_request")

	rec = testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	testutil.AssertStatusAndError(t, rec, http.StatusUnauthorized, "unauthorized")
}

func newNotificationRouter(t *testing.T) (http.Handler, *service.Service) {
	t.Helper()
	st := store.NewInMemoryStore()
	svc, err := service.New(st, st)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	h := New(svc, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return r, svc
}
