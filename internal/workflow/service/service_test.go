package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Notifier,HistoryPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"slfcert/internal/compliance/cache"
	"slfcert/internal/workflow/models"
	"slfcert/internal/workflow/service/mocks"
	"slfcert/internal/workflow/store"
	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
	"slfcert/pkg/platform/audit"
	"slfcert/pkg/platform/audit/publishers/compliance"
	"slfcert/pkg/platform/audit/store/memory"
	"slfcert/pkg/requestcontext"
)

// =============================================================================
// Workflow Service Test Suite
// =============================================================================
// Justification for unit tests: the transition table, the order of the
// authorization checks and the write-then-notify sequencing are pure
// domain rules that must hold for every store implementation.

type WorkflowServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	notifier *mocks.MockNotifier
	store    *store.InMemoryStore
	history  *memory.InMemoryStore
	service  *Service
	ctx      context.Context
	now      time.Time

	creator    id.UserID
	adminTeam  id.UserID
	projectPL  id.UserID
	adminLead  id.UserID
	superadmin id.UserID
}

func TestWorkflowServiceSuite(t *testing.T) {
	suite.Run(t, new(WorkflowServiceSuite))
}

func (s *WorkflowServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.store = store.NewInMemoryStore()
	s.history = memory.NewInMemoryStore()
	s.now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.creator = id.UserID(uuid.New())
	s.adminTeam = id.UserID(uuid.New())
	s.projectPL = id.UserID(uuid.New())
	s.adminLead = id.UserID(uuid.New())
	s.superadmin = id.UserID(uuid.New())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var err error
	s.service, err = New(s.store,
		WithLogger(logger),
		WithTxRunner(s.store),
		WithHistory(compliance.New(s.history)),
		WithNotifier(s.notifier),
		WithDocumentCache(cache.NewTTLMap(cache.DefaultTTL)),
	)
	s.Require().NoError(err)
}

func (s *WorkflowServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *WorkflowServiceSuite) seed(status models.Status) models.Document {
	doc := models.Document{
		ID:           id.DocumentID(uuid.New()),
		ProjectID:    id.ProjectID(uuid.New()),
		DocumentType: "PBG",
		Status:       status,
		CreatedBy:    s.creator,
		Metadata:     map[string]any{models.MetaOriginalFilename: "pbg.pdf"},
		CreatedAt:    s.now.Add(-time.Hour),
		UpdatedAt:    s.now.Add(-time.Hour),
	}
	s.Require().NoError(s.store.Create(context.Background(), &doc))
	return doc
}

func (s *WorkflowServiceSuite) transition(doc models.Document, actor id.UserID, role id.Role, target models.Status, notes string) (*models.Document, error) {
	return s.service.Transition(s.ctx, models.TransitionRequest{
		DocumentID: doc.ID,
		ActorID:    actor,
		ActorRole:  role,
		Target:     target,
		Notes:      notes,
	})
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *WorkflowServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Require().Error(err)
		s.Contains(err.Error(), "document store is required")
	})
}

// =============================================================================
// Transition Tests
// =============================================================================
// Justification: every edge outside the table must be refused, and the
// creator of a document must never move it, whatever their role.

func (s *WorkflowServiceSuite) TestHappyPathToApproval() {
	doc := s.seed(models.StatusPending)
	s.notifier.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(nil).Times(4)

	got, err := s.transition(doc, s.adminTeam, id.RoleAdminTeam, models.StatusVerifiedByAdminTeam, "")
	s.Require().NoError(err)
	s.Equal(models.StatusVerifiedByAdminTeam, got.Status)
	s.Require().NotNil(got.VerifiedByAdminTeam)
	s.Equal(s.adminTeam, *got.VerifiedByAdminTeam)
	s.Equal(s.now, *got.VerifiedAt)

	_, err = s.transition(doc, s.projectPL, id.RoleProjectLead, models.StatusApprovedByPL, "")
	s.Require().NoError(err)
	_, err = s.transition(doc, s.adminLead, id.RoleAdminLead, models.StatusApprovedByAdminLead, "")
	s.Require().NoError(err)
	got, err = s.transition(doc, s.adminLead, id.RoleAdminLead, models.StatusApproved, "")
	s.Require().NoError(err)
	s.Equal(models.ComplianceCompliant, got.ComplianceStatus)

	stored, err := s.store.FindByID(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, stored.Status)

	events, err := s.service.History(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 4)
	s.Equal(string(audit.EventDocumentTransitioned), events[0].Action)
	s.Equal(string(models.StatusPending), events[0].FromStatus)
	s.Equal(string(models.StatusApproved), events[3].ToStatus)
}

func (s *WorkflowServiceSuite) TestEveryEdgeOutsideTheTableIsRefused() {
	roles := []id.Role{id.RoleAdminTeam, id.RoleProjectLead, id.RoleAdminLead, id.RoleSuperadmin}
	for _, from := range models.Statuses {
		for _, to := range models.Statuses {
			if models.CanTransition(from, to) {
				continue
			}
			doc := s.seed(from)
			for _, role := range roles {
				_, err := s.transition(doc, s.adminLead, role, to, "")
				s.Require().Error(err, "%s -> %s as %s", from, to, role)
				s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition), "%s -> %s as %s: %v", from, to, role, err)
			}
		}
	}
}

func (s *WorkflowServiceSuite) TestCreatorCannotActRegardlessOfRole() {
	for _, role := range []id.Role{id.RoleAdminTeam, id.RoleAdminLead, id.RoleSuperadmin, id.RoleProjectLead} {
		doc := s.seed(models.StatusPending)
		_, err := s.transition(doc, s.creator, role, models.StatusVerifiedByAdminTeam, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeSelfVerification))
		s.True(dErrors.IsAuthorization(err))
	}

	s.Run("self verification is checked before the table", func() {
		doc := s.seed(models.StatusApproved)
		_, err := s.transition(doc, s.creator, id.RoleAdminLead, models.StatusPending, "")
		s.True(dErrors.HasCode(err, dErrors.CodeSelfVerification))
	})
}

func (s *WorkflowServiceSuite) TestWrongRoleIsForbidden() {
	doc := s.seed(models.StatusPending)
	_, err := s.transition(doc, s.projectPL, id.RoleProjectLead, models.StatusVerifiedByAdminTeam, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	doc = s.seed(models.StatusVerifiedByAdminTeam)
	_, err = s.transition(doc, s.adminTeam, id.RoleAdminTeam, models.StatusCancelled, "")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *WorkflowServiceSuite) TestRevisionStoresFeedback() {
	doc := s.seed(models.StatusPending)
	s.notifier.EXPECT().Fanout(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e models.TransitionEvent) error {
			s.Equal(models.StatusPending, e.From)
			s.Equal(models.StatusRevisionRequested, e.To)
			s.Equal(s.adminTeam, e.ActorID)
			s.Equal("Lengkapi tanda tangan", e.Document.AdminTeamFeedback)
			return nil
		})

	got, err := s.transition(doc, s.adminTeam, id.RoleAdminTeam, models.StatusRevisionRequested, "  Lengkapi tanda tangan ")
	s.Require().NoError(err)
	s.Equal("Lengkapi tanda tangan", got.AdminTeamFeedback)
}

func (s *WorkflowServiceSuite) TestRejectionStoresFeedbackAndNonCompliance() {
	doc := s.seed(models.StatusApprovedByAdminLead)
	s.notifier.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(nil)

	got, err := s.transition(doc, s.adminLead, id.RoleAdminLead, models.StatusRejected, "struktur tidak memenuhi")
	s.Require().NoError(err)
	s.Equal("struktur tidak memenuhi", got.AdminTeamFeedback)
	s.Equal(models.ComplianceNonCompliant, got.ComplianceStatus)
}

func (s *WorkflowServiceSuite) TestSuperadminCanCancel() {
	doc := s.seed(models.StatusApprovedByPL)
	s.notifier.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(nil)

	got, err := s.transition(doc, s.superadmin, id.RoleSuperadmin, models.StatusCancelled, "")
	s.Require().NoError(err)
	s.Equal(models.StatusCancelled, got.Status)
}

func (s *WorkflowServiceSuite) TestNotificationFailureDoesNotUndoTransition() {
	doc := s.seed(models.StatusPending)
	s.notifier.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	got, err := s.transition(doc, s.adminTeam, id.RoleAdminTeam, models.StatusVerifiedByAdminTeam, "")
	s.Require().NoError(err)
	s.Equal(models.StatusVerifiedByAdminTeam, got.Status)

	stored, err := s.store.FindByID(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusVerifiedByAdminTeam, stored.Status)
}

func (s *WorkflowServiceSuite) TestHistoryFailureFailsTransition() {
	history := mocks.NewMockHistoryPublisher(s.ctrl)
	svc, err := New(s.store, WithHistory(history), WithNotifier(s.notifier))
	s.Require().NoError(err)
	doc := s.seed(models.StatusPending)

	history.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err = svc.Transition(s.ctx, models.TransitionRequest{
		DocumentID: doc.ID, ActorID: s.adminTeam, ActorRole: id.RoleAdminTeam, Target: models.StatusVerifiedByAdminTeam,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

// Justification: another replica can move a document while this one still
// holds a cached copy. Edge checks must use the stored status.
func (s *WorkflowServiceSuite) TestTransitionChecksStoredStatusNotCache() {
	s.Run("edge valid from the stored status succeeds", func() {
		doc := s.seed(models.StatusPending)
		cached, err := s.service.Get(s.ctx, doc.ID)
		s.Require().NoError(err)
		s.Require().Equal(models.StatusPending, cached.Status)

		moved := doc
		moved.Status = models.StatusVerifiedByAdminTeam
		s.Require().NoError(s.store.UpdateStatus(s.ctx, &moved, models.StatusPending))

		s.notifier.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(nil)
		updated, err := s.transition(doc, s.projectPL, id.RoleProjectLead, models.StatusApprovedByPL, "")
		s.Require().NoError(err)
		s.Equal(models.StatusApprovedByPL, updated.Status)
	})

	s.Run("edge invalid from the stored status is refused and the cache refreshed", func() {
		doc := s.seed(models.StatusPending)
		_, err := s.service.Get(s.ctx, doc.ID)
		s.Require().NoError(err)

		moved := doc
		moved.Status = models.StatusRevisionRequested
		s.Require().NoError(s.store.UpdateStatus(s.ctx, &moved, models.StatusPending))

		_, err = s.transition(doc, s.adminTeam, id.RoleAdminTeam, models.StatusVerifiedByAdminTeam, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		fresh, err := s.service.Get(s.ctx, doc.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusRevisionRequested, fresh.Status)
	})

	s.Run("resubmit sees a revision request made elsewhere", func() {
		doc := s.seed(models.StatusPending)
		_, err := s.service.Get(s.ctx, doc.ID)
		s.Require().NoError(err)

		moved := doc
		moved.Status = models.StatusRevisionRequested
		s.Require().NoError(s.store.UpdateStatus(s.ctx, &moved, models.StatusPending))

		s.notifier.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(nil)
		updated, err := s.service.Resubmit(s.ctx, doc.ID, s.creator)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, updated.Status)
	})
}

func (s *WorkflowServiceSuite) TestUnknownDocumentIsNotFound() {
	_, err := s.service.Transition(s.ctx, models.TransitionRequest{
		DocumentID: id.DocumentID(uuid.New()), ActorID: s.adminTeam, ActorRole: id.RoleAdminTeam, Target: models.StatusVerifiedByAdminTeam,
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// Resubmission Tests
// =============================================================================

func (s *WorkflowServiceSuite) TestResubmit() {
	s.Run("creator resubmits and feedback is cleared", func() {
		doc := s.seed(models.StatusPending)
		s.notifier.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(nil)
		_, err := s.transition(doc, s.adminTeam, id.RoleAdminTeam, models.StatusRevisionRequested, "perbaiki")
		s.Require().NoError(err)

		s.notifier.EXPECT().Fanout(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e models.TransitionEvent) error {
				s.Equal(models.StatusPending, e.To)
				return nil
			})
		got, err := s.service.Resubmit(s.ctx, doc.ID, s.creator)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, got.Status)
		s.Empty(got.AdminTeamFeedback)
		s.Nil(got.VerifiedByAdminTeam)
		s.Nil(got.VerifiedAt)
	})

	s.Run("someone else cannot resubmit", func() {
		doc := s.seed(models.StatusRevisionRequested)
		_, err := s.service.Resubmit(s.ctx, doc.ID, s.adminTeam)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("only revision_requested documents can be resubmitted", func() {
		doc := s.seed(models.StatusVerifiedByAdminTeam)
		_, err := s.service.Resubmit(s.ctx, doc.ID, s.creator)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

// =============================================================================
// Submission and Query Tests
// =============================================================================

func (s *WorkflowServiceSuite) TestSubmit() {
	projectID := id.ProjectID(uuid.New())
	s.notifier.EXPECT().Fanout(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e models.TransitionEvent) error {
			s.Equal(models.StatusPending, e.To)
			s.Equal(models.Status(""), e.From)
			return nil
		})

	doc, err := s.service.Submit(s.ctx, SubmitRequest{
		ProjectID:    projectID,
		DocumentType: models.DocumentTypeReport,
		CreatedBy:    s.creator,
		Metadata:     map[string]any{models.MetaChecklistTemplateID: "m21"},
	})
	s.Require().NoError(err)
	s.Equal(models.StatusPending, doc.Status)
	s.True(doc.IsReport())

	_, err = s.service.Submit(s.ctx, SubmitRequest{ProjectID: projectID, CreatedBy: s.creator})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *WorkflowServiceSuite) TestAllowedTargets() {
	doc := s.seed(models.StatusPending)

	targets, err := s.service.AllowedTargets(s.ctx, doc.ID, requestcontext.ActorInfo{ID: s.adminTeam, Role: id.RoleAdminTeam})
	s.Require().NoError(err)
	s.Equal([]models.Status{models.StatusVerifiedByAdminTeam, models.StatusRevisionRequested}, targets)

	targets, err = s.service.AllowedTargets(s.ctx, doc.ID, requestcontext.ActorInfo{ID: s.creator, Role: id.RoleAdminTeam})
	s.Require().NoError(err)
	s.Empty(targets)

	revision := s.seed(models.StatusRevisionRequested)
	targets, err = s.service.AllowedTargets(s.ctx, revision.ID, requestcontext.ActorInfo{ID: s.creator, Role: id.RoleDrafter})
	s.Require().NoError(err)
	s.Equal([]models.Status{models.StatusPending}, targets)
}

func (s *WorkflowServiceSuite) TestHistoryOfUnknownDocument() {
	_, err := s.service.History(s.ctx, id.DocumentID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
