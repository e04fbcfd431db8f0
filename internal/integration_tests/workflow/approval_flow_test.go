//go:build integration

package workflow_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"slfcert/internal/compliance/cache"
	notificationmodels "slfcert/internal/notification/models"
	notificationservice "slfcert/internal/notification/service"
	notificationstore "slfcert/internal/notification/store"
	"slfcert/internal/workflow/models"
	workflowservice "slfcert/internal/workflow/service"
	workflowstore "slfcert/internal/workflow/store"
	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
	"slfcert/pkg/platform/audit/publishers/compliance"
	auditpostgres "slfcert/pkg/platform/audit/store/postgres"
	"slfcert/pkg/requestcontext"
	"slfcert/pkg/testutil/containers"
)

// =============================================================================
// Approval Flow Integration Suite
// =============================================================================
// Justification: the status write, the history row and the inbox entry live
// in three tables. Only a real database shows they agree after each step.

type ApprovalFlowSuite struct {
	suite.Suite
	postgres      *containers.PostgresContainer
	workflow      *workflowservice.Service
	notifications *notificationservice.Service

	projectID id.ProjectID
	inspector id.UserID
	adminTeam id.UserID
	projectPL id.UserID
	adminLead id.UserID
}

func TestApprovalFlowSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ApprovalFlowSuite))
}

func (s *ApprovalFlowSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *ApprovalFlowSuite) SetupTest() {
	ctx := context.Background()
	db := s.postgres.DB
	s.Require().NoError(s.postgres.TruncateTables(ctx,
		"document_history", "notifications", "documents", "project_teams", "profiles", "projects"))

	s.projectID = id.ProjectID(uuid.New())
	s.inspector = id.UserID(uuid.New())
	s.adminTeam = id.UserID(uuid.New())
	s.projectPL = id.UserID(uuid.New())
	s.adminLead = id.UserID(uuid.New())

	_, err := db.ExecContext(ctx, `INSERT INTO projects (id, name) VALUES ($1, $2)`, s.projectID.String(), "Ruko Sudirman")
	s.Require().NoError(err)
	members := []struct {
		user id.UserID
		role id.Role
	}{
		{s.inspector, id.RoleInspector},
		{s.adminTeam, id.RoleAdminTeam},
		{s.projectPL, id.RoleProjectLead},
		{s.adminLead, id.RoleAdminLead},
	}
	for _, m := range members {
		_, err := db.ExecContext(ctx, `INSERT INTO profiles (id, full_name, role) VALUES ($1, $2, $3)`,
			m.user.String(), string(m.role)+" user", string(m.role))
		s.Require().NoError(err)
		_, err = db.ExecContext(ctx, `INSERT INTO project_teams (project_id, user_id, role) VALUES ($1, $2, $3)`,
			s.projectID.String(), m.user.String(), string(m.role))
		s.Require().NoError(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	inbox := notificationstore.NewPostgres(db)
	s.notifications, err = notificationservice.New(inbox, inbox, notificationservice.WithLogger(logger))
	s.Require().NoError(err)

	s.workflow, err = workflowservice.New(workflowstore.NewPostgres(db),
		workflowservice.WithLogger(logger),
		workflowservice.WithTxRunner(workflowstore.NewTxRunner(db)),
		workflowservice.WithHistory(compliance.New(auditpostgres.New(db))),
		workflowservice.WithNotifier(s.notifications),
		workflowservice.WithDocumentCache(cache.NewTTLMap(cache.DefaultTTL)),
	)
	s.Require().NoError(err)
}

func (s *ApprovalFlowSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), time.Now().UTC().Truncate(time.Microsecond))
}

func (s *ApprovalFlowSuite) step(doc *models.Document, actor id.UserID, role id.Role, target models.Status, notes string) *models.Document {
	got, err := s.workflow.Transition(s.ctx(), models.TransitionRequest{
		DocumentID: doc.ID,
		ActorID:    actor,
		ActorRole:  role,
		Target:     target,
		Notes:      notes,
	})
	s.Require().NoError(err, "%s -> %s", doc.Status, target)
	return got
}

func (s *ApprovalFlowSuite) inbox(user id.UserID) []notificationmodels.Notification {
	got, err := s.notifications.ListForRecipient(s.ctx(), user, false)
	s.Require().NoError(err)
	return got
}

func (s *ApprovalFlowSuite) TestFullApprovalChain() {
	doc, err := s.workflow.Submit(s.ctx(), workflowservice.SubmitRequest{
		ProjectID:    s.projectID,
		DocumentType: "laporan_inspeksi",
		CreatedBy:    s.inspector,
		Metadata:     map[string]any{models.MetaOriginalFilename: "laporan-akhir.pdf"},
	})
	s.Require().NoError(err)
	s.Require().Len(s.inbox(s.adminTeam), 1, "submission notifies the admin team")

	doc = s.step(doc, s.adminTeam, id.RoleAdminTeam, models.StatusVerifiedByAdminTeam, "")
	plInbox := s.inbox(s.projectPL)
	s.Require().Len(plInbox, 1)
	s.Equal(notificationmodels.TypeDocumentVerified, plInbox[0].Type)
	s.Contains(plInbox[0].Message, "laporan-akhir.pdf")

	doc = s.step(doc, s.projectPL, id.RoleProjectLead, models.StatusApprovedByPL, "")
	s.Require().Len(s.inbox(s.adminLead), 1)

	doc = s.step(doc, s.adminLead, id.RoleAdminLead, models.StatusApprovedByAdminLead, "")
	doc = s.step(doc, s.adminLead, id.RoleAdminLead, models.StatusApproved, "")
	s.Equal(models.ComplianceCompliant, doc.ComplianceStatus)

	creatorInbox := s.inbox(s.inspector)
	s.Require().NotEmpty(creatorInbox)
	s.Equal(notificationmodels.TypeDocumentApproved, creatorInbox[0].Type)

	history, err := s.workflow.History(s.ctx(), doc.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 4)
	s.Equal(string(models.StatusPending), history[0].FromStatus)
	s.Equal(string(models.StatusApproved), history[3].ToStatus)
}

func (s *ApprovalFlowSuite) TestRevisionAndResubmission() {
	doc, err := s.workflow.Submit(s.ctx(), workflowservice.SubmitRequest{
		ProjectID:    s.projectID,
		DocumentType: "gambar_struktur",
		CreatedBy:    s.inspector,
	})
	s.Require().NoError(err)

	doc = s.step(doc, s.adminTeam, id.RoleAdminTeam, models.StatusRevisionRequested, "  Lengkapi foto kolom  ")
	s.Equal("Lengkapi foto kolom", doc.AdminTeamFeedback)

	creatorInbox := s.inbox(s.inspector)
	s.Require().Len(creatorInbox, 1)
	s.Contains(creatorInbox[0].Message, "Lengkapi foto kolom")

	doc, err = s.workflow.Resubmit(s.ctx(), doc.ID, s.inspector)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, doc.Status)
	s.Empty(doc.AdminTeamFeedback)

	adminInbox := s.inbox(s.adminTeam)
	s.Require().Len(adminInbox, 2)
	s.Equal(notificationmodels.TypeDocumentResubmitted, adminInbox[0].Type)
}

func (s *ApprovalFlowSuite) TestCreatorCannotVerifyOwnSubmission() {
	doc, err := s.workflow.Submit(s.ctx(), workflowservice.SubmitRequest{
		ProjectID:    s.projectID,
		DocumentType: "laporan_inspeksi",
		CreatedBy:    s.adminTeam,
	})
	s.Require().NoError(err)

	_, err = s.workflow.Transition(s.ctx(), models.TransitionRequest{
		DocumentID: doc.ID,
		ActorID:    s.adminTeam,
		ActorRole:  id.RoleAdminTeam,
		Target:     models.StatusVerifiedByAdminTeam,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSelfVerification))

	stored, err := s.workflow.Get(s.ctx(), doc.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, stored.Status)

	history, err := s.workflow.History(s.ctx(), doc.ID)
	s.Require().NoError(err)
	s.Empty(history)
}
