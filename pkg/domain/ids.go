package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "slfcert/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so a DocumentID can never be passed
// where a UserID is expected.
type (
	UserID         uuid.UUID
	ProjectID      uuid.UUID
	DocumentID     uuid.UUID
	InspectionID   uuid.UUID
	NotificationID uuid.UUID
	ResponseID     uuid.UUID
)

// parseUUID enforces the boundary invariant shared by every ID type:
// non-empty, well-formed and not the nil UUID.
func parseUUID(kind, s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

// ParseUserID parses a user id received from outside the process.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

func (i UserID) String() string { return uuid.UUID(i).String() }

func (i UserID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

func (i UserID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

func (i *UserID) UnmarshalText(b []byte) error { return (*uuid.UUID)(i).UnmarshalText(b) }

// ParseProjectID parses a project id received from outside the process.
func ParseProjectID(s string) (ProjectID, error) {
	u, err := parseUUID("project id", s)
	return ProjectID(u), err
}

func (i ProjectID) String() string { return uuid.UUID(i).String() }

func (i ProjectID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

func (i ProjectID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

func (i *ProjectID) UnmarshalText(b []byte) error { return (*uuid.UUID)(i).UnmarshalText(b) }

// ParseDocumentID parses a document id received from outside the process.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID("document id", s)
	return DocumentID(u), err
}

func (i DocumentID) String() string { return uuid.UUID(i).String() }

func (i DocumentID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

func (i DocumentID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

func (i *DocumentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(i).UnmarshalText(b) }

// ParseInspectionID parses a inspection id received from outside the process.
func ParseInspectionID(s string) (InspectionID, error) {
	u, err := parseUUID("inspection id", s)
	return InspectionID(u), err
}

func (i InspectionID) String() string { return uuid.UUID(i).String() }

func (i InspectionID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

func (i InspectionID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

func (i *InspectionID) UnmarshalText(b []byte) error { return (*uuid.UUID)(i).UnmarshalText(b) }

// ParseNotificationID parses a notification id received from outside the process.
func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID("notification id", s)
	return NotificationID(u), err
}

func (i NotificationID) String() string { return uuid.UUID(i).String() }

func (i NotificationID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

func (i NotificationID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

func (i *NotificationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(i).UnmarshalText(b) }

// ParseResponseID parses a response id received from outside the process.
func ParseResponseID(s string) (ResponseID, error) {
	u, err := parseUUID("response id", s)
	return ResponseID(u), err
}

func (i ResponseID) String() string { return uuid.UUID(i).String() }

func (i ResponseID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

func (i ResponseID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

func (i *ResponseID) UnmarshalText(b []byte) error { return (*uuid.UUID)(i).UnmarshalText(b) }
