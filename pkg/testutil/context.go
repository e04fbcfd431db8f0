package testutil

import (
	"net/http"

	id "slfcert/pkg/domain"
	"slfcert/pkg/requestcontext"
)

// WithActor adds the acting user to the request context.
// This simulates what the actor middleware does for authenticated requests.
// If the userID is not a valid UUID, the request is returned unchanged.
func WithActor(req *http.Request, userID string, role id.Role) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	ctx := requestcontext.WithActor(req.Context(), requestcontext.ActorInfo{ID: parsed, Role: role})
	return req.WithContext(ctx)
}
