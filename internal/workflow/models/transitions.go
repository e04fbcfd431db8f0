package models

import (
	"slices"

	id "slfcert/pkg/domain"
)

// transitions lists, per source status, the reachable targets and the roles
// allowed to take each edge. Cancellation is added for every non-terminal
// source in init.
var transitions = map[Status]map[Status][]id.Role{
	StatusPending: {
		StatusVerifiedByAdminTeam: {id.RoleAdminTeam},
		StatusRevisionRequested:   {id.RoleAdminTeam},
	},
	StatusVerifiedByAdminTeam: {
		StatusApprovedByPL: {id.RoleProjectLead},
	},
	StatusApprovedByPL: {
		StatusApprovedByAdminLead: {id.RoleAdminLead},
	},
	StatusApprovedByAdminLead: {
		StatusApproved: {id.RoleAdminLead},
		StatusRejected: {id.RoleAdminLead},
	},
	StatusRevisionRequested: {},
}

var cancelRoles = []id.Role{id.RoleAdminLead, id.RoleSuperadmin}

func init() {
	for from, edges := range transitions {
		if !from.IsTerminal() {
			edges[StatusCancelled] = cancelRoles
		}
	}
}

// CanTransition reports whether from -> to is an edge of the table,
// regardless of who asks. revision_requested -> pending is not an edge; it
// only happens through resubmission.
func CanTransition(from, to Status) bool {
	_, ok := transitions[from][to]
	return ok
}

// RolesFor returns the roles allowed to take from -> to.
func RolesFor(from, to Status) []id.Role {
	return slices.Clone(transitions[from][to])
}

// RoleMayTransition reports whether role may take from -> to.
func RoleMayTransition(from, to Status, role id.Role) bool {
	return slices.Contains(transitions[from][to], role)
}

// AllowedTargets lists the statuses role may move a document to from, in
// the canonical status order.
func AllowedTargets(from Status, role id.Role) []Status {
	var out []Status
	for _, to := range Statuses {
		if RoleMayTransition(from, to, role) {
			out = append(out, to)
		}
	}
	return out
}
