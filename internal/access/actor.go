// Package access models the authenticated caller and the pure permission rules over it.
package access

import (
	"context"
	"slices"
)

// Role is a role claim issued by the identity provider.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

type roleSet uint8

const (
	adminBit roleSet = 1 << iota
	workerBit
)

// Actor is the caller of an operation. Its role set is closed: only admin and worker are kept,
// any other claim from the identity provider is dropped.
type Actor struct {
	id    string
	roles roleSet
}

// NewActor builds an actor from an external user id and role claims.
func NewActor(id string, roles ...Role) Actor {
	actor := Actor{id: id}
	for _, role := range roles {
		switch role {
		case RoleAdmin:
			actor.roles |= adminBit
		case RoleWorker:
			actor.roles |= workerBit
		}
	}
	return actor
}

// FromClaims builds an actor from raw string role claims.
func FromClaims(id string, claims []string) Actor {
	roles := make([]Role, 0, len(claims))
	for _, c := range claims {
		roles = append(roles, Role(c))
	}
	return NewActor(id, roles...)
}

// ID returns the external user id.
func (a Actor) ID() string { return a.id }

// IsZero reports whether the actor is unauthenticated.
func (a Actor) IsZero() bool { return a.id == "" }

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.roles&adminBit != 0 }

// IsWorker reports whether the actor holds the worker role.
func (a Actor) IsWorker() bool { return a.roles&workerBit != 0 }

// Roles lists the held roles.
func (a Actor) Roles() []Role {
	roles := make([]Role, 0, 2)
	if a.IsAdmin() {
		roles = append(roles, RoleAdmin)
	}
	if a.IsWorker() {
		roles = append(roles, RoleWorker)
	}
	return roles
}

// ValidRole reports whether r is a role this service understands.
func ValidRole(r string) bool {
	return r == string(RoleAdmin) || r == string(RoleWorker)
}

type actorKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext returns the actor stored in ctx.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok && !a.IsZero()
}

// IsAssigned reports whether the actor is one of the assignees.
func IsAssigned(a Actor, assigneeIDs []string) bool {
	return !a.IsZero() && slices.Contains(assigneeIDs, a.id)
}

func hasAnyRole(a Actor) bool {
	return a.roles != 0 && !a.IsZero()
}

// CanManageTasks covers creating tasks, editing their details, assigning and soft deleting.
func CanManageTasks(a Actor) bool {
	return a.IsAdmin() && !a.IsZero()
}

// CanViewTask reports whether the actor may read a task and its activity feed.
func CanViewTask(a Actor, assigneeIDs []string) bool {
	return CanManageTasks(a) || (hasAnyRole(a) && IsAssigned(a, assigneeIDs))
}

// CanComment reports whether the actor may comment on a task.
func CanComment(a Actor, assigneeIDs []string) bool {
	return CanViewTask(a, assigneeIDs)
}

// CanCheckIn requires physical assignment, whatever the role.
func CanCheckIn(a Actor, assigneeIDs []string) bool {
	return hasAnyRole(a) && IsAssigned(a, assigneeIDs)
}

// CanRecordPayment reports whether the actor may record money collected for a task.
func CanRecordPayment(a Actor, assigneeIDs []string) bool {
	return CanViewTask(a, assigneeIDs)
}

// CanAttach reports whether the actor may upload files to a task. Assigned workers
// need workerUploads to be enabled.
func CanAttach(a Actor, assigneeIDs []string, workerUploads bool) bool {
	if CanManageTasks(a) {
		return true
	}
	return workerUploads && hasAnyRole(a) && IsAssigned(a, assigneeIDs)
}

// CanManageEmployees reports whether the actor may create and edit employees.
func CanManageEmployees(a Actor) bool {
	return a.IsAdmin() && !a.IsZero()
}

// CanViewEmployee reports whether the actor may read the employee record or report of userID.
func CanViewEmployee(a Actor, userID string) bool {
	return CanManageEmployees(a) || (hasAnyRole(a) && a.id == userID)
}
