// Package identity models authenticated callers and the per-role policies
// that decide what they may see and change.
package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrUnknownRole is returned when a role string is outside the closed set.
var ErrUnknownRole = errors.New("unknown role")

// Role is the closed set of account kinds.
type Role string

const (
	RoleUser    Role = "user"
	RoleShelter Role = "shelter"
	RoleAdmin   Role = "admin"
)

// ParseRole normalizes and validates a role string.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser, nil
	case RoleShelter:
		return RoleShelter, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", ErrUnknownRole
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID string
	Email  string
	Role   Role
}

// IsZero reports whether no caller was resolved.
func (a Actor) IsZero() bool {
	return strings.TrimSpace(a.UserID) == ""
}

type actorKey struct{}

// WithActor stores the caller on the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the caller stored on the context, if any.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || actor.IsZero() {
		return Actor{}, false
	}
	return actor, true
}
