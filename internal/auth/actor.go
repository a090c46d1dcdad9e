package auth

import "github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Authorize is the single ownership/role policy.
//
// An admin passes every check. Otherwise the actor must hold requiredRole
// (when set) and, when ownerID is non-empty, must be the owner.
func Authorize(actor Actor, ownerID string, requiredRole Role) error {
	if actor.ID == "" {
		return apperror.New(apperror.KindUnauthorized, "authentication required")
	}
	if actor.IsAdmin() {
		return nil
	}
	if requiredRole == RoleAdmin {
		return apperror.Forbidden("admin privileges required")
	}
	if ownerID != "" && ownerID != actor.ID {
		return apperror.Forbidden("not authorized to access this resource")
	}
	return nil
}
