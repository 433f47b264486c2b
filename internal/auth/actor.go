package auth

import "errors"

// ErrMissingIdentity is returned when a caller reaches the command pipeline
// without a usable identity claim. This fails closed: it is a contract
// violation, not a business rejection.
var ErrMissingIdentity = errors.New("caller has no usable identity claim")

// SystemActorID identifies commands issued by the system itself, such as
// the projector's compensating write-backs.
const SystemActorID = "system"

// Actor is the resolved identity a command is handled for.
type Actor struct {
	ID    string
	Email string
	Role  string
}

// SystemActor returns the identity used for internally issued commands.
func SystemActor() Actor {
	return Actor{ID: SystemActorID, Role: "system"}
}

// ActorFromClaims resolves an actor from verified JWT claims, failing
// closed when the subject is absent.
func ActorFromClaims(claims *Claims) (Actor, error) {
	if claims == nil || claims.EditorID == "" {
		return Actor{}, ErrMissingIdentity
	}
	return Actor{ID: claims.EditorID, Email: claims.Email, Role: claims.Role}, nil
}
