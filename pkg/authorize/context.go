package authorize

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sarahsindone/sbrp-application/pkg/reqctx"
)

var (
	ErrNoSubjectInContext = errors.New("no subject found in context")
)

// SubjectFromContext extracts the GroupSubject (user ID) from the claims
// stored by the auth middleware.
func SubjectFromContext(ctx context.Context) (GroupSubject, error) {
	claims := reqctx.ClaimsFromContext(ctx)
	if claims == nil {
		return "", ErrNoSubjectInContext
	}
	userID := claims.GetUserID()
	if userID == uuid.Nil {
		return "", ErrNoSubjectInContext
	}
	return GroupSubject(userID.String()), nil
}

// MustSubjectFromContext panics when no subject is present. Only call it
// behind AuthRequired.
func MustSubjectFromContext(ctx context.Context) GroupSubject {
	subject, err := SubjectFromContext(ctx)
	if err != nil {
		panic(err)
	}
	return subject
}

// RoleFromContext returns the Casbin role for the caller's application role.
func RoleFromContext(ctx context.Context) (Role, bool) {
	claims := reqctx.ClaimsFromContext(ctx)
	if claims == nil {
		return "", false
	}
	return RoleFor(claims.GetRole())
}

// DomainFromContext returns the caller's private user domain.
func DomainFromContext(ctx context.Context) (Domain, error) {
	subject, err := SubjectFromContext(ctx)
	if err != nil {
		return "", err
	}
	return UserDomain(string(subject)), nil
}
