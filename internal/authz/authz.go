// Package authz enforces role-scoped access rules over decoded session claims.
package authz

import (
	"fmt"

	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
)

// RequireRole fails unless the claims carry exactly the required role.
func RequireRole(claims domain.Claims, role domain.Role) error {
	if claims.Role != role {
		return dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("%s access required", role))
	}
	return nil
}

// RequireSelfScope fails unless the claims' scope matches the owner of the
// requested resource. Holder-facing operations use this to keep one holder
// from reading another's records. The public verification path deliberately
// bypasses it: anonymous third-party checks are the point of that operation.
func RequireSelfScope(claims domain.Claims, resourceOwnerID string) error {
	if claims.ScopeID == "" || claims.ScopeID != resourceOwnerID {
		return dErrors.New(dErrors.CodeForbidden, "access restricted to own records")
	}
	return nil
}
