package trust

import (
	"strings"

	"credgate/pkg/domain"
)

// verifyPath is the fixed public verification path segment. Changing it
// invalidates every previously shared reference, so treat it as frozen.
const verifyPath = "/api/verify/"

// Reference is the stable, shareable pointer to a credential's public
// verification endpoint.
type Reference struct {
	CredentialID domain.CredentialID `json:"credential_id"`
	URL          string              `json:"verification_url"`
}

// VerificationReference derives the canonical verification URL for a
// credential. Pure and deterministic: identical origin and id always yield a
// byte-identical reference.
func VerificationReference(origin string, id domain.CredentialID) Reference {
	return Reference{
		CredentialID: id,
		URL:          strings.TrimSuffix(origin, "/") + verifyPath + id.String(),
	}
}
