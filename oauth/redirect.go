package oauth

import "strings"

// ValidateRedirectURI reports whether a client-supplied redirect URI is
// covered by the client's registered URI set. A candidate matches when it is
// byte-for-byte equal to a registered URI or has one as a literal prefix, so
// a registration like "https://host/callback/" authorizes any concrete path
// below it. There is no wildcard expansion and no scheme, host or
// trailing-slash normalization: matching is exact string-prefix only.
//
// An empty registered set means no redirect is ever valid (fail closed).
// Malformed input never errors, it simply fails to match.
func ValidateRedirectURI(registeredURIs []string, redirectURI string) bool {
	if redirectURI == "" {
		return false
	}

	for _, registered := range registeredURIs {
		if registered == "" {
			continue
		}
		if strings.HasPrefix(redirectURI, registered) {
			return true
		}
	}

	return false
}
