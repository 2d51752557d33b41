// Package oauth holds the small, dependency-free OAuth2 logic units:
// scope-string parsing and redirect-URI validation.
package oauth

import "strings"

// ParseScope normalizes a whitespace-delimited scope string into a set of
// scope tokens. A blank or empty input yields an empty set, duplicates
// collapse, and order follows first appearance. No case folding and no
// validation against a client's registered scopes happens here.
func ParseScope(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}

	scopes := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, scope := range fields {
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}
		scopes = append(scopes, scope)
	}

	return scopes
}
