// File: services/identity_service.go
package services

import (
	"strings"
	"unicode"

	"school-vote/models"
)

// IdentityResolver turns a typed email into a voter identity.
type IdentityResolver struct {
	domain string // e.g. "@escola.pr.gov.br"
}

// NewIdentityResolver accepts only emails ending in domain.
func NewIdentityResolver(domain string) *IdentityResolver {
	return &IdentityResolver{domain: strings.ToLower(domain)}
}

// Domain returns the accepted suffix.
func (r *IdentityResolver) Domain() string {
	return r.domain
}

// Resolve validates raw and derives the display name from its local part.
// The returned email is trimmed and lower-cased; it is the voter's key.
// A local part that yields a blank name is rejected.
func (r *IdentityResolver) Resolve(raw string) (models.Voter, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasSuffix(email, r.domain) || len(email) == len(r.domain) {
		return models.Voter{}, ErrInvalidEmailDomain
	}

	local, _, _ := strings.Cut(email, "@")
	name := DisplayName(local)
	if strings.TrimSpace(name) == "" {
		return models.Voter{}, ErrInvalidEmailDomain
	}
	return models.Voter{Email: email, Name: name}, nil
}

// DisplayName replaces dots with spaces and upper-cases the first
// character of every whitespace-delimited token.
func DisplayName(local string) string {
	s := strings.ReplaceAll(local, ".", " ")

	var b strings.Builder
	b.Grow(len(s))
	atStart := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			atStart = true
			b.WriteRune(r)
			continue
		}
		if atStart {
			r = unicode.ToUpper(r)
			atStart = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
