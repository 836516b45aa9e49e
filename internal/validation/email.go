package validation

import (
	"regexp"
	"strings"
)

const maxEmailLength = 254

var (
	localPart  = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+$`)
	domainPart = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
)

// IsValidEmail reports whether email looks like a deliverable address:
// one @, a local part without consecutive or edge dots, and a domain with
// a TLD. Surrounding whitespace is ignored.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > maxEmailLength {
		return false
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return false
	}
	if !localPart.MatchString(local) || strings.Contains(local, "..") ||
		strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return false
	}
	return domainPart.MatchString(domain)
}

// NormalizeEmail trims email and lower-cases its domain. The local part
// is kept as typed.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	return local + "@" + strings.ToLower(domain)
}
