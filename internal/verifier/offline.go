package verifier

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
)

// Offline checks the address format locally using RFC 5322 parsing and
// requires a domain with at least one dot.
type Offline struct{}

func NewOffline() *Offline {
	return &Offline{}
}

func (v *Offline) Filter(ctx context.Context, valid bool, email string) bool {
	if !valid {
		return false
	}
	if reason := formatError(email); reason != "" {
		slog.DebugContext(ctx, "email rejected by format check", "reason", reason)
		return false
	}
	return true
}

func formatError(email string) string {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "invalid email format"
	}
	// reject display-name forms like "Name <user@example.com>"
	if addr.Address != strings.TrimSpace(email) {
		return "invalid email format"
	}

	at := strings.LastIndex(addr.Address, "@")
	if at == -1 || at == len(addr.Address)-1 {
		return "missing domain"
	}

	domain := addr.Address[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "invalid domain"
	}

	return ""
}
