package verifier

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cruxstack/cognito-usercheck-go/internal/usercheck"
)

// Reputation lowers validity for addresses on disposable domains. Domains in
// Whitelist are trusted and never looked up.
type Reputation struct {
	Checker   *usercheck.Checker
	Whitelist []string
}

func NewReputation(checker *usercheck.Checker, whitelist []string) *Reputation {
	return &Reputation{
		Checker:   checker,
		Whitelist: whitelist,
	}
}

func (v *Reputation) Filter(ctx context.Context, valid bool, email string) bool {
	if !valid {
		return false
	}
	if v.whitelisted(email) {
		slog.DebugContext(ctx, "whitelisted domain, skipping usercheck lookup")
		return valid
	}

	valid = v.Checker.Check(ctx, valid, email)
	if !valid {
		slog.InfoContext(ctx, "disposable email domain rejected",
			"domain", usercheck.DomainFromEmail(email),
		)
	}
	return valid
}

func (v *Reputation) whitelisted(email string) bool {
	domain := usercheck.DomainFromEmail(email)
	if domain == "" {
		return false
	}
	for _, w := range v.Whitelist {
		if strings.EqualFold(domain, w) {
			return true
		}
	}
	return false
}
