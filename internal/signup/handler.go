// Package signup implements a cognito pre sign-up trigger that rejects email
// addresses on disposable domains.
package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cruxstack/cognito-usercheck-go/internal/opa"
	"github.com/cruxstack/cognito-usercheck-go/internal/usercheck"
	"github.com/cruxstack/cognito-usercheck-go/internal/verifier"
)

// PolicyQuery is the rego query evaluated against the sign-up policy.
const PolicyQuery = "data.usercheck_signup_policy.result"

// ErrEmailNotAllowed is returned to cognito to reject the sign-up. Cognito
// shows its message to the user.
var ErrEmailNotAllowed = errors.New("email address is not allowed")

type Handler struct {
	Verifier verifier.Filter
	Policy   *opa.PreparedPolicy
}

func NewHandler(v verifier.Filter, policy *opa.PreparedPolicy) *Handler {
	return &Handler{
		Verifier: v,
		Policy:   policy,
	}
}

// Handle validates the email of the user signing up. The event is returned
// unchanged when the address is allowed.
func (h *Handler) Handle(ctx context.Context, event events.CognitoEventUserPoolsPreSignup) (events.CognitoEventUserPoolsPreSignup, error) {
	email := event.Request.UserAttributes["email"]
	if email == "" {
		slog.DebugContext(ctx, "no email attribute, skipping checks", "trigger", event.TriggerSource)
		return event, nil
	}

	valid, err := h.allowedByPolicy(ctx, event, email)
	if err != nil {
		return event, err
	}

	if h.Verifier != nil {
		valid = h.Verifier.Filter(ctx, valid, email)
	}

	if !valid {
		slog.InfoContext(ctx, "sign-up rejected",
			"trigger", event.TriggerSource,
			"user_pool_id", event.UserPoolID,
			"domain", usercheck.DomainFromEmail(email),
		)
		return event, ErrEmailNotAllowed
	}

	return event, nil
}

// allowedByPolicy returns the prior validity of the sign-up. Without a
// policy every sign-up starts out valid.
func (h *Handler) allowedByPolicy(ctx context.Context, event events.CognitoEventUserPoolsPreSignup, email string) (bool, error) {
	if h.Policy == nil {
		return true, nil
	}

	input := PolicyInput{
		Trigger:        event.TriggerSource,
		UserPoolID:     event.UserPoolID,
		ClientID:       event.CallerContext.ClientID,
		UserName:       event.UserName,
		Email:          email,
		Domain:         usercheck.DomainFromEmail(email),
		UserAttributes: event.Request.UserAttributes,
		ClientMetadata: event.Request.ClientMetadata,
		ValidationData: event.Request.ValidationData,
	}

	out, err := opa.Evaluate[PolicyOutput](ctx, h.Policy, input)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate sign-up policy: %w", err)
	}

	if !out.Allow {
		slog.InfoContext(ctx, "sign-up denied by policy", "reason", out.Reason)
	}
	return out.Allow, nil
}
