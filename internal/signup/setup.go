package signup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cruxstack/cognito-usercheck-go/internal/config"
	"github.com/cruxstack/cognito-usercheck-go/internal/encryption"
	"github.com/cruxstack/cognito-usercheck-go/internal/opa"
	"github.com/cruxstack/cognito-usercheck-go/internal/usercheck"
	"github.com/cruxstack/cognito-usercheck-go/internal/verifier"
)

// New builds a handler from cfg. It resolves the api key and compiles the
// policy, so it should run once per cold start.
func New(ctx context.Context, cfg *config.Config) (*Handler, *usercheck.Store, error) {
	apiKey, err := encryption.ResolveAPIKey(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	store := usercheck.NewStore(usercheck.NewSettings(apiKey, cfg.UserCheckApiBaseURL))
	checker := usercheck.NewChecker(store, cfg.UserCheckTimeout, usercheck.NewSlogSink(slog.Default()))

	var policy *opa.PreparedPolicy
	if cfg.AppSignupPolicyPath != "" {
		policy, err = opa.LoadPolicy(ctx, cfg.AppSignupPolicyPath, PolicyQuery)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load sign-up policy: %w", err)
		}
	}

	v := verifier.Chain{
		verifier.NewOffline(),
		verifier.NewReputation(checker, cfg.UserCheckWhitelist),
	}

	return NewHandler(v, policy), store, nil
}
