package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cruxstack/cognito-usercheck-go/internal/config"
	"github.com/cruxstack/cognito-usercheck-go/internal/signup"
	"github.com/cruxstack/cognito-usercheck-go/internal/usercheck"
	"github.com/joho/godotenv"
)

var (
	dataPath   string
	policyPath string
	apiKey     string
)

func init() {
	flag.StringVar(&dataPath, "data", "", "path to JSON file with pre sign-up events")
	flag.StringVar(&policyPath, "policy", "", "override path to Rego policy file")
	flag.StringVar(&apiKey, "api-key", "", "override the usercheck api key")
	flag.Parse()
}

func NewDebugConfig() (*config.Config, error) {
	envpath := filepath.Join("..", "..", ".env")
	if _, err := os.Stat(envpath); err == nil {
		_ = godotenv.Load(envpath)
	}

	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	cfg.DebugMode = true

	if cfg.AppSignupPolicyPath == "" {
		cfg.AppSignupPolicyPath = filepath.Join("..", "..", "fixtures", "debug-policy.rego")
	}
	if policyPath != "" {
		cfg.AppSignupPolicyPath = policyPath
	}

	if cfg.DebugDataPath == "" {
		cfg.DebugDataPath = filepath.Join("..", "..", "fixtures", "debug-data.json")
	}
	if dataPath != "" {
		cfg.DebugDataPath = dataPath
	}

	return cfg, nil
}

func main() {
	cfg, err := NewDebugConfig()
	if err != nil {
		slog.Error("failed to load debug config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.AppLogLevel})))

	ctx := context.Background()
	h, store, err := signup.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to init handler", "error", err)
		os.Exit(1)
	}

	if apiKey != "" {
		store.Update(usercheck.NewSettings(apiKey, store.Load().BaseURL))
	}

	data, err := os.ReadFile(cfg.DebugDataPath)
	if err != nil {
		slog.Error("failed to read data file", "path", cfg.DebugDataPath, "error", err)
		os.Exit(1)
	}

	evts := []events.CognitoEventUserPoolsPreSignup{}
	if err := json.Unmarshal(data, &evts); err != nil {
		slog.Error("failed to parse event file", "error", err)
		os.Exit(1)
	}

	for i, e := range evts {
		_, err := h.Handle(ctx, e)
		switch {
		case err == nil:
			slog.Info("sign-up allowed", "index", i, "email", e.Request.UserAttributes["email"])
		case errors.Is(err, signup.ErrEmailNotAllowed):
			slog.Info("sign-up rejected", "index", i, "email", e.Request.UserAttributes["email"])
		default:
			slog.Error("handler failed", "index", i, "error", err)
			os.Exit(1)
		}
	}

	slog.Info("debug run complete", "events", len(evts))
}
