package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/cruxstack/cognito-usercheck-go/internal/usercheck"
)

const (
	EncryptionKMS  = "kms"
	EncryptionESDK = "esdk"
)

type Config struct {
	AWSConfig                 *aws.Config
	AppLogLevel               slog.Level
	AppKmsKeyId               string
	AppSignupPolicyPath       string
	DebugMode                 bool
	DebugDataPath             string
	UserCheckApiKey           string
	UserCheckApiKeyEncrypted  string
	UserCheckApiKeyEncryption string
	UserCheckApiBaseURL       string
	UserCheckTimeout          time.Duration
	UserCheckWhitelist        []string
}

func New() (*Config, error) {
	awscfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, err
	}

	cfg := Config{
		AWSConfig:                 &awscfg,
		AppLogLevel:               slog.LevelInfo,
		AppKmsKeyId:               os.Getenv("APP_KMS_KEY_ID"),
		AppSignupPolicyPath:       os.Getenv("APP_SIGNUP_POLICY_PATH"),
		DebugMode:                 os.Getenv("APP_DEBUG_MODE") == "true",
		DebugDataPath:             os.Getenv("APP_DEBUG_DATA_PATH"),
		UserCheckApiKey:           strings.TrimSpace(os.Getenv("APP_USERCHECK_API_KEY")),
		UserCheckApiKeyEncrypted:  strings.TrimSpace(os.Getenv("APP_USERCHECK_API_KEY_ENCRYPTED")),
		UserCheckApiKeyEncryption: os.Getenv("APP_USERCHECK_API_KEY_ENCRYPTION"),
		UserCheckApiBaseURL:       os.Getenv("APP_USERCHECK_API_BASE_URL"),
		UserCheckTimeout:          usercheck.DefaultTimeout,
		UserCheckWhitelist:        []string{},
	}

	if levelStr := os.Getenv("APP_LOG_LEVEL"); levelStr != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(levelStr)); err == nil {
			cfg.AppLogLevel = level
		}
	}

	if cfg.UserCheckApiBaseURL == "" {
		cfg.UserCheckApiBaseURL = usercheck.DefaultBaseURL
	}

	if cfg.UserCheckApiKeyEncryption == "" {
		cfg.UserCheckApiKeyEncryption = EncryptionKMS
	}

	if timeoutStr := os.Getenv("APP_USERCHECK_TIMEOUT"); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil && timeout > 0 {
			cfg.UserCheckTimeout = timeout
		} else {
			slog.Warn("invalid APP_USERCHECK_TIMEOUT, using default", "value", timeoutStr, "default", usercheck.DefaultTimeout.String())
		}
	}

	whitelistStr := strings.TrimSpace(os.Getenv("APP_USERCHECK_WHITELIST"))
	if whitelistStr != "" {
		for _, x := range strings.Split(whitelistStr, ",") {
			if x = strings.TrimSpace(x); x != "" {
				cfg.UserCheckWhitelist = append(cfg.UserCheckWhitelist, x)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.HasApiKey() {
		slog.Warn("usercheck api key not set, requests are limited to 60 per hour")
	}

	return &cfg, nil
}

// HasApiKey reports whether a plaintext or encrypted api key is configured.
func (c *Config) HasApiKey() bool {
	return c.UserCheckApiKey != "" || c.UserCheckApiKeyEncrypted != ""
}

// Validate checks that required configuration fields are set and valid
func (c *Config) Validate() error {
	if c.UserCheckApiKey != "" && c.UserCheckApiKeyEncrypted != "" {
		return errors.New("APP_USERCHECK_API_KEY and APP_USERCHECK_API_KEY_ENCRYPTED are mutually exclusive")
	}

	switch c.UserCheckApiKeyEncryption {
	case EncryptionKMS, EncryptionESDK:
	default:
		return fmt.Errorf("invalid APP_USERCHECK_API_KEY_ENCRYPTION: %s (must be '%s' or '%s')", c.UserCheckApiKeyEncryption, EncryptionKMS, EncryptionESDK)
	}

	if c.UserCheckApiKeyEncrypted != "" && c.UserCheckApiKeyEncryption == EncryptionESDK && c.AppKmsKeyId == "" {
		return errors.New("APP_KMS_KEY_ID is required when using esdk api key encryption")
	}

	u, err := url.Parse(c.UserCheckApiBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid APP_USERCHECK_API_BASE_URL: %q", c.UserCheckApiBaseURL)
	}

	if c.UserCheckTimeout <= 0 {
		return errors.New("APP_USERCHECK_TIMEOUT must be positive")
	}

	return nil
}
