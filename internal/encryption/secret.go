package encryption

import (
	"context"
	"fmt"
	"strings"

	"github.com/cruxstack/cognito-usercheck-go/internal/aws"
	"github.com/cruxstack/cognito-usercheck-go/internal/config"
)

// MockedKeyID makes ResolveAPIKey return the ciphertext as-is in debug mode.
const MockedKeyID = "MOCKED_KEY_ID"

type decryptFunc func(ctx context.Context, kmsId, encryptedText string) (string, error)

// ResolveAPIKey returns the usercheck api key, decrypting it when it is
// configured as ciphertext.
func ResolveAPIKey(ctx context.Context, cfg *config.Config) (string, error) {
	var kmsClient *aws.KMSClient
	if cfg.AWSConfig != nil {
		kmsClient = aws.NewKMSClient(*cfg.AWSConfig)
	}
	return resolveAPIKey(ctx, cfg, kmsClient, Decrypt)
}

func resolveAPIKey(ctx context.Context, cfg *config.Config, kmsClient *aws.KMSClient, esdk decryptFunc) (string, error) {
	if cfg.UserCheckApiKeyEncrypted == "" {
		return cfg.UserCheckApiKey, nil
	}

	if cfg.DebugMode && cfg.AppKmsKeyId == MockedKeyID {
		return cfg.UserCheckApiKeyEncrypted, nil
	}

	var (
		key string
		err error
	)
	switch cfg.UserCheckApiKeyEncryption {
	case config.EncryptionESDK:
		key, err = esdk(ctx, cfg.AppKmsKeyId, cfg.UserCheckApiKeyEncrypted)
	case config.EncryptionKMS:
		if kmsClient == nil {
			return "", fmt.Errorf("kms client not configured")
		}
		key, err = kmsClient.Decrypt(ctx, cfg.AppKmsKeyId, cfg.UserCheckApiKeyEncrypted, aws.LambdaEncryptionContext())
	default:
		return "", fmt.Errorf("unknown api key encryption: %s", cfg.UserCheckApiKeyEncryption)
	}
	if err != nil {
		return "", fmt.Errorf("failed to decrypt usercheck api key: %w", err)
	}

	return strings.TrimSpace(key), nil
}
