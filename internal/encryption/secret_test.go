package encryption

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/cruxstack/cognito-usercheck-go/internal/aws"
	"github.com/cruxstack/cognito-usercheck-go/internal/config"
)

type mockKMS struct {
	plaintext string
	calls     int
}

func (m *mockKMS) Decrypt(ctx context.Context, input *kms.DecryptInput, opts ...func(*kms.Options)) (*kms.DecryptOutput, error) {
	m.calls++
	return &kms.DecryptOutput{Plaintext: []byte(m.plaintext)}, nil
}

func failingESDK(ctx context.Context, kmsId, encryptedText string) (string, error) {
	return "", errors.New("esdk should not be called")
}

func TestResolveAPIKey_Plaintext(t *testing.T) {
	cfg := &config.Config{UserCheckApiKey: "plain-key", UserCheckApiKeyEncryption: config.EncryptionKMS}

	key, err := resolveAPIKey(context.Background(), cfg, nil, failingESDK)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "plain-key" {
		t.Errorf("expected plain-key, got %q", key)
	}
}

func TestResolveAPIKey_MockedKey(t *testing.T) {
	cfg := &config.Config{
		DebugMode:                 true,
		AppKmsKeyId:               MockedKeyID,
		UserCheckApiKeyEncrypted:  "debug-key",
		UserCheckApiKeyEncryption: config.EncryptionESDK,
	}

	key, err := resolveAPIKey(context.Background(), cfg, nil, failingESDK)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "debug-key" {
		t.Errorf("expected debug-key, got %q", key)
	}
}

func TestResolveAPIKey_KMS(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	mock := &mockKMS{plaintext: "kms-key\n"}
	cfg := &config.Config{
		UserCheckApiKeyEncrypted:  base64.StdEncoding.EncodeToString([]byte("blob")),
		UserCheckApiKeyEncryption: config.EncryptionKMS,
	}

	key, err := resolveAPIKey(context.Background(), cfg, &aws.KMSClient{Client: mock}, failingESDK)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "kms-key" {
		t.Errorf("expected trimmed kms-key, got %q", key)
	}
	if mock.calls != 1 {
		t.Errorf("expected 1 kms call, got %d", mock.calls)
	}
}

func TestResolveAPIKey_ESDK(t *testing.T) {
	var gotKeyID string
	esdk := func(ctx context.Context, kmsId, encryptedText string) (string, error) {
		gotKeyID = kmsId
		return "esdk-key", nil
	}
	cfg := &config.Config{
		AppKmsKeyId:               "alias/usercheck",
		UserCheckApiKeyEncrypted:  "Y2lwaGVy",
		UserCheckApiKeyEncryption: config.EncryptionESDK,
	}

	key, err := resolveAPIKey(context.Background(), cfg, nil, esdk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "esdk-key" {
		t.Errorf("expected esdk-key, got %q", key)
	}
	if gotKeyID != "alias/usercheck" {
		t.Errorf("expected key id alias/usercheck, got %q", gotKeyID)
	}
}

func TestResolveAPIKey_Errors(t *testing.T) {
	testCases := []struct {
		name string
		cfg  *config.Config
	}{
		{
			name: "esdk failure",
			cfg: &config.Config{
				AppKmsKeyId:               "alias/usercheck",
				UserCheckApiKeyEncrypted:  "Y2lwaGVy",
				UserCheckApiKeyEncryption: config.EncryptionESDK,
			},
		},
		{
			name: "kms without client",
			cfg: &config.Config{
				UserCheckApiKeyEncrypted:  "Y2lwaGVy",
				UserCheckApiKeyEncryption: config.EncryptionKMS,
			},
		},
		{
			name: "unknown encryption",
			cfg: &config.Config{
				UserCheckApiKeyEncrypted:  "Y2lwaGVy",
				UserCheckApiKeyEncryption: "rot13",
			},
		},
		{
			name: "mocked key outside debug mode",
			cfg: &config.Config{
				AppKmsKeyId:               MockedKeyID,
				UserCheckApiKeyEncrypted:  "debug-key",
				UserCheckApiKeyEncryption: config.EncryptionESDK,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := resolveAPIKey(context.Background(), tc.cfg, nil, failingESDK); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
