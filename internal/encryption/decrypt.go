package encryption

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/chainifynet/aws-encryption-sdk-go/pkg/client"
	"github.com/chainifynet/aws-encryption-sdk-go/pkg/clientconfig"
	"github.com/chainifynet/aws-encryption-sdk-go/pkg/materials"
	"github.com/chainifynet/aws-encryption-sdk-go/pkg/providers/kmsprovider"
	"github.com/chainifynet/aws-encryption-sdk-go/pkg/suite"
)

// Decrypt decrypts a base64 encoded aws encryption sdk message, such as the
// output of `aws-encryption-cli --encrypt --encode`.
func Decrypt(ctx context.Context, kmsId, encryptedText string) (string, error) {
	cfg, err := clientconfig.NewConfigWithOpts(
		clientconfig.WithCommitmentPolicy(suite.CommitmentPolicyForbidEncryptAllowDecrypt),
	)
	if err != nil {
		return "", fmt.Errorf("client config setup failed: %w", err)
	}
	c := client.NewClientWithConfig(cfg)

	kmsKeyProvider, err := kmsprovider.New(kmsId)
	if err != nil {
		return "", fmt.Errorf("kms key provider setup failed: %w", err)
	}

	cmm, err := materials.NewDefault(kmsKeyProvider)
	if err != nil {
		return "", fmt.Errorf("materials manager setup failed: %w", err)
	}

	cipherText, err := base64.StdEncoding.DecodeString(encryptedText)
	if err != nil {
		return "", fmt.Errorf("invalid base64 ciphertext: %w", err)
	}

	plaintext, _, err := c.Decrypt(ctx, cipherText, cmm)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}

	return string(plaintext), nil
}
