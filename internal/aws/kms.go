package aws

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// KMSDecrypter is the subset of the kms client used here.
type KMSDecrypter interface {
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

type KMSClient struct {
	Client KMSDecrypter
}

func NewKMSClient(cfg aws.Config) *KMSClient {
	return &KMSClient{Client: kms.NewFromConfig(cfg)}
}

// LambdaEncryptionContext returns the context the lambda console uses when
// encrypting environment variables in transit, or nil outside lambda.
func LambdaEncryptionContext() map[string]string {
	name := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	if name == "" {
		return nil
	}
	return map[string]string{"LambdaFunctionName": name}
}

// Decrypt decrypts a base64 encoded kms ciphertext. keyId may be empty, in
// which case kms resolves the key from the ciphertext metadata.
func (c *KMSClient) Decrypt(ctx context.Context, keyId, encodedEncryptedStr string, encryptionContext map[string]string) (string, error) {
	if encodedEncryptedStr == "" {
		return "", nil
	}

	decoded, err := base64.StdEncoding.DecodeString(encodedEncryptedStr)
	if err != nil {
		return "", fmt.Errorf("invalid base64 ciphertext: %w", err)
	}

	input := &kms.DecryptInput{
		CiphertextBlob:    decoded,
		EncryptionContext: encryptionContext,
	}
	if keyId != "" {
		input.KeyId = aws.String(keyId)
	}

	output, err := c.Client.Decrypt(ctx, input)
	if err != nil {
		return "", fmt.Errorf("kms decrypt failed: %w", err)
	}

	return string(output.Plaintext), nil
}
