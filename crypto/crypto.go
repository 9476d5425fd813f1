package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/datazip-inc/tap-monday/constants"
	"github.com/datazip-inc/tap-monday/utils/logger"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"
)

var (
	mu        sync.Mutex
	kmsClient *kms.Client
	kmsKey    string
)

type cryptoObj struct {
	EncryptedData string `json:"encrypted_data"`
}

// Enabled reports whether an encryption key was provided
func Enabled() bool {
	return strings.TrimSpace(viper.GetString(constants.EncryptionKey)) != ""
}

func isKMSKey(key string) bool {
	return strings.HasPrefix(key, "arn:aws:kms:")
}

// localKey derives the AES-256 key from a passphrase
func localKey(key string) []byte {
	hash := sha256.Sum256([]byte(key))
	return hash[:]
}

func getKMSClient(ctx context.Context, key string) (*kms.Client, error) {
	mu.Lock()
	defer mu.Unlock()

	if kmsClient != nil && kmsKey == key {
		return kmsClient, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	logger.Debugf("using AWS KMS key %s for config decryption", key)
	kmsClient = kms.NewFromConfig(cfg)
	kmsKey = key
	return kmsClient, nil
}

func Decrypt(ctx context.Context, cipherData []byte) (string, error) {
	key := viper.GetString(constants.EncryptionKey)
	if isKMSKey(key) {
		client, err := getKMSClient(ctx, key)
		if err != nil {
			return "", fmt.Errorf("decryption failed: %w", err)
		}
		out, err := client.Decrypt(ctx, &kms.DecryptInput{
			CiphertextBlob: cipherData,
			KeyId:          &key,
		})
		if err != nil {
			return "", fmt.Errorf("decryption failed: %w", err)
		}
		return string(out.Plaintext), nil
	}

	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonceSize := aead.NonceSize()
	if len(cipherData) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := cipherData[:nonceSize], cipherData[nonceSize:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}

	return string(plaintext), nil
}

// Encrypt seals plaintext with the local passphrase; the nonce prefixes the output
func Encrypt(plaintext []byte) ([]byte, error) {
	key := viper.GetString(constants.EncryptionKey)
	if isKMSKey(key) {
		return nil, errors.New("encryption with a KMS key is done through AWS tooling")
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func newGCM(key string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(localKey(key))
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

// DecryptJSONString decrypts a config of the form {"encrypted_data": "<base64>"}
func DecryptJSONString(encryptedObjStr string) (string, error) {
	cryptoObj := cryptoObj{}
	if err := json.Unmarshal([]byte(encryptedObjStr), &cryptoObj); err != nil {
		return "", fmt.Errorf("failed to unmarshal encrypted data: %v", err)
	}
	if cryptoObj.EncryptedData == "" {
		return "", errors.New("encrypted_data is missing from encrypted config")
	}

	encryptedData, err := base64.StdEncoding.DecodeString(cryptoObj.EncryptedData)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 data: %v", err)
	}

	decrypted, err := Decrypt(context.Background(), encryptedData)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt data: %v", err)
	}

	return decrypted, nil
}
