package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chirichan/rice"
)

const (
	Aes256Suffix = ".aes256"
	AesKeyEnv    = "PWDCONV_AES_KEY"
)

var ErrNoKey = errors.New("aes key not set, use --key or env " + AesKeyEnv)

func lookupKey(key string) (string, error) {
	if key != "" {
		return key, nil
	}
	k, ok := os.LookupEnv(AesKeyEnv)
	if !ok || k == "" {
		return "", ErrNoKey
	}
	return k, nil
}

// encryptFile encrypts file to file+Aes256Suffix and removes the plaintext.
func encryptFile(key, file string) (string, error) {
	output := file + Aes256Suffix
	if err := rice.AESGCMEncryptFile(key, file, output); err != nil {
		return "", fmt.Errorf("encrypt %s: %w", file, err)
	}
	return output, os.Remove(file)
}

// decryptFile reverses encryptFile.
func decryptFile(key, file string) (string, error) {
	if !rice.PathExists(file) {
		return "", fmt.Errorf("file not found: %s", file)
	}
	if rice.PathIsDir(file) || !strings.HasSuffix(file, Aes256Suffix) {
		return "", fmt.Errorf("not an encrypted file: %s", file)
	}
	output := strings.TrimSuffix(file, Aes256Suffix)
	if err := rice.AESGCMDecryptFile(key, file, output); err != nil {
		return "", fmt.Errorf("decrypt %s: %w", file, err)
	}
	return output, os.Remove(file)
}
