package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// packageSerialPrefix is the prefix used for generated credit package serials.
const packageSerialPrefix = "pkg_"

// GeneratePackageSerial creates a new random credit package serial.
func GeneratePackageSerial() (serial string, err error) {
	secret := make([]byte, 16)
	if _, err = io.ReadFull(rand.Reader, secret); err != nil {
		return "", fmt.Errorf("generate package serial: %w", err)
	}
	serial = packageSerialPrefix + strings.ToUpper(hex.EncodeToString(secret))
	return serial, nil
}

// GenerateRandomString returns a hex-encoded random string of the given length.
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", fmt.Errorf("generate random string: %w", err)
	}
	return hex.EncodeToString(bytes)[:length], nil
}
