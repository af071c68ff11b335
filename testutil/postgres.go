// Package testutil holds helpers shared by package tests.
package testutil

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"testing"

	"github.com/CasualConversation/casualbotler/crypto"
)

// PostgresDSN returns TEST_PG_DSN or skips the test when it is not set.
func PostgresDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	return dsn
}

// NewSealer returns a host sealer with a random key.
func NewSealer(t *testing.T) *crypto.FieldSealer {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	s, err := crypto.NewFieldSealer(base64.StdEncoding.EncodeToString(key))
	if err != nil {
		t.Fatalf("NewFieldSealer: %v", err)
	}
	return s
}
