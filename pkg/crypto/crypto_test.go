package crypto

import (
	"encoding/hex"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if !VerifyPassword(hash, "secret") {
		t.Fatal("expected password verification to succeed")
	}

	if VerifyPassword(hash, "incorrect") {
		t.Fatal("expected password verification to fail")
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	if len(token) == 0 {
		t.Fatal("expected token to be non-empty")
	}
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(16)
	if err != nil {
		t.Fatalf("code error: %v", err)
	}

	if len(code) != 32 {
		t.Fatalf("expected 32 hex characters, got %d", len(code))
	}

	if _, err := hex.DecodeString(code); err != nil {
		t.Fatalf("expected hex encoding: %v", err)
	}

	other, err := GenerateCode(16)
	if err != nil {
		t.Fatalf("code error: %v", err)
	}
	if code == other {
		t.Fatal("expected codes to be unique")
	}
}
