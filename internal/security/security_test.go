package security

import (
	"strings"
	"testing"
	"time"
)

func TestUserTokenRoundTrip(t *testing.T) {
	token, errGen := GenerateToken("secret", 7, "anna", 42, time.Hour)
	if errGen != nil {
		t.Fatalf("generate: %v", errGen)
	}

	claims, errParse := ParseToken("secret", token)
	if errParse != nil {
		t.Fatalf("parse: %v", errParse)
	}
	if claims.UserID != 7 || claims.Username != "anna" || claims.CustomerID != 42 {
		t.Fatalf("claims = %+v", claims)
	}

	if _, errWrong := ParseToken("wrong", token); errWrong != ErrInvalidToken {
		t.Fatalf("wrong secret error = %v", errWrong)
	}
}

func TestExpiredToken(t *testing.T) {
	token, errGen := GenerateToken("secret", 1, "anna", 1, -time.Minute)
	if errGen != nil {
		t.Fatalf("generate: %v", errGen)
	}
	if _, errParse := ParseToken("secret", token); errParse != ErrExpiredToken {
		t.Fatalf("expired error = %v", errParse)
	}
}

func TestAdminTokenIsNotUserToken(t *testing.T) {
	token, errGen := GenerateAdminToken("secret", 3, "root", time.Hour)
	if errGen != nil {
		t.Fatalf("generate: %v", errGen)
	}
	claims, errParse := ParseAdminToken("secret", token)
	if errParse != nil {
		t.Fatalf("parse: %v", errParse)
	}
	if claims.AdminID != 3 || claims.Username != "root" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, errHash := HashPassword("hunter2hunter2")
	if errHash != nil {
		t.Fatalf("hash: %v", errHash)
	}
	if !CheckPassword(hash, "hunter2hunter2") {
		t.Fatal("expected matching password")
	}
	if CheckPassword(hash, "hunter3hunter3") {
		t.Fatal("expected mismatch")
	}
}

func TestPasswordMinimumLength(t *testing.T) {
	if _, errHash := HashPassword("short"); errHash != ErrPasswordTooShort {
		t.Fatalf("short password error = %v", errHash)
	}
}

func TestGeneratePackageSerial(t *testing.T) {
	serial, errGen := GeneratePackageSerial()
	if errGen != nil {
		t.Fatalf("generate: %v", errGen)
	}
	if !strings.HasPrefix(serial, "pkg_") {
		t.Fatalf("serial = %q", serial)
	}

	other, _ := GeneratePackageSerial()
	if serial == other {
		t.Fatal("expected unique serials")
	}
}
