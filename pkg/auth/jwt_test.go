package auth_test

import (
	"testing"

	"github.com/shashiranjanraj/myshop/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := auth.GenerateToken(42, "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := auth.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user_id = %d, want 42", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q, want admin", claims.Role)
	}
	if claims.Type != auth.TypeAccess {
		t.Errorf("typ = %q, want %q", claims.Type, auth.TypeAccess)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := auth.GenerateRefreshToken(7, "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := auth.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 7 || claims.Role != "user" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	access, err := auth.GenerateToken(3, "user")
	if err != nil {
		t.Fatalf("generate access: %v", err)
	}
	refresh, err := auth.GenerateRefreshToken(3, "user")
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}

	if _, err := auth.ValidateAccessToken(refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := auth.ValidateRefreshToken(access); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := auth.ValidateToken(tok); err == nil {
			t.Errorf("expected error for %q", tok)
		}
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	token, err := auth.GenerateToken(1, "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := auth.ValidateToken(tampered); err == nil {
		t.Error("expected tampered token to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("hunter2-hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2-hunter2" {
		t.Fatal("password stored in plain text")
	}

	if !auth.CheckPassword(hash, "hunter2-hunter2") {
		t.Error("correct password rejected")
	}
	if auth.CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
