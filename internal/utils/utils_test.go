package utils

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("admin123", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "admin123") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "admin124") {
		t.Fatal("wrong password accepted")
	}
	if VerifyPassword("not-a-hash", "admin123") {
		t.Fatal("garbage hash accepted")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "admin", RoleAdmin, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseAccessToken("s3cret", tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims["sub"] != "admin" || claims["role"] != RoleAdmin {
		t.Fatalf("claims = %v", claims)
	}
	if _, err := ParseAccessToken("other", tok.Token); err == nil {
		t.Fatal("token verified with wrong secret")
	}
}

func TestAccessTokenExpiredAndEmptySecret(t *testing.T) {
	if _, err := NewAccessToken("", "admin", RoleAdmin, time.Minute); err == nil {
		t.Fatal("empty secret accepted")
	}
	tok, err := NewAccessToken("s3cret", "admin", RoleAdmin, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAccessToken("s3cret", tok.Token); err == nil {
		t.Fatal("expired token accepted")
	}
}
