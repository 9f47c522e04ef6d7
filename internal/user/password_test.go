package user

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "" || hash == "s3cret" {
		t.Fatalf("unexpected hash: %q", hash)
	}

	if !VerifyPassword("s3cret", hash) {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}
