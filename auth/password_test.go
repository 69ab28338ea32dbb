package auth

import "testing"

func TestHashPasswordProducesDistinctDigests(t *testing.T) {
	first, err := HashPassword("Abcd1234")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("Abcd1234")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatal("expected salted digests to differ for identical plaintexts")
	}
}

func TestCheckPassword(t *testing.T) {
	digest, err := HashPassword("Abcd1234")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !CheckPassword("Abcd1234", digest) {
		t.Fatal("expected correct password to verify")
	}
	if CheckPassword("Abcd1235", digest) {
		t.Fatal("expected wrong password to fail verification")
	}
	if CheckPassword("Abcd1234", "not-a-digest") {
		t.Fatal("expected malformed digest to fail verification")
	}
}

func TestValidateNewPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Abcd1234", false},
		{"too short", "short1", true},
		{"no uppercase", "abcd1234", true},
		{"no digit", "Abcdefgh", true},
		{"short with upper and digit", "Ab1", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewPassword(tt.password)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for %q", tt.password)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.password, err)
			}
		})
	}
}
