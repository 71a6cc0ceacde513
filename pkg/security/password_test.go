package security_test

import (
	"strings"
	"testing"

	"github.com/sunkaracharan/roifinal/pkg/config"
	"github.com/sunkaracharan/roifinal/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", config.PasswordConfig{}); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestHashPasswordClampsParams(t *testing.T) {
	hash, err := security.HashPassword("pw", config.PasswordConfig{ArgonMemoryKB: 1, ArgonTime: 0, ArgonParallelism: 0})
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.Contains(hash, "m=8,t=1,p=1") {
		t.Fatalf("expected clamped params in hash, got %s", hash)
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     int
	}{
		{"acceptable", "correct-horse", 0},
		{"short and numeric", "1234", 2},
		{"common", "password1", 1},
		{"contains username", "dana-rocks-99", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := security.CheckPasswordPolicy(tc.password, "dana", "dana@example.com")
			if len(got) != tc.want {
				t.Fatalf("expected %d problems, got %v", tc.want, got)
			}
		})
	}
}
