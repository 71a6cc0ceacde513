package security_test

import (
	"testing"

	"github.com/sunkaracharan/roifinal/pkg/security"
)

func TestVerifyHMACSHA256(t *testing.T) {
	payload := []byte(`{"event":"payment.captured"}`)
	sig := security.SignHMACSHA256("whsec", payload)

	if !security.VerifyHMACSHA256("whsec", payload, sig) {
		t.Fatal("expected signature to verify")
	}
	if security.VerifyHMACSHA256("other", payload, sig) {
		t.Fatal("expected mismatch for a different secret")
	}
	if security.VerifyHMACSHA256("whsec", payload, "zz-not-hex") {
		t.Fatal("expected malformed signature to fail")
	}
	if security.VerifyHMACSHA256("", payload, sig) {
		t.Fatal("expected empty secret to fail")
	}
}
