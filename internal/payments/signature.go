package payments

import (
	"strings"

	"github.com/sunkaracharan/roifinal/pkg/security"
)

// SignatureVerifier checks the signature the gateway returns with a
// successful checkout.
type SignatureVerifier interface {
	Verify(orderID, gatewayPaymentID, signature string) bool
}

// NewSignatureVerifier returns an HMAC verifier when secret is set and the
// demo verifier otherwise.
func NewSignatureVerifier(secret string) SignatureVerifier {
	if strings.TrimSpace(secret) == "" {
		return demoVerifier{}
	}
	return hmacVerifier{secret: secret}
}

type demoVerifier struct{}

func (demoVerifier) Verify(_, _, signature string) bool {
	return strings.TrimSpace(signature) != ""
}

// hmacVerifier expects hex HMAC-SHA256 over "order_id|payment_id".
type hmacVerifier struct {
	secret string
}

func (v hmacVerifier) Verify(orderID, gatewayPaymentID, signature string) bool {
	return security.VerifyHMACSHA256(v.secret, []byte(orderID+"|"+gatewayPaymentID), signature)
}
