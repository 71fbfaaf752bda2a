package keys

import (
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"
)

const SignatureSize = ed25519.SignatureSize

// Sign returns the raw Ed25519 signature of message under secretKey.
func Sign(secretKey, message []byte) ([]byte, error) {
	if l := len(secretKey); l != SecretKeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", SecretKeySize, l)
	}
	return ed25519.Sign(ed25519.PrivateKey(secretKey), message), nil
}

// Verify reports whether signature is a valid signature of message by publicKey.
// Malformed keys and signatures verify as false.
func Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != PublicKeySize || len(signature) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}
