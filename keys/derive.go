package keys

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/ed25519"
)

const (
	SeedSize      = ed25519.SeedSize
	PublicKeySize = ed25519.PublicKeySize
	SecretKeySize = ed25519.PrivateKeySize
)

// KeyPair is an Ed25519 signing key pair.
//
// SecretKey uses the libsodium layout: the 32-byte seed followed by the
// 32-byte public key.
type KeyPair struct {
	PublicKey []byte
	SecretKey []byte
}

// GenerateSeed returns SeedSize bytes from the system CSPRNG.
func GenerateSeed() ([]byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, fmt.Errorf("read entropy: %w", err)
	}
	return seed, nil
}

// DeriveKeyPair deterministically derives the Ed25519 key pair for seed.
func DeriveKeyPair(seed []byte) (KeyPair, error) {
	if l := len(seed); l != SeedSize {
		return KeyPair{}, newError(KindInvalidSeed, fmt.Sprintf("expected seed length of %d bytes, got %d", SeedSize, l))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return KeyPair{
		PublicKey: append([]byte(nil), pub...),
		SecretKey: append([]byte(nil), priv...),
	}, nil
}

// GenerateKeyPair returns a fresh random key pair. The seed is not retained.
func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate key pair: %w", err)
	}
	return KeyPair{
		PublicKey: append([]byte(nil), pub...),
		SecretKey: append([]byte(nil), priv...),
	}, nil
}

// GenerateKeyTriad derives a key pair from seed and returns it with the seed.
// A nil seed is replaced by a freshly generated one.
func GenerateKeyTriad(seed []byte) (Keys, error) {
	if seed == nil {
		var err error
		seed, err = GenerateSeed()
		if err != nil {
			return Keys{}, err
		}
	}
	kp, err := DeriveKeyPair(seed)
	if err != nil {
		return Keys{}, err
	}
	return Keys{
		PublicKey: kp.PublicKey,
		SecretKey: kp.SecretKey,
		SeedKey:   append([]byte(nil), seed...),
	}, nil
}
