package keys

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
)

var discoveryNamespace = []byte("hypercore")

// DiscoveryKey returns the keyed BLAKE2b-256 hash of "hypercore" under
// publicKey. Peers announce and look up this value instead of the public key.
func DiscoveryKey(publicKey []byte) ([]byte, error) {
	if l := len(publicKey); l != PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", PublicKeySize, l)
	}
	h, err := blake2b.New256(publicKey)
	if err != nil {
		return nil, err
	}
	_, _ = h.Write(discoveryNamespace)
	return h.Sum(nil), nil
}
