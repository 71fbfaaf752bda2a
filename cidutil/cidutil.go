// Package cidutil derives content identifiers for public keys.
//
// The CID of a public key is its printable fingerprint: stable across
// encodings and short enough to compare by eye.
package cidutil

import (
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// KeyCID returns a CIDv1 using the "raw" multicodec and a sha2-256
// multihash of publicKey.
func KeyCID(publicKey []byte) (cid.Cid, error) {
	if len(publicKey) == 0 {
		return cid.Undef, errors.New("cidutil: empty public key")
	}
	sum, err := multihash.Sum(publicKey, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Fingerprint is the string form of KeyCID, or "" when publicKey is empty.
func Fingerprint(publicKey []byte) string {
	id, err := KeyCID(publicKey)
	if err != nil {
		return ""
	}
	return id.String()
}
