package keys

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"
)

// Encoding is a text form for key material.
type Encoding string

const (
	EncodingHex    Encoding = "hex"
	EncodingBase58 Encoding = "base58"
	// EncodingMnemonic is the BIP-39 word list form. It only applies to seeds.
	EncodingMnemonic Encoding = "mnemonic"
)

// ParseEncoding maps a user-supplied name to an Encoding. Empty means hex.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(s))) {
	case "", EncodingHex:
		return EncodingHex, nil
	case EncodingBase58:
		return EncodingBase58, nil
	case EncodingMnemonic:
		return EncodingMnemonic, nil
	default:
		return "", newError(KindEncoding, fmt.Sprintf("unsupported encoding %q", s))
	}
}

// Encode renders b in the given encoding.
func Encode(enc Encoding, b []byte) (string, error) {
	switch enc {
	case "", EncodingHex:
		return hex.EncodeToString(b), nil
	case EncodingBase58:
		return base58.Encode(b), nil
	case EncodingMnemonic:
		if len(b) != SeedSize {
			return "", newError(KindEncoding, fmt.Sprintf("mnemonic encoding needs a %d byte seed, got %d", SeedSize, len(b)))
		}
		m, err := bip39.NewMnemonic(b)
		if err != nil {
			return "", wrapError(KindEncoding, "encode mnemonic", err)
		}
		return m, nil
	default:
		return "", newError(KindEncoding, fmt.Sprintf("unsupported encoding %q", enc))
	}
}

// Decode parses s in the given encoding.
//
// Hex input may carry surrounding whitespace and a 0x prefix. Mnemonics must
// pass the BIP-39 checksum and decode to a SeedSize seed.
func Decode(enc Encoding, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	switch enc {
	case "", EncodingHex:
		b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return nil, wrapError(KindEncoding, "invalid hex", err)
		}
		return b, nil
	case EncodingBase58:
		b, err := base58.Decode(s)
		if err != nil {
			return nil, wrapError(KindEncoding, "invalid base58", err)
		}
		return b, nil
	case EncodingMnemonic:
		m := strings.Join(strings.Fields(s), " ")
		if !bip39.IsMnemonicValid(m) {
			return nil, newError(KindEncoding, "invalid mnemonic")
		}
		b, err := bip39.EntropyFromMnemonic(m)
		if err != nil {
			return nil, wrapError(KindEncoding, "invalid mnemonic", err)
		}
		if len(b) != SeedSize {
			return nil, newError(KindEncoding, fmt.Sprintf("mnemonic decodes to %d bytes, expected %d", len(b), SeedSize))
		}
		return b, nil
	default:
		return nil, newError(KindEncoding, fmt.Sprintf("unsupported encoding %q", enc))
	}
}
