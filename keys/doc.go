// Package keys derives Ed25519 key pairs from seeds and keeps them in a
// directory-backed store.
//
// Derivation (GenerateSeed, DeriveKeyPair, GenerateKeyPair, GenerateKeyTriad)
// is pure apart from reading entropy. The same 32-byte seed always yields the
// same key pair, with the secret key in the libsodium seed||public layout.
//
// Store keeps up to three files per name: the seed (N), the public key
// (N.pub) and the secret key (N.sec). This layout is a durable on-disk
// format shared with other hyperkeys implementations:
//
//	~/.hyperkeys/alice      32-byte seed
//	~/.hyperkeys/alice.pub  32-byte public key
//	~/.hyperkeys/alice.sec  64-byte secret key
//
// Reads cross-check stored keys against the seed and report disagreement
// as an error rather than picking one source.
package keys
