package keys

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Options{Directory: t.TempDir()})
	require.NoError(t, err)
	return s
}

func randomName(t *testing.T) string {
	t.Helper()
	seed, err := GenerateSeed()
	require.NoError(t, err)
	return hex.EncodeToString(seed)
}

func fileExists(s *Store, file string) bool {
	_, err := os.Stat(filepath.Join(s.Dir(), file))
	return err == nil
}

func TestNewResolvesDirectory(t *testing.T) {
	home, err := DefaultDirectory()
	require.NoError(t, err)

	s, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, home, s.Dir())
	assert.Equal(t, DefaultDirName, filepath.Base(s.Dir()))

	s, err = New(Options{DefaultDirectory: "/tmp/process-default"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/process-default", s.Dir())

	s, err = New(Options{Directory: "/tmp/explicit", DefaultDirectory: "/tmp/process-default"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit", s.Dir())
}

func TestNewDoesNotCreateDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")
	s, err := New(Options{Directory: dir})
	require.NoError(t, err)

	_, err = os.Stat(dir)
	require.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, s.EnsureDirectory())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateAndRead(t *testing.T) {
	s := newTestStore(t)
	name := "alice"

	assert.False(t, fileExists(s, name))
	seed, err := s.Create(name)
	require.NoError(t, err)
	require.Len(t, seed, SeedSize)
	assert.True(t, fileExists(s, name))
	assert.False(t, fileExists(s, name+".pub"), "create writes only the seed")
	assert.False(t, fileExists(s, name+".sec"), "create writes only the seed")

	onDisk, err := os.ReadFile(filepath.Join(s.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, seed, onDisk, "seed is stored as raw bytes")

	got, err := s.Read(name)
	require.NoError(t, err)
	require.Len(t, got.PublicKey, PublicKeySize)
	require.Len(t, got.SecretKey, SecretKeySize)
	require.Len(t, got.SeedKey, SeedSize)
	assert.Equal(t, seed, got.SeedKey)

	kp, err := DeriveKeyPair(seed)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, got.PublicKey)
	assert.Equal(t, kp.SecretKey, got.SecretKey)

	require.NoError(t, s.Remove(name))
	assert.False(t, fileExists(s, name))
}

func TestCreateWithoutName(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNameRequired))
	assert.Equal(t, "name is required", err.Error())
}

func TestCreateTwiceFails(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)

	_, err := s.Create(name)
	require.NoError(t, err)

	_, err = s.Create(name)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindArtifactExists))
	a, ok := ArtifactOf(err)
	require.True(t, ok)
	assert.Equal(t, ArtifactSeed, a)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, filepath.Join(s.Dir(), name), e.Path)
}

func TestCreateConflictPerArtifact(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)
	triad, err := GenerateKeyTriad(nil)
	require.NoError(t, err)

	cases := []struct {
		keys   Keys
		want   Artifact
		prefix string
	}{
		{Keys{PublicKey: triad.PublicKey}, ArtifactPublic, "the public key already exists"},
		{Keys{SecretKey: triad.SecretKey}, ArtifactSecret, "the secret key already exists"},
		{Keys{SeedKey: triad.SeedKey}, ArtifactSeed, "the seed key already exists"},
	}
	for _, tc := range cases {
		require.NoError(t, s.Write(name, tc.keys))

		_, err := s.Create(name)
		require.Error(t, err)
		a, ok := ArtifactOf(err)
		require.True(t, ok)
		assert.Equal(t, tc.want, a)
		assert.Contains(t, err.Error(), tc.prefix)

		require.NoError(t, s.Remove(name))
	}
}

func TestCreateReportsPublicConflictFirst(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)
	triad, err := GenerateKeyTriad(nil)
	require.NoError(t, err)
	require.NoError(t, s.Write(name, triad))

	_, err = s.Create(name)
	a, ok := ArtifactOf(err)
	require.True(t, ok)
	assert.Equal(t, ArtifactPublic, a)

	require.NoError(t, os.Remove(filepath.Join(s.Dir(), name+".pub")))
	_, err = s.Create(name)
	a, ok = ArtifactOf(err)
	require.True(t, ok)
	assert.Equal(t, ArtifactSecret, a)

	// Nothing was overwritten by the failed attempts.
	got, err := s.Read(name)
	require.NoError(t, err)
	assert.Equal(t, triad.SeedKey, got.SeedKey)
}

func TestCreateLosesExclusiveRace(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Dir(), "raced")
	require.NoError(t, os.WriteFile(path, []byte("other"), 0o600))

	err := writeArtifact(path, []byte("mine"), 0o600, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrExist))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "other", string(b))
}

func TestWriteWithoutName(t *testing.T) {
	s := newTestStore(t)
	seed, err := GenerateSeed()
	require.NoError(t, err)

	err = s.Write("", Keys{SeedKey: seed})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNameRequired))
}

func TestWritePublicKeyOnly(t *testing.T) {
	s := newTestStore(t)
	name := "bob"
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	require.NoError(t, s.Write(name, Keys{PublicKey: kp.PublicKey}))
	got, err := s.Read(name)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, got.PublicKey)
	assert.Nil(t, got.SecretKey)
	assert.Nil(t, got.SeedKey)
	assert.False(t, got.Has(ArtifactSecret))
	assert.False(t, got.Has(ArtifactSeed))
}

func TestWriteSecretKeyOnly(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	require.NoError(t, s.Write(name, Keys{SecretKey: kp.SecretKey}))
	got, err := s.Read(name)
	require.NoError(t, err)
	assert.Nil(t, got.PublicKey)
	assert.Equal(t, kp.SecretKey, got.SecretKey)
	assert.Nil(t, got.SeedKey)
}

func TestWriteSeedOnly(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)
	triad, err := GenerateKeyTriad(nil)
	require.NoError(t, err)

	require.NoError(t, s.Write(name, Keys{SeedKey: triad.SeedKey}))
	got, err := s.Read(name)
	require.NoError(t, err)
	assert.Equal(t, triad, got)
}

func TestWriteOverwritesAndLeavesOtherSlots(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)
	first, err := GenerateKeyPair()
	require.NoError(t, err)
	second, err := GenerateKeyPair()
	require.NoError(t, err)

	require.NoError(t, s.Write(name, Keys{PublicKey: first.PublicKey, SecretKey: first.SecretKey}))
	require.NoError(t, s.Write(name, Keys{PublicKey: second.PublicKey}))

	got, err := s.Read(name)
	require.NoError(t, err)
	assert.Equal(t, second.PublicKey, got.PublicKey)
	assert.Equal(t, first.SecretKey, got.SecretKey, "secret key is left untouched")
}

func TestWriteEmptySlotIsPresent(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)

	require.NoError(t, s.Write(name, Keys{PublicKey: []byte{}}))
	got, err := s.Read(name)
	require.NoError(t, err)
	assert.NotNil(t, got.PublicKey)
	assert.Len(t, got.PublicKey, 0)
	assert.True(t, got.Has(ArtifactPublic))
}

func TestWritePermissions(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)
	triad, err := GenerateKeyTriad(nil)
	require.NoError(t, err)
	require.NoError(t, s.Write(name, triad))

	for file, want := range map[string]os.FileMode{
		name:          0o600,
		name + ".sec": 0o600,
	} {
		info, err := os.Stat(filepath.Join(s.Dir(), file))
		require.NoError(t, err)
		assert.Zero(t, info.Mode().Perm()&^want, "%s is readable beyond %o", file, want)
	}
}

func TestReadMismatch(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)
	other, err := GenerateKeyPair()
	require.NoError(t, err)

	_, err = s.Create(name)
	require.NoError(t, err)
	_, err = s.Read(name)
	require.NoError(t, err)

	// Another program replaced the secret key with one unrelated to the seed.
	require.NoError(t, s.Write(name, Keys{SecretKey: other.SecretKey}))
	_, err = s.Read(name)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDerivationMismatch))
	a, ok := ArtifactOf(err)
	require.True(t, ok)
	assert.Equal(t, ArtifactSecret, a)
	assert.Equal(t, "secretKey from seed derivation is different", err.Error())

	// The public key is checked first.
	require.NoError(t, s.Write(name, Keys{PublicKey: other.PublicKey}))
	_, err = s.Read(name)
	a, ok = ArtifactOf(err)
	require.True(t, ok)
	assert.Equal(t, ArtifactPublic, a)
	assert.Equal(t, "publicKey from seed derivation is different", err.Error())
}

func TestReadConsistentTriad(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)
	triad, err := GenerateKeyTriad(nil)
	require.NoError(t, err)
	require.NoError(t, s.Write(name, triad))

	got, err := s.Read(name)
	require.NoError(t, err)
	assert.Equal(t, triad, got)
}

func TestReadInvalidSeedLength(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)
	require.NoError(t, s.Write(name, Keys{SeedKey: []byte("too short")}))

	_, err := s.Read(name)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidSeed))
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, ArtifactSeed, e.Artifact)
	assert.Equal(t, filepath.Join(s.Dir(), name), e.Path)
}

func TestReadMissing(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Read(randomName(t))
	require.NoError(t, err)
	assert.Equal(t, Keys{}, got)

	got, err = s.Read("")
	require.NoError(t, err)
	assert.Equal(t, Keys{}, got)
}

func TestReadMany(t *testing.T) {
	s := newTestStore(t)
	name1 := randomName(t)
	name2 := randomName(t)

	seed1, err := s.Create(name1)
	require.NoError(t, err)
	seed2, err := s.Create(name2)
	require.NoError(t, err)

	all, err := s.ReadMany(name1, name2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, seed1, all[0].SeedKey)
	assert.Equal(t, seed2, all[1].SeedKey)
	for _, k := range all {
		for _, a := range Artifacts {
			assert.True(t, k.Has(a), "%s missing", a)
		}
	}

	other, err := GenerateKeyPair()
	require.NoError(t, err)
	require.NoError(t, s.Write(name2, Keys{PublicKey: other.PublicKey}))
	all, err = s.ReadMany(name1, name2)
	require.Error(t, err)
	assert.Nil(t, all, "no partial results")
}

func TestProbe(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)
	triad, err := GenerateKeyTriad(nil)
	require.NoError(t, err)

	assert.Equal(t, Paths{}, s.Probe(name))
	assert.False(t, s.Probe(name).Any())

	require.NoError(t, s.Write(name, triad))
	p := s.Probe(name)
	assert.Equal(t, filepath.Join(s.Dir(), name+".pub"), p.PublicKey)
	assert.Equal(t, filepath.Join(s.Dir(), name+".sec"), p.SecretKey)
	assert.Equal(t, filepath.Join(s.Dir(), name), p.SeedKey)
	assert.True(t, p.Any())
}

func TestProbeWithoutName(t *testing.T) {
	// The directory does not exist: an empty name must not reach the filesystem.
	s, err := New(Options{Directory: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)
	assert.Equal(t, Paths{}, s.Probe(""))
}

func TestRemovePerArtifact(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)
	triad, err := GenerateKeyTriad(nil)
	require.NoError(t, err)

	for _, a := range Artifacts {
		var k Keys
		k.set(a, triad.Get(a))
		require.NoError(t, s.Write(name, k))
		assert.True(t, fileExists(s, name+a.Suffix()))
		require.NoError(t, s.Remove(name))
		assert.False(t, fileExists(s, name+a.Suffix()))
	}
}

func TestRemoveNonExistent(t *testing.T) {
	s := newTestStore(t)
	name := randomName(t)

	before, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.NoError(t, s.Remove(name))
	require.NoError(t, s.Remove(name))
	require.NoError(t, s.Remove(""))
	after, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
}

func TestRemoveLeavesOtherNames(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("keep")
	require.NoError(t, err)
	_, err = s.Create("drop")
	require.NoError(t, err)

	require.NoError(t, s.Remove("drop"))
	assert.True(t, fileExists(s, "keep"))
	assert.Len(t, mustRead(t, s, "keep").SeedKey, SeedSize)
}

func mustRead(t *testing.T, s *Store, name string) Keys {
	t.Helper()
	k, err := s.Read(name)
	require.NoError(t, err)
	return k
}
