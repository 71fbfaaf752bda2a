package keys

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultDirName is the store directory created under the user's home.
const DefaultDirName = ".hyperkeys"

// Store maps names to key material kept as plain files in one directory.
//
// For a name N the seed lives in N, the public key in N.pub and the secret
// key in N.sec, each as raw bytes. Any subset of the three may exist.
// Consistency between them is checked when they are read, never when they
// are written.
//
// The store keeps no in-process state besides its directory, so separate
// processes sharing a directory can race; exclusive creation of the seed in
// Create is the only guard.
type Store struct {
	dir string
	log zerolog.Logger
}

// Options configures New.
//
// The store directory is the first non-empty of Directory, DefaultDirectory
// and DefaultDirectory(). DefaultDirectory is the hook for a process-wide
// default (from configuration or the environment); it is never read from
// package state.
type Options struct {
	Directory        string
	DefaultDirectory string
	Logger           *zerolog.Logger
}

// DefaultDirectory returns <home>/.hyperkeys.
func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, DefaultDirName), nil
}

// New resolves the store directory. It does not create it; see EnsureDirectory.
func New(opts Options) (*Store, error) {
	dir := opts.Directory
	if dir == "" {
		dir = opts.DefaultDirectory
	}
	if dir == "" {
		var err error
		dir, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Store{dir: dir, log: log.With().Str("component", "keystore").Logger()}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// EnsureDirectory creates the store directory if it is missing.
func (s *Store) EnsureDirectory() error {
	return os.MkdirAll(s.dir, 0o700)
}

func (s *Store) path(name string, a Artifact) string {
	return filepath.Join(s.dir, name) + a.Suffix()
}

// Probe reports which artifacts exist for name. An empty name reports none
// and does not touch the filesystem.
func (s *Store) Probe(name string) Paths {
	var p Paths
	if name == "" {
		return p
	}
	for _, a := range Artifacts {
		path := s.path(name, a)
		if _, err := os.Stat(path); err == nil {
			p.set(a, path)
		}
	}
	return p
}

// Create generates a new seed and stores it under name.
//
// It fails with KindArtifactExists if any artifact of name is already
// present, reporting the first of public, secret, seed that exists. Only the
// seed file is written, and it is created exclusively: if another process
// creates it first the *fs.PathError from the open is returned.
func (s *Store) Create(name string) ([]byte, error) {
	if name == "" {
		return nil, errNameRequired()
	}
	existing := s.Probe(name)
	for _, a := range Artifacts {
		if path := existing.Get(a); path != "" {
			return nil, errArtifactExists(a, path)
		}
	}

	seed, err := GenerateSeed()
	if err != nil {
		return nil, err
	}
	path := s.path(name, ArtifactSeed)
	if err := writeArtifact(path, seed, ArtifactSeed.perm(), false); err != nil {
		return nil, err
	}
	s.log.Debug().Str("name", name).Str("path", path).Msg("created seed")
	return seed, nil
}

// Read loads the artifacts present for name.
//
// When a seed is present the derived key pair must match any public or
// secret key stored next to it (checked in that order); a difference fails
// with KindDerivationMismatch. Slots missing on disk are filled from the
// derived pair.
func (s *Store) Read(name string) (Keys, error) {
	paths := s.Probe(name)

	var k Keys
	for _, a := range Artifacts {
		path := paths.Get(a)
		if path == "" {
			continue
		}
		b, err := readArtifact(path)
		if err != nil {
			return Keys{}, err
		}
		k.set(a, b)
	}
	if k.SeedKey == nil {
		return k, nil
	}

	kp, err := DeriveKeyPair(k.SeedKey)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return Keys{}, &Error{Kind: e.Kind, Artifact: ArtifactSeed, Path: paths.SeedKey, Message: e.Message}
		}
		return Keys{}, err
	}

	if k.PublicKey == nil {
		k.PublicKey = kp.PublicKey
	} else if !bytes.Equal(k.PublicKey, kp.PublicKey) {
		return Keys{}, errDerivationMismatch(ArtifactPublic)
	}
	if k.SecretKey == nil {
		k.SecretKey = kp.SecretKey
	} else if !bytes.Equal(k.SecretKey, kp.SecretKey) {
		return Keys{}, errDerivationMismatch(ArtifactSecret)
	}
	return k, nil
}

// ReadMany reads each name in order. The first failure aborts the call.
func (s *Store) ReadMany(names ...string) ([]Keys, error) {
	out := make([]Keys, 0, len(names))
	for _, name := range names {
		k, err := s.Read(name)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// Write stores every non-nil slot of k under name, replacing existing files.
// Nil slots are left untouched on disk. Nothing is validated here.
func (s *Store) Write(name string, k Keys) error {
	if name == "" {
		return errNameRequired()
	}
	for _, a := range Artifacts {
		b := k.Get(a)
		if b == nil {
			continue
		}
		path := s.path(name, a)
		if err := writeArtifact(path, b, a.perm(), true); err != nil {
			return err
		}
		s.log.Debug().Str("name", name).Stringer("artifact", a).Str("path", path).Msg("wrote artifact")
	}
	return nil
}

// Remove deletes whichever artifacts exist for name. Missing files are not
// an error.
func (s *Store) Remove(name string) error {
	paths := s.Probe(name)
	for _, a := range Artifacts {
		path := paths.Get(a)
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		s.log.Debug().Str("name", name).Stringer("artifact", a).Str("path", path).Msg("removed artifact")
	}
	return nil
}

func (a Artifact) perm() os.FileMode {
	if a == ArtifactPublic {
		return 0o644
	}
	return 0o600
}

func writeArtifact(path string, data []byte, perm os.FileMode, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		if !overwrite {
			_ = os.Remove(path)
		}
		return err
	}
	if err := file.Close(); err != nil {
		if !overwrite {
			_ = os.Remove(path)
		}
		return err
	}
	return nil
}

func readArtifact(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}
