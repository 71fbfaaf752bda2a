package keys

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

// Entry is one named entry returned by List.
type Entry struct {
	Name string
	Keys
}

// Listing splits the store into entries that can sign and entries that
// only identify someone else.
type Listing struct {
	// KeyPairs have both a public and a secret key, stored or derived.
	KeyPairs []Entry
	// KnownKeys have only a public key: no secret key and no seed.
	KnownKeys []Entry
}

// List reads every entry in the store directory.
//
// Files are visited in directory order; N, N.pub and N.sec collapse into a
// single entry N reported at its first occurrence. Entries holding a secret
// key without a public key are left out of both lists. A read failure for
// any entry fails the whole listing. A missing store directory lists as empty.
func (s *Store) List() (Listing, error) {
	out := Listing{KeyPairs: []Entry{}, KnownKeys: []Entry{}}

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return Listing{}, err
	}

	seen := make(map[string]struct{}, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := entryName(de.Name())
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		k, err := s.Read(name)
		if err != nil {
			return Listing{}, err
		}
		switch {
		case k.PublicKey != nil && k.SecretKey != nil:
			out.KeyPairs = append(out.KeyPairs, Entry{Name: name, Keys: k})
		case k.PublicKey != nil && k.SecretKey == nil && k.SeedKey == nil:
			out.KnownKeys = append(out.KnownKeys, Entry{Name: name, Keys: k})
		default:
			s.log.Debug().Str("name", name).Msg("skipping entry without a public key")
		}
	}
	return out, nil
}

// entryName strips a .pub or .sec suffix from a file name.
func entryName(file string) string {
	for _, suffix := range []string{publicSuffix, secretSuffix} {
		if strings.HasSuffix(file, suffix) {
			return strings.TrimSuffix(file, suffix)
		}
	}
	return file
}
