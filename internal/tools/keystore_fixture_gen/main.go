// keystore_fixture_gen writes a small, deterministic key store directory
// covering every entry shape, for checking other hyperkeys implementations
// against this one. It prints one line per entry: name, shape, public key
// (hex, "-" when absent) and fingerprint.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"xdao.co/hyperkeys/cidutil"
	"xdao.co/hyperkeys/keys"
)

type fixture struct {
	name  string
	shape string
	keys  keys.Keys
}

func mustTriad(seedByte byte) keys.Keys {
	triad, err := keys.GenerateKeyTriad(bytes.Repeat([]byte{seedByte}, keys.SeedSize))
	if err != nil {
		panic(err)
	}
	return triad
}

func fixtures() []fixture {
	a, b, c, d := mustTriad(0xA1), mustTriad(0xB2), mustTriad(0xC3), mustTriad(0xD4)
	return []fixture{
		{"01-seed", "seed", keys.Keys{SeedKey: a.SeedKey}},
		{"02-triad", "seed+public+secret", b},
		{"03-pair", "public+secret", keys.Keys{PublicKey: c.PublicKey, SecretKey: c.SecretKey}},
		{"04-known", "public", keys.Keys{PublicKey: d.PublicKey}},
		{"05-secret", "secret", keys.Keys{SecretKey: d.SecretKey}},
	}
}

func writeFixtures(dir string, out io.Writer) error {
	s, err := keys.New(keys.Options{Directory: dir})
	if err != nil {
		return err
	}
	if err := s.EnsureDirectory(); err != nil {
		return err
	}
	for _, f := range fixtures() {
		if err := s.Remove(f.name); err != nil {
			return err
		}
		if err := s.Write(f.name, f.keys); err != nil {
			return err
		}
		// Report what a reader sees, including derived keys.
		got, err := s.Read(f.name)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		pub, fp := "-", "-"
		if got.PublicKey != nil {
			pub = fmt.Sprintf("%x", got.PublicKey)
			fp = cidutil.Fingerprint(got.PublicKey)
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", f.name, f.shape, pub, fp)
	}
	return nil
}

func main() {
	fs := flag.NewFlagSet("keystore_fixture_gen", flag.ExitOnError)
	dir := fs.String("dir", filepath.Join("testdata", "keystore"), "Directory to write the fixture store into")
	_ = fs.Parse(os.Args[1:])

	if err := writeFixtures(*dir, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
