package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xdao.co/hyperkeys/keys"
)

func (c *cli) createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Generate and store a new seed",
		Long: `Generate a fresh seed and store it as <dir>/<name>.

Fails if any of <name>, <name>.pub or <name>.sec already exists. Only the
seed file is written; the key pair is derived from it on every read.`,
		Args: exactArgs(1, "create <name>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := c.store.EnsureDirectory(); err != nil {
				return fmt.Errorf("create store directory: %w", err)
			}
			seed, err := c.store.Create(name)
			if err != nil {
				return fmt.Errorf("create key: %w", err)
			}
			kp, err := keys.DeriveKeyPair(seed)
			if err != nil {
				return err
			}
			v, err := c.p.view(name, keys.Keys{PublicKey: kp.PublicKey})
			if err != nil {
				return err
			}
			if c.p.structured() {
				return c.p.emit(v)
			}
			fmt.Fprintf(c.out, "Created key pair: %s\n", orDash(v.PublicKey))
			fmt.Fprintf(c.out, "Fingerprint: %s\n", v.Fingerprint)
			fmt.Fprintf(c.out, "Stored at: %s\n", c.store.Probe(name).SeedKey)
			return nil
		},
	}
}

func (c *cli) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name> [<name> ...]",
		Short: "Print the key material stored under one or more names",
		Long: `Print the public key, secret key and seed stored under each name.

When a seed is stored, missing keys are derived from it and stored keys are
checked against it; a mismatch is reported as an error.`,
		Args: minArgs(1, "get <name> [<name> ...]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := c.store.ReadMany(args...)
			if err != nil {
				return fmt.Errorf("read keys: %w", err)
			}
			views := make([]entryView, 0, len(all))
			for i, k := range all {
				v, err := c.p.view(args[i], k)
				if err != nil {
					return err
				}
				views = append(views, v)
			}
			return c.p.entries(views)
		},
	}
}

func (c *cli) setCommand() *cobra.Command {
	var publicKey, secretKey, seed, mnemonic string
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Store key material under a name, replacing existing files",
		Long: `Write the given keys to <name>.pub, <name>.sec and <name>.

Only the slots given are written; others are left as they are. Nothing is
validated at write time: an inconsistent set is reported by the next get.`,
		Args: exactArgs(1, "set <name> [--public <key>] [--secret <key>] [--seed <seed> | --mnemonic <words>]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if publicKey == "" && secretKey == "" && seed == "" && mnemonic == "" {
				return usagef("set: nothing to store (use --public, --secret, --seed or --mnemonic)")
			}
			if seed != "" && mnemonic != "" {
				return usagef("set: --seed cannot be combined with --mnemonic")
			}

			var k keys.Keys
			var err error
			if publicKey != "" {
				if k.PublicKey, err = keys.Decode(c.p.enc, publicKey); err != nil {
					return usagef("invalid --public: %v", err)
				}
			}
			if secretKey != "" {
				if k.SecretKey, err = keys.Decode(c.p.enc, secretKey); err != nil {
					return usagef("invalid --secret: %v", err)
				}
			}
			if seed != "" {
				if k.SeedKey, err = keys.Decode(c.p.enc, seed); err != nil {
					return usagef("invalid --seed: %v", err)
				}
			}
			if mnemonic != "" {
				if k.SeedKey, err = keys.Decode(keys.EncodingMnemonic, mnemonic); err != nil {
					return usagef("invalid --mnemonic: %v", err)
				}
			}

			if err := c.store.EnsureDirectory(); err != nil {
				return fmt.Errorf("create store directory: %w", err)
			}
			if err := c.store.Write(args[0], k); err != nil {
				return fmt.Errorf("write keys: %w", err)
			}
			if !c.p.structured() {
				fmt.Fprintf(c.out, "Stored %s\n", args[0])
				return nil
			}
			return c.p.paths(c.store.Probe(args[0]))
		},
	}
	f := cmd.Flags()
	f.StringVar(&publicKey, "public", "", "Public key (32 bytes)")
	f.StringVar(&secretKey, "secret", "", "Secret key (64 bytes)")
	f.StringVar(&seed, "seed", "", "Seed (32 bytes)")
	f.StringVar(&mnemonic, "mnemonic", "", "Seed as a 24-word BIP-39 phrase")
	return cmd
}

func (c *cli) existsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>",
		Short: "Show which key files exist for a name",
		Args:  exactArgs(1, "exists <name>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps := c.store.Probe(args[0])
			if err := c.p.paths(ps); err != nil {
				return err
			}
			if !ps.Any() {
				return errSilent
			}
			return nil
		},
	}
}

func (c *cli) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete every key file stored under a name",
		Args:  exactArgs(1, "remove <name>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store.Remove(args[0]); err != nil {
				return fmt.Errorf("remove keys: %w", err)
			}
			return nil
		},
	}
}

func (c *cli) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List key pairs and known public keys",
		Long: `List every name in the store.

Key pairs have a public and a secret key (stored or derived from a seed).
Known keys have only a public key. Names holding only a secret key are not
shown.`,
		Args: exactArgs(0, "list"),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.store.List()
			if err != nil {
				return fmt.Errorf("list keys: %w", err)
			}
			return c.p.listing(l)
		},
	}
}

func (c *cli) generateCommand() *cobra.Command {
	var seed, mnemonic string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a key triad without storing it",
		Args:  exactArgs(0, "generate [--seed <seed> | --mnemonic <words>]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed != "" && mnemonic != "" {
				return usagef("generate: --seed cannot be combined with --mnemonic")
			}
			var s []byte
			var err error
			switch {
			case seed != "":
				if s, err = keys.Decode(c.p.enc, seed); err != nil {
					return usagef("invalid --seed: %v", err)
				}
			case mnemonic != "":
				if s, err = keys.Decode(keys.EncodingMnemonic, mnemonic); err != nil {
					return usagef("invalid --mnemonic: %v", err)
				}
			}
			triad, err := keys.GenerateKeyTriad(s)
			if err != nil {
				if keys.IsKind(err, keys.KindInvalidSeed) {
					return usagef("invalid --seed: %v", err)
				}
				return err
			}
			v, err := c.p.view("", triad)
			if err != nil {
				return err
			}
			return c.p.entries([]entryView{v})
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "Derive from this seed instead of a fresh one")
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "Derive from this 24-word BIP-39 phrase")
	return cmd
}

func (c *cli) exportCommand() *cobra.Command {
	var asMnemonic bool
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Print the seed stored under a name",
		Args:  exactArgs(1, "export <name> [--mnemonic]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := c.store.Read(args[0])
			if err != nil {
				return fmt.Errorf("read keys: %w", err)
			}
			if k.SeedKey == nil {
				return fmt.Errorf("export: no seed stored for %q", args[0])
			}
			enc := c.p.enc
			if asMnemonic {
				enc = keys.EncodingMnemonic
			}
			s, err := keys.Encode(enc, k.SeedKey)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			return c.p.value("seedKey", s)
		},
	}
	cmd.Flags().BoolVar(&asMnemonic, "mnemonic", false, "Print the seed as a 24-word BIP-39 phrase")
	return cmd
}

func (c *cli) signCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sign <name> <file>",
		Short: "Sign a file with the key pair stored under a name",
		Args:  exactArgs(2, "sign <name> <file>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := c.store.Read(args[0])
			if err != nil {
				return fmt.Errorf("read keys: %w", err)
			}
			if k.SecretKey == nil {
				return fmt.Errorf("sign: no secret key or seed stored for %q", args[0])
			}
			msg, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			sig, err := keys.Sign(k.SecretKey, msg)
			if err != nil {
				return fmt.Errorf("sign: %w", err)
			}
			s, err := keys.Encode(c.p.enc, sig)
			if err != nil {
				return err
			}
			return c.p.value("signature", s)
		},
	}
}

func (c *cli) verifyCommand() *cobra.Command {
	var name, publicKey string
	cmd := &cobra.Command{
		Use:   "verify <signature> <file>",
		Short: "Verify a file signature against a stored or given public key",
		Args:  exactArgs(2, "verify <signature> <file> (--name <name> | --public-key <key>)"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (name == "") == (publicKey == "") {
				return usagef("verify: exactly one of --name or --public-key is required")
			}
			var pub []byte
			var err error
			if publicKey != "" {
				if pub, err = keys.Decode(c.p.enc, publicKey); err != nil {
					return usagef("invalid --public-key: %v", err)
				}
			} else {
				k, err := c.store.Read(name)
				if err != nil {
					return fmt.Errorf("read keys: %w", err)
				}
				if k.PublicKey == nil {
					return fmt.Errorf("verify: no public key stored for %q", name)
				}
				pub = k.PublicKey
			}
			sig, err := keys.Decode(c.p.enc, args[0])
			if err != nil {
				return usagef("invalid signature: %v", err)
			}
			msg, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			if !keys.Verify(pub, msg, sig) {
				fmt.Fprintln(c.errOut, "invalid signature")
				return errSilent
			}
			_, _ = fmt.Fprintln(c.out, "OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Verify against the public key stored under this name")
	cmd.Flags().StringVar(&publicKey, "public-key", "", "Verify against this public key")
	return cmd
}

func (c *cli) dirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Print the store directory",
		Args:  exactArgs(0, "dir"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.p.value("dir", c.store.Dir())
		},
	}
}
