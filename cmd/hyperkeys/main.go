package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"xdao.co/hyperkeys/config"
	"xdao.co/hyperkeys/keys"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// usageError marks failures caused by how the command was invoked (exit 2).
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// errSilent exits 1 without printing; the command already reported.
var errSilent = errors.New("silent failure")

// cli carries global flags and the values derived from them in PersistentPreRunE.
type cli struct {
	out    io.Writer
	errOut io.Writer

	dir        string
	configPath string
	output     string
	encoding   string
	verbose    bool
	noColor    bool

	cfg   config.Config
	log   zerolog.Logger
	store *keys.Store
	p     *printer
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	c := &cli{out: out, errOut: errOut}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errSilent):
		return 1
	case isUsageError(err):
		fmt.Fprintln(errOut, err)
		fmt.Fprintln(errOut, "Run 'hyperkeys help' for usage.")
		return 2
	default:
		fmt.Fprintln(errOut, err)
		return 1
	}
}

func isUsageError(err error) bool {
	var ue usageError
	if errors.As(err, &ue) {
		return true
	}
	// cobra reports unknown subcommands as plain errors.
	return strings.HasPrefix(err.Error(), "unknown command")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "hyperkeys: manage named Ed25519 seeds and key pairs on disk")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  hyperkeys create <name>")
	fmt.Fprintln(w, "  hyperkeys get <name> [<name> ...]")
	fmt.Fprintln(w, "  hyperkeys set <name> [--public <key>] [--secret <key>] [--seed <seed> | --mnemonic <words>]")
	fmt.Fprintln(w, "  hyperkeys exists <name>")
	fmt.Fprintln(w, "  hyperkeys remove <name>")
	fmt.Fprintln(w, "  hyperkeys list")
	fmt.Fprintln(w, "  hyperkeys generate [--seed <seed>]")
	fmt.Fprintln(w, "  hyperkeys export <name> [--mnemonic]")
	fmt.Fprintln(w, "  hyperkeys sign <name> <file>")
	fmt.Fprintln(w, "  hyperkeys verify <signature> <file> (--name <name> | --public-key <key>)")
	fmt.Fprintln(w, "  hyperkeys dir")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - keys live under ~/.hyperkeys unless --dir, HYPERKEYS_DIR or the config file say otherwise")
	fmt.Fprintln(w, "  - <name> is the seed file, <name>.pub the public key, <name>.sec the secret key (raw bytes)")
	fmt.Fprintln(w, "  - key arguments and output use --encoding (hex or base58)")
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hyperkeys",
		Short:         "Manage named Ed25519 seeds and key pairs on disk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.dir, "dir", "", "Store directory (overrides HYPERKEYS_DIR and the config file)")
	pf.StringVar(&c.configPath, "config", "", "Config file (default $HYPERKEYS_CONFIG or ~/.config/hyperkeys/config.yaml)")
	pf.StringVarP(&c.output, "output", "o", "", "Output format: text, json or yaml")
	pf.StringVar(&c.encoding, "encoding", "", "Key encoding: hex or base58")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "Log store operations to stderr")
	pf.BoolVar(&c.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		c.createCommand(),
		c.getCommand(),
		c.setCommand(),
		c.existsCommand(),
		c.removeCommand(),
		c.listCommand(),
		c.generateCommand(),
		c.exportCommand(),
		c.signCommand(),
		c.verifyCommand(),
		c.dirCommand(),
	)
	return root
}

// setup loads configuration and opens the store. Flags override the config
// file, which is overridden by the environment.
func (c *cli) setup() error {
	path, required := c.configPath, true
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
		required = false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	if c.output != "" {
		cfg.Output = c.output
	}
	if c.encoding != "" {
		cfg.Encoding = c.encoding
	}
	if err := cfg.Validate(); err != nil {
		return usageError{msg: err.Error()}
	}
	c.cfg = cfg

	enc, err := keys.ParseEncoding(cfg.Encoding)
	if err != nil {
		return usageError{msg: err.Error()}
	}

	level := zerolog.WarnLevel
	if cfg.LogLevel != "" {
		level, _ = zerolog.ParseLevel(cfg.LogLevel)
	}
	if c.verbose {
		level = zerolog.DebugLevel
	}
	noColor := c.noColor || !isStdout(c.out) || color.NoColor
	c.log = zerolog.New(zerolog.ConsoleWriter{Out: c.errOut, NoColor: noColor}).
		Level(level).
		With().Timestamp().Logger()

	c.store, err = keys.New(cfg.StoreOptions(c.dir, &c.log))
	if err != nil {
		return err
	}
	c.log.Debug().Str("dir", c.store.Dir()).Str("config", path).Msg("opened store")

	c.p = newPrinter(c.out, cfg.Output, enc, noColor)
	return nil
}

func isStdout(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f == os.Stdout
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: hyperkeys %s", usage)
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < n {
			return usagef("usage: hyperkeys %s", usage)
		}
		return nil
	}
}
