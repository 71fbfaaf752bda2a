package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"xdao.co/hyperkeys/cidutil"
	"xdao.co/hyperkeys/config"
	"xdao.co/hyperkeys/keys"
)

// printer renders results as text, JSON or YAML.
type printer struct {
	out    io.Writer
	format string
	enc    keys.Encoding

	header *color.Color
	pair   *color.Color
	known  *color.Color
	faint  *color.Color
}

func newPrinter(out io.Writer, format string, enc keys.Encoding, noColor bool) *printer {
	if format == "" {
		format = config.OutputText
	}
	p := &printer{
		out:    out,
		format: format,
		enc:    enc,
		header: color.New(color.Bold),
		pair:   color.New(color.FgGreen),
		known:  color.New(color.FgCyan),
		faint:  color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.header, p.pair, p.known, p.faint} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) structured() bool { return p.format != config.OutputText }

func (p *printer) emit(v any) error {
	switch p.format {
	case config.OutputJSON:
		e := json.NewEncoder(p.out)
		e.SetIndent("", "  ")
		return e.Encode(v)
	case config.OutputYAML:
		e := yaml.NewEncoder(p.out)
		e.SetIndent(2)
		if err := e.Encode(v); err != nil {
			return err
		}
		return e.Close()
	default:
		return fmt.Errorf("unsupported output format %q", p.format)
	}
}

// encode renders b, or nil for an absent slot.
func (p *printer) encode(b []byte) (*string, error) {
	if b == nil {
		return nil, nil
	}
	s, err := keys.Encode(p.enc, b)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// entryView is the structured form of one named entry. Absent slots are null.
type entryView struct {
	Name         string  `json:"name,omitempty" yaml:"name,omitempty"`
	PublicKey    *string `json:"publicKey" yaml:"publicKey"`
	SecretKey    *string `json:"secretKey" yaml:"secretKey"`
	SeedKey      *string `json:"seedKey" yaml:"seedKey"`
	Fingerprint  string  `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	DiscoveryKey string  `json:"discoveryKey,omitempty" yaml:"discoveryKey,omitempty"`
}

func (p *printer) view(name string, k keys.Keys) (entryView, error) {
	v := entryView{Name: name}
	var err error
	if v.PublicKey, err = p.encode(k.PublicKey); err != nil {
		return v, err
	}
	if v.SecretKey, err = p.encode(k.SecretKey); err != nil {
		return v, err
	}
	if v.SeedKey, err = p.encode(k.SeedKey); err != nil {
		return v, err
	}
	if len(k.PublicKey) == keys.PublicKeySize {
		v.Fingerprint = cidutil.Fingerprint(k.PublicKey)
		if dk, derr := keys.DiscoveryKey(k.PublicKey); derr == nil {
			v.DiscoveryKey, _ = keys.Encode(p.enc, dk)
		}
	}
	return v, nil
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func (p *printer) entries(views []entryView) error {
	if p.structured() {
		if len(views) == 1 {
			return p.emit(views[0])
		}
		return p.emit(views)
	}
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(p.out)
		}
		if v.Name != "" {
			fmt.Fprintln(p.out, p.header.Sprint(v.Name))
		}
		tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  public key:\t%s\n", orDash(v.PublicKey))
		fmt.Fprintf(tw, "  secret key:\t%s\n", orDash(v.SecretKey))
		fmt.Fprintf(tw, "  seed:\t%s\n", orDash(v.SeedKey))
		if v.Fingerprint != "" {
			fmt.Fprintf(tw, "  fingerprint:\t%s\n", p.faint.Sprint(v.Fingerprint))
			fmt.Fprintf(tw, "  discovery key:\t%s\n", p.faint.Sprint(v.DiscoveryKey))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// listView omits secret material: a listing only says what is stored.
type listView struct {
	KeyPairs  []listEntry `json:"keyPairs" yaml:"keyPairs"`
	KnownKeys []listEntry `json:"knownKeys" yaml:"knownKeys"`
}

type listEntry struct {
	Name        string `json:"name" yaml:"name"`
	PublicKey   string `json:"publicKey" yaml:"publicKey"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	HasSeed     bool   `json:"hasSeed" yaml:"hasSeed"`
}

func (p *printer) listEntries(es []keys.Entry) ([]listEntry, error) {
	out := make([]listEntry, 0, len(es))
	for _, e := range es {
		pub, err := keys.Encode(p.enc, e.PublicKey)
		if err != nil {
			return nil, err
		}
		out = append(out, listEntry{
			Name:        e.Name,
			PublicKey:   pub,
			Fingerprint: cidutil.Fingerprint(e.PublicKey),
			HasSeed:     e.SeedKey != nil,
		})
	}
	return out, nil
}

func (p *printer) listing(l keys.Listing) error {
	var v listView
	var err error
	if v.KeyPairs, err = p.listEntries(l.KeyPairs); err != nil {
		return err
	}
	if v.KnownKeys, err = p.listEntries(l.KnownKeys); err != nil {
		return err
	}
	if p.structured() {
		return p.emit(v)
	}

	section := func(title string, c *color.Color, es []listEntry) error {
		fmt.Fprintf(p.out, "%s (%d)\n", p.header.Sprint(title), len(es))
		tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
		for _, e := range es {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.Sprint(e.Name), e.PublicKey, p.faint.Sprint(e.Fingerprint))
		}
		return tw.Flush()
	}
	if err := section("Key pairs", p.pair, v.KeyPairs); err != nil {
		return err
	}
	return section("Known keys", p.known, v.KnownKeys)
}

// paths prints the result of a probe.
func (p *printer) paths(ps keys.Paths) error {
	type pathsView struct {
		PublicKey *string `json:"publicKey" yaml:"publicKey"`
		SecretKey *string `json:"secretKey" yaml:"secretKey"`
		SeedKey   *string `json:"seedKey" yaml:"seedKey"`
	}
	opt := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	v := pathsView{PublicKey: opt(ps.PublicKey), SecretKey: opt(ps.SecretKey), SeedKey: opt(ps.SeedKey)}
	if p.structured() {
		return p.emit(v)
	}
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "public key:\t%s\n", orDash(v.PublicKey))
	fmt.Fprintf(tw, "secret key:\t%s\n", orDash(v.SecretKey))
	fmt.Fprintf(tw, "seed:\t%s\n", orDash(v.SeedKey))
	return tw.Flush()
}

// value prints a single encoded value under key.
func (p *printer) value(key, s string) error {
	if p.structured() {
		return p.emit(map[string]string{key: s})
	}
	_, err := fmt.Fprintln(p.out, s)
	return err
}
