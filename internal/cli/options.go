// Package cli handles command-line interface concerns: subcommand
// dispatch, per-command flag parsing, and process signal handling.
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Command identifies which subcommand was invoked on the command line.
type Command int

const (
	CommandNone Command = iota
	CommandBuild
	CommandBundle
	CommandKeygen
	CommandSign
	CommandVerify
	CommandPublish
)

func (c Command) String() string {
	switch c {
	case CommandBuild:
		return "build"
	case CommandBundle:
		return "bundle"
	case CommandKeygen:
		return "keygen"
	case CommandSign:
		return "sign"
	case CommandVerify:
		return "verify"
	case CommandPublish:
		return "publish"
	default:
		return ""
	}
}

// GlobalOptions are flags accepted regardless of which subcommand runs.
type GlobalOptions struct {
	Quiet   bool // -q: results + errors only
	Verbose bool // -v: + detail
	Debug   bool // -vv: + debug
	JSON    bool // --json: suppress spinners and progress bars
	NoColor bool
	Version bool
	Help    bool
}

// BuildOptions configures the `build` subcommand.
type BuildOptions struct {
	ManifestDir string
	Target      string
	Profile     string
	Executor    string // "cargo" | "cross" | "zigbuild"
	CrossImage  string
}

// BundleOptions configures the `bundle` subcommand.
type BundleOptions struct {
	ManifestDir string
	Target      string
	OutputDir   string
	Profile     string
}

// SignOptions configures the `sign` subcommand.
type SignOptions struct {
	File string
	Out  string
}

// VerifyOptions configures the `verify` subcommand.
type VerifyOptions struct {
	File          string
	Signature     string
	PublicKey     string
	PublicKeyFile string
}

// PublishOptions configures the `publish` subcommand.
type PublishOptions struct {
	Manifest   string
	Repository string
	AssetsDir  string
	Assets     []string
	OutDir     string
}

// stringSliceFlag implements flag.Value to accumulate repeated flags.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Options holds the fully parsed command line: which subcommand was
// invoked, its flags, and the global flags common to every subcommand.
type Options struct {
	Global  GlobalOptions
	Command Command

	Build   BuildOptions
	Bundle  BundleOptions
	Sign    SignOptions
	Verify  VerifyOptions
	Publish PublishOptions

	Args []string
}

// ParseCommand parses os.Args into Options: the first positional
// argument selects the subcommand, remaining arguments are parsed
// against that subcommand's flag set. Global verbosity/color flags are
// accepted before or after the subcommand name.
func ParseCommand() *Options {
	opts := &Options{}

	args := os.Args[1:]
	global, rest := extractGlobalFlags(args)
	opts.Global = global

	if len(rest) == 0 {
		return opts
	}

	switch rest[0] {
	case "build":
		opts.Command = CommandBuild
		opts.parseBuild(rest[1:])
	case "bundle":
		opts.Command = CommandBundle
		opts.parseBundle(rest[1:])
	case "keygen":
		opts.Command = CommandKeygen
	case "sign":
		opts.Command = CommandSign
		opts.parseSign(rest[1:])
	case "verify":
		opts.Command = CommandVerify
		opts.parseVerify(rest[1:])
	case "publish":
		opts.Command = CommandPublish
		opts.parsePublish(rest[1:])
	case "-h", "--help", "help":
		opts.Global.Help = true
	case "-v", "--version":
		opts.Global.Version = true
	default:
		opts.Command = CommandNone
		opts.Args = rest
	}

	return opts
}

// extractGlobalFlags pulls -q/-v/-vv/--json/--no-color/--version out of
// args wherever they appear, returning the remaining arguments
// (subcommand name plus its flags) untouched. -h/--help are recorded
// but also left in the remaining arguments.
func extractGlobalFlags(args []string) (GlobalOptions, []string) {
	var g GlobalOptions
	var rest []string

	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		g.NoColor = false
	} else if _, ok := os.LookupEnv("NO_COLOR"); ok {
		g.NoColor = true
	}

	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			g.Quiet = true
		case "-v", "--verbose":
			g.Verbose = true
		case "-vv", "--debug":
			g.Debug = true
		case "--json":
			g.JSON = true
		case "--no-color":
			g.NoColor = true
		case "-h", "--help":
			g.Help = true
			rest = append(rest, arg)
		case "--version":
			g.Version = true
		default:
			rest = append(rest, arg)
		}
	}
	return g, rest
}

func (o *Options) parseBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	fs.StringVar(&o.Build.ManifestDir, "manifest-dir", ".", "directory containing Cargo.toml / Cargo.lock")
	fs.StringVar(&o.Build.Target, "target", "", "single compilation target triple (default: every configured target)")
	fs.StringVar(&o.Build.Profile, "profile", "", "build profile name (e.g. release)")
	fs.StringVar(&o.Build.Executor, "executor", "cargo", "build backend: cargo | cross | zigbuild")
	fs.StringVar(&o.Build.CrossImage, "cross-image", "", "docker image to use with --executor cross")
	parseOrHelp(fs, args, o)
	o.Args = fs.Args()
}

func (o *Options) parseBundle(args []string) {
	fs := flag.NewFlagSet("bundle", flag.ExitOnError)
	fs.StringVar(&o.Bundle.ManifestDir, "manifest-dir", ".", "directory containing Cargo.toml / Cargo.lock")
	fs.StringVar(&o.Bundle.Target, "target", "", "single compilation target triple (default: every configured target)")
	fs.StringVar(&o.Bundle.OutputDir, "output-dir", "dist", "directory archives and the manifest are written to")
	fs.StringVar(&o.Bundle.Profile, "profile", "", "build profile name (e.g. release)")
	parseOrHelp(fs, args, o)
	o.Args = fs.Args()
}

func (o *Options) parseSign(args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	fs.StringVar(&o.Sign.File, "file", "", "manifest file to sign")
	fs.StringVar(&o.Sign.Out, "out", "", "output directory (default: manifest's own directory)")
	parseOrHelp(fs, args, o)
	o.Args = fs.Args()
}

func (o *Options) parseVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	fs.StringVar(&o.Verify.File, "file", "", "manifest file to verify")
	fs.StringVar(&o.Verify.Signature, "signature", "", "detached signature file")
	fs.StringVar(&o.Verify.PublicKey, "public-key", "", "hex-encoded 32-byte public key")
	fs.StringVar(&o.Verify.PublicKeyFile, "public-key-file", "", "file containing the hex-encoded public key")
	parseOrHelp(fs, args, o)
	o.Args = fs.Args()
}

func (o *Options) parsePublish(args []string) {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	var assets stringSliceFlag
	fs.StringVar(&o.Publish.Manifest, "manifest", "", "signed manifest file to publish")
	fs.StringVar(&o.Publish.Repository, "repository", "", "owner/repo slug on the release backend")
	fs.StringVar(&o.Publish.AssetsDir, "assets-dir", "", "directory of assets to upload alongside the manifest")
	fs.Var(&assets, "asset", "explicit asset file to upload (repeatable)")
	fs.StringVar(&o.Publish.OutDir, "out-dir", "", "local backend output directory (omit to use the remote backend)")
	parseOrHelp(fs, args, o)
	o.Publish.Assets = assets
	o.Args = fs.Args()
}

// parseOrHelp parses fs against args, treating -h/--help specially so a
// subcommand's own --help still reports through the shared help package
// rather than flag's default usage text.
func parseOrHelp(fs *flag.FlagSet, args []string, o *Options) {
	fs.Usage = func() {}
	var flagArgs []string
	for _, a := range args {
		if a == "-h" || a == "--help" {
			o.Global.Help = true
			continue
		}
		flagArgs = append(flagArgs, a)
	}
	if err := fs.Parse(flagArgs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Verbosity maps the global flag combination to internal/ui's integer
// verbosity scale.
func (g GlobalOptions) Verbosity() int {
	switch {
	case g.Debug:
		return 2
	case g.Verbose:
		return 1
	case g.Quiet:
		return -1
	default:
		return 0
	}
}
