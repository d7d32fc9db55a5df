// Package help provides colorful CLI help output.
package help

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nuCode-Tech/lib-forge/internal/cli"
	"github.com/nuCode-Tech/lib-forge/internal/ui"
)

// Color palette: green, dark purple, greyscale
var (
	green = lipgloss.Color("35") // Green

	purple = lipgloss.Color("54") // Dark purple

	greyDark = lipgloss.Color("242")
	white    = lipgloss.Color("252")
)

func renderGreen(s string) string {
	return lipgloss.NewStyle().Foreground(green).Render(s)
}

func renderPurpleBold(s string) string {
	return lipgloss.NewStyle().Foreground(purple).Bold(true).Render(s)
}

func renderGreenBold(s string) string {
	return lipgloss.NewStyle().Foreground(green).Bold(true).Render(s)
}

func renderWhite(s string) string {
	return lipgloss.NewStyle().Foreground(white).Render(s)
}

func renderGreyDark(s string) string {
	return lipgloss.NewStyle().Foreground(greyDark).Render(s)
}

func renderURL(s string) string {
	return lipgloss.NewStyle().Foreground(green).Underline(true).Render(s)
}

// RootHelp returns the top-level --help output.
func RootHelp() string {
	var b strings.Builder

	b.WriteString(ui.RenderLogo())
	b.WriteString(renderWhite("Build, package, sign, and release cross-compiled native libraries") + "\n\n")

	b.WriteString(renderPurpleBold("USAGE") + "\n")
	b.WriteString("  " + renderGreen("libforge") + " <command> [options]\n\n")

	b.WriteString(renderPurpleBold("COMMANDS") + "\n")
	writeFlag(&b, "build", "Compile one or every configured target via cargo/cross/zigbuild")
	writeFlag(&b, "bundle", "Package built targets into archives plus an unsigned manifest")
	writeFlag(&b, "keygen", "Generate an Ed25519 release signing keypair")
	writeFlag(&b, "sign", "Sign a manifest and write its detached signature")
	writeFlag(&b, "verify", "Verify a detached signature against a manifest")
	writeFlag(&b, "publish", "Upload a signed release to a backend")
	b.WriteString("\n")

	b.WriteString(renderPurpleBold("EXAMPLES") + "\n")
	writeExample(&b, "libforge build --profile release --executor cargo", "Compile every configured target")
	writeExample(&b, "libforge bundle --output-dir dist --profile release", "Package archives and write the manifest")
	writeExample(&b, "libforge keygen", "Print a fresh signing keypair")
	writeExample(&b, "libforge sign --file dist/libforge-manifest.json", "Sign a manifest in place")
	writeExample(&b, "libforge publish --manifest dist/libforge-manifest.json", "Upload a release")
	b.WriteString("\n")

	b.WriteString(renderPurpleBold("ENVIRONMENT") + "\n")
	b.WriteString("  " + renderGreen("LIBFORGE_PRIVATE_KEY") + "  " + renderWhite("Hex64 Ed25519 keypair used by sign") + "\n")
	b.WriteString("  " + renderGreen("XFORGE_PRIVATE_KEY") + "    " + renderWhite("Fallback for LIBFORGE_PRIVATE_KEY") + "\n")
	b.WriteString("  " + renderGreen("GITHUB_TOKEN") + "          " + renderWhite("Release backend credential used by publish") + "\n\n")

	b.WriteString(renderPurpleBold("GLOBAL FLAGS") + "\n")
	writeFlag(&b, "-q, --quiet", "Results and errors only")
	writeFlag(&b, "-v, --verbose", "Detail output (hashes, URLs)")
	writeFlag(&b, "--debug", "Debug output (protocol data)")
	writeFlag(&b, "--json", "Suppress spinners and progress bars (output stays plain text)")
	writeFlag(&b, "--no-color", "Disable colored output")
	writeFlag(&b, "-h, --help", "Show help")
	writeFlag(&b, "--version", "Show version")
	b.WriteString("\n")

	b.WriteString(renderPurpleBold("MORE INFO") + "\n")
	b.WriteString("  " + renderGreen("libforge <command> --help") + "  " + renderWhite("Detailed help for a command") + "\n")
	b.WriteString("  " + renderURL("https://github.com/nuCode-Tech/lib-forge") + "\n")

	return b.String()
}

// BuildHelp returns help for the build subcommand.
func BuildHelp() string {
	var b strings.Builder
	b.WriteString(ui.RenderLogo())
	b.WriteString(renderGreenBold("libforge build") + " " + renderWhite("- compile one or every configured target via the external Rust toolchain") + "\n\n")
	b.WriteString(renderPurpleBold("USAGE") + "\n")
	b.WriteString("  " + renderGreen("libforge build") + " --manifest-dir <p> [--target <t>] --profile <name> --executor cargo|cross|zigbuild [--cross-image <img>]\n\n")
	b.WriteString(renderPurpleBold("FLAGS") + "\n")
	writeFlag(&b, "--manifest-dir <p>", "Directory containing Cargo.toml / Cargo.lock (default: .)")
	writeFlag(&b, "--target <t>", "Single compilation target triple; omit to build every configured target")
	writeFlag(&b, "--profile <name>", "Build profile (e.g. release)")
	writeFlag(&b, "--executor <name>", "cargo | cross | zigbuild (default: cargo)")
	writeFlag(&b, "--cross-image <img>", "Docker image used when --executor cross")
	b.WriteString("\n")
	b.WriteString(renderPurpleBold("EXAMPLES") + "\n")
	b.WriteString(renderGreyDark("  # Build the aarch64-linux-android target with cargo-zigbuild") + "\n")
	b.WriteString("  " + renderGreen("libforge build --target aarch64-linux-android --profile release --executor zigbuild") + "\n")
	return b.String()
}

// BundleHelp returns help for the bundle subcommand.
func BundleHelp() string {
	var b strings.Builder
	b.WriteString(ui.RenderLogo())
	b.WriteString(renderGreenBold("libforge bundle") + " " + renderWhite("- package built targets and write the distribution manifest") + "\n\n")
	b.WriteString(renderPurpleBold("USAGE") + "\n")
	b.WriteString("  " + renderGreen("libforge bundle") + " --manifest-dir <p> [--target <t>] --output-dir <p> --profile <name>\n\n")
	b.WriteString(renderPurpleBold("FLAGS") + "\n")
	writeFlag(&b, "--manifest-dir <p>", "Directory containing Cargo.toml / Cargo.lock (default: .)")
	writeFlag(&b, "--target <t>", "Single compilation target triple; omit to bundle every configured target")
	writeFlag(&b, "--output-dir <p>", "Directory archives and the manifest are written to (default: dist)")
	writeFlag(&b, "--profile <name>", "Build profile (e.g. release)")
	b.WriteString("\n")
	b.WriteString(renderPurpleBold("OUTPUT") + "\n")
	b.WriteString(renderGreyDark("  <out>/libforge-manifest.json, <out>/build_id.txt, and one archive") + "\n")
	b.WriteString(renderGreyDark("  per target: <package>-<build_id>-<platform>.{tar.gz|zip}") + "\n")
	return b.String()
}

// KeygenHelp returns help for the keygen subcommand.
func KeygenHelp() string {
	var b strings.Builder
	b.WriteString(ui.RenderLogo())
	b.WriteString(renderGreenBold("libforge keygen") + " " + renderWhite("- generate an Ed25519 release signing keypair") + "\n\n")
	b.WriteString(renderPurpleBold("USAGE") + "\n")
	b.WriteString("  " + renderGreen("libforge keygen") + "\n\n")
	b.WriteString(renderGreyDark("  Prints \"public_key=<hex32>\" and \"private_key=<hex64>\" to stdout.") + "\n")
	b.WriteString(renderGreyDark("  Store the private key in LIBFORGE_PRIVATE_KEY for the sign command.") + "\n")
	return b.String()
}

// SignHelp returns help for the sign subcommand.
func SignHelp() string {
	var b strings.Builder
	b.WriteString(ui.RenderLogo())
	b.WriteString(renderGreenBold("libforge sign") + " " + renderWhite("- sign a manifest and write its detached signature (release assets are not signed)") + "\n\n")
	b.WriteString(renderPurpleBold("USAGE") + "\n")
	b.WriteString("  " + renderGreen("libforge sign") + " --file <p> [--out <p>]\n\n")
	b.WriteString(renderPurpleBold("FLAGS") + "\n")
	writeFlag(&b, "--file <p>", "Manifest file to sign")
	writeFlag(&b, "--out <p>", "Output directory (default: manifest's own directory)")
	b.WriteString("\n")
	b.WriteString(renderPurpleBold("ENVIRONMENT") + "\n")
	b.WriteString("  " + renderGreen("LIBFORGE_PRIVATE_KEY") + " / " + renderGreen("XFORGE_PRIVATE_KEY") + "  " + renderWhite("hex64 Ed25519 keypair") + "\n")
	return b.String()
}

// VerifyHelp returns help for the verify subcommand.
func VerifyHelp() string {
	var b strings.Builder
	b.WriteString(ui.RenderLogo())
	b.WriteString(renderGreenBold("libforge verify") + " " + renderWhite("- verify a detached signature against a manifest") + "\n\n")
	b.WriteString(renderPurpleBold("USAGE") + "\n")
	b.WriteString("  " + renderGreen("libforge verify") + " --file <p> --signature <p> (--public-key <hex> | --public-key-file <p>)\n\n")
	b.WriteString(renderPurpleBold("FLAGS") + "\n")
	writeFlag(&b, "--file <p>", "Manifest file to verify")
	writeFlag(&b, "--signature <p>", "Detached signature file")
	writeFlag(&b, "--public-key <hex>", "Hex-encoded 32-byte public key")
	writeFlag(&b, "--public-key-file <p>", "File containing the hex-encoded public key")
	b.WriteString("\n")
	b.WriteString(renderGreyDark("  Prints \"VALID SIGNATURE\" and exits 0, or \"INVALID SIGNATURE\" and exits 1.") + "\n")
	return b.String()
}

// PublishHelp returns help for the publish subcommand.
func PublishHelp() string {
	var b strings.Builder
	b.WriteString(ui.RenderLogo())
	b.WriteString(renderGreenBold("libforge publish") + " " + renderWhite("- upload a signed release to a backend") + "\n\n")
	b.WriteString(renderPurpleBold("USAGE") + "\n")
	b.WriteString("  " + renderGreen("libforge publish") + " --manifest <p> [--repository <owner/repo>] [--assets-dir <p>] [--asset <p>...] [--out-dir <p>]\n\n")
	b.WriteString(renderPurpleBold("FLAGS") + "\n")
	writeFlag(&b, "--manifest <p>", "Signed manifest file to publish")
	writeFlag(&b, "--repository <slug>", "owner/repo on the release backend (required by both backends)")
	writeFlag(&b, "--assets-dir <p>", "Directory of assets to upload alongside the manifest")
	writeFlag(&b, "--asset <p>", "Explicit asset file to upload (repeatable)")
	writeFlag(&b, "--out-dir <p>", "Local backend output directory; omit to use the remote backend")
	b.WriteString("\n")
	b.WriteString(renderPurpleBold("ENVIRONMENT") + "\n")
	b.WriteString("  " + renderGreen("GITHUB_TOKEN") + "  " + renderWhite("Credential for the remote release backend") + "\n\n")
	b.WriteString(renderGreyDark("  Reruns are idempotent: assets already attached to the release are skipped.") + "\n")
	return b.String()
}

// HandleHelp prints help for the given command (or root help for
// CommandNone) to stdout.
func HandleHelp(cmd cli.Command, _ []string) {
	switch cmd {
	case cli.CommandBuild:
		fmt.Fprint(os.Stdout, BuildHelp())
	case cli.CommandBundle:
		fmt.Fprint(os.Stdout, BundleHelp())
	case cli.CommandKeygen:
		fmt.Fprint(os.Stdout, KeygenHelp())
	case cli.CommandSign:
		fmt.Fprint(os.Stdout, SignHelp())
	case cli.CommandVerify:
		fmt.Fprint(os.Stdout, VerifyHelp())
	case cli.CommandPublish:
		fmt.Fprint(os.Stdout, PublishHelp())
	default:
		fmt.Fprint(os.Stdout, RootHelp())
	}
}

func writeFlag(b *strings.Builder, flag, desc string) {
	b.WriteString("  " + renderGreen(flag))
	padding := 26 - len(flag)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(renderWhite(desc) + "\n")
}

func writeExample(b *strings.Builder, cmd, desc string) {
	b.WriteString("  " + renderGreen(cmd))
	padding := 62 - len(cmd)
	if padding > 0 {
		b.WriteString(strings.Repeat(" ", padding))
	}
	b.WriteString(renderGreyDark(desc) + "\n")
}
