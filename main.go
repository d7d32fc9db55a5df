package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/nuCode-Tech/lib-forge/internal/artifact"
	"github.com/nuCode-Tech/lib-forge/internal/bindings"
	"github.com/nuCode-Tech/lib-forge/internal/buildinput"
	"github.com/nuCode-Tech/lib-forge/internal/buildplan"
	"github.com/nuCode-Tech/lib-forge/internal/cli"
	"github.com/nuCode-Tech/lib-forge/internal/config"
	"github.com/nuCode-Tech/lib-forge/internal/help"
	"github.com/nuCode-Tech/lib-forge/internal/manifest"
	"github.com/nuCode-Tech/lib-forge/internal/pack"
	"github.com/nuCode-Tech/lib-forge/internal/platform"
	"github.com/nuCode-Tech/lib-forge/internal/publish"
	"github.com/nuCode-Tech/lib-forge/internal/signer"
	"github.com/nuCode-Tech/lib-forge/internal/ui"
)

// version is set via -ldflags at build time, or auto-detected from Go
// module info when installed via `go install module@version`.
var version = "dev"

func getVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

func main() {
	sigHandler := cli.NewSignalHandler()
	defer sigHandler.Stop()

	exitCode := run(sigHandler)
	os.Exit(exitCode)
}

func run(sigHandler *cli.SignalHandler) int {
	ctx := sigHandler.Context()

	opts := cli.ParseCommand()

	ui.SetVersion(getVersion())
	ui.SetVerbosity(opts.Global.Verbosity())
	ui.SetQuietMode(opts.Global.Quiet)
	ui.SetJSONMode(opts.Global.JSON)
	if opts.Global.NoColor {
		ui.SetNoColor(true)
	}

	if opts.Global.Version {
		fmt.Printf("libforge %s\n", getVersion())
		return 0
	}

	if opts.Global.Help {
		help.HandleHelp(opts.Command, opts.Args)
		return 0
	}

	switch opts.Command {
	case cli.CommandBuild:
		return runBuild(ctx, opts)
	case cli.CommandBundle:
		return runBundle(ctx, opts)
	case cli.CommandKeygen:
		return runKeygen()
	case cli.CommandSign:
		return runSign(opts)
	case cli.CommandVerify:
		return runVerify(opts)
	case cli.CommandPublish:
		return runPublish(opts)
	default:
		help.HandleHelp(cli.CommandNone, nil)
		return 0
	}
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, ui.FormatError(ui.SanitizeErrorMessage(err), "", ""))
	return 1
}

// resolveTargets determines which platform keys a build/bundle
// invocation acts on: an explicit --target flag always wins; otherwise
// the manifest directory's libforge.yaml (if present) is consulted;
// absent both, every registered platform is built.
func resolveTargets(manifestDir, explicitTarget string) ([]platform.Key, *config.Config, error) {
	if explicitTarget != "" {
		if key, err := platform.Parse(explicitTarget); err == nil {
			return []platform.Key{key}, nil, nil
		}
		matches := platform.FromRustTarget(explicitTarget)
		if len(matches) != 1 {
			return nil, nil, fmt.Errorf("target %q does not resolve to exactly one platform", explicitTarget)
		}
		return matches, nil, nil
	}

	cfgPath := filepath.Join(manifestDir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
		targets, err := cfg.ResolvedTargets()
		if err != nil {
			return nil, nil, err
		}
		return targets, cfg, nil
	}

	return platform.All(), nil, nil
}

// rustTargetTriple picks the canonical compilation triple for key,
// preferring the explicit flag value when it is itself one of key's
// acceptable triples.
func rustTargetTriple(key platform.Key, explicitTarget string) string {
	for _, t := range key.RustTargets() {
		if t == explicitTarget {
			return t
		}
	}
	triples := key.RustTargets()
	if len(triples) > 0 {
		return triples[0]
	}
	return key.String()
}

func profileDir(profile string) string {
	switch profile {
	case "", "dev", "test":
		return "debug"
	case "bench":
		return "release"
	default:
		return profile
	}
}

// cargoPackageName scans Cargo.toml for the package name under [package],
// avoiding a dependency on a full TOML parser for a single scalar field.
func cargoPackageName(manifestDir string) (string, error) {
	value, err := cargoPackageField(manifestDir, "name")
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", fmt.Errorf("Cargo.toml at %q has no [package] name", manifestDir)
	}
	return value, nil
}

// cargoPackageVersion scans Cargo.toml for the package version, returning
// "" when the field is absent (e.g. workspace-inherited versions).
func cargoPackageVersion(manifestDir string) (string, error) {
	return cargoPackageField(manifestDir, "version")
}

func cargoPackageField(manifestDir, field string) (string, error) {
	data, err := os.ReadFile(filepath.Join(manifestDir, "Cargo.toml"))
	if err != nil {
		return "", err
	}
	inPackageSection := false
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inPackageSection = trimmed == "[package]"
			continue
		}
		if !inPackageSection {
			continue
		}
		if rest, ok := strings.CutPrefix(trimmed, field); ok {
			rest = strings.TrimSpace(rest)
			if value, ok := strings.CutPrefix(rest, "="); ok {
				return strings.Trim(strings.TrimSpace(value), `"`), nil
			}
		}
	}
	return "", nil
}

func readOptionalValue(path string) (buildinput.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return buildinput.Absent, nil
		}
		return buildinput.Value{}, err
	}
	return buildinput.Present(string(data)), nil
}

// runBuild compiles a single target (or every resolved target) via the
// external Rust toolchain selected by --executor.
func runBuild(ctx context.Context, opts *cli.Options) int {
	manifestDir := opts.Build.ManifestDir
	targets, _, err := resolveTargets(manifestDir, opts.Build.Target)
	if err != nil {
		return fail(err)
	}

	executor := buildplan.NewExecutor()
	profile := buildplan.BuildProfile{Name: opts.Build.Profile}

	backend, err := buildplan.ParseBackend(opts.Build.Executor)
	if err != nil {
		return fail(err)
	}
	if opts.Build.CrossImage != "" {
		backend = buildplan.BackendCross
	}

	showSpinner := !opts.Global.Quiet && !opts.Global.JSON

	for _, key := range targets {
		triple := rustTargetTriple(key, opts.Build.Target)
		target := buildplan.BuildTargetPlan{
			Platform:          key,
			RustTargetTriple:  triple,
			WorkingDir:        manifestDir,
			CargoManifestPath: filepath.Join(manifestDir, "Cargo.toml"),
			CrossImage:        opts.Build.CrossImage,
		}
		spinner := ui.NewSpinner(fmt.Sprintf("Building %s (%s)...", triple, key))
		if showSpinner {
			spinner.Start()
		}
		if err := executor.BuildTargetWith(ctx, backend, profile, target); err != nil {
			spinner.StopWithError(fmt.Sprintf("Build failed for %s", triple))
			return fail(err)
		}
		spinner.StopWithSuccess(fmt.Sprintf("Built %s", triple))
	}

	ui.Status("Done", fmt.Sprintf("%d target(s) built", len(targets)))
	return 0
}

// stagedArtifact locates the output of a prior `build` invocation for key
// and prepares a staging directory for its metadata files. The archive
// name and the artifact's BuildID carry the target-agnostic release id,
// shared by every target in the release.
func stagedArtifact(manifestDir, stageDir, libName, profile string, key platform.Key, releaseID string) (buildplan.BuiltArtifact, error) {
	triple := rustTargetTriple(key, "")
	libraryPath := filepath.Join(manifestDir, "target", triple, profileDir(profile), platform.LibraryFilename(libName, key))
	if _, err := os.Stat(libraryPath); err != nil {
		return buildplan.BuiltArtifact{}, fmt.Errorf("built library not found at %q: run `libforge build` first", libraryPath)
	}

	includeDir := ""
	if key.Family() == platform.FamilyApple {
		candidate := filepath.Join(manifestDir, "include")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			includeDir = candidate
		}
	}

	archiveKind := key.DefaultArchiveKind()
	artifactName, err := artifact.Name(libName, releaseID, key, archiveKind)
	if err != nil {
		return buildplan.BuiltArtifact{}, err
	}

	targetStageDir := filepath.Join(stageDir, key.String())
	if err := os.MkdirAll(filepath.Join(targetStageDir, "metadata"), 0o755); err != nil {
		return buildplan.BuiltArtifact{}, err
	}

	return buildplan.BuiltArtifact{
		Platform:     key,
		BuildID:      releaseID,
		ArchiveKind:  archiveKind,
		ArtifactName: artifactName,
		OutputDir:    targetStageDir,
		LibraryPath:  libraryPath,
		IncludeDir:   includeDir,
		ManifestPath: filepath.Join(targetStageDir, "metadata", "manifest.json"),
		BuildIDPath:  filepath.Join(targetStageDir, "metadata", "build_id.txt"),
	}, nil
}

// runBundle packages every resolved target's build output into a
// deterministic archive and assembles the signed-pending distribution
// manifest.
func runBundle(_ context.Context, opts *cli.Options) int {
	manifestDir := opts.Bundle.ManifestDir
	outputDir := opts.Bundle.OutputDir
	if outputDir == "" {
		outputDir = "dist"
	}
	profile := opts.Bundle.Profile
	if profile == "" {
		profile = "dev"
	}

	targets, _, err := resolveTargets(manifestDir, opts.Bundle.Target)
	if err != nil {
		return fail(err)
	}

	libName, err := cargoPackageName(manifestDir)
	if err != nil {
		return fail(err)
	}
	libVersion, err := cargoPackageVersion(manifestDir)
	if err != nil {
		return fail(err)
	}

	cargoToml, err := os.ReadFile(filepath.Join(manifestDir, "Cargo.toml"))
	if err != nil {
		return fail(err)
	}
	cargoLock, err := os.ReadFile(filepath.Join(manifestDir, "Cargo.lock"))
	if err != nil {
		return fail(err)
	}
	udl, err := readOptionalValue(filepath.Join(manifestDir, "uniffi.udl"))
	if err != nil {
		return fail(err)
	}
	libforgeYaml, err := readOptionalValue(filepath.Join(manifestDir, config.FileName))
	if err != nil {
		return fail(err)
	}

	stageDir := filepath.Join(outputDir, ".stage")
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return fail(err)
	}

	if len(targets) == 0 {
		return fail(fmt.Errorf("no targets resolved"))
	}

	inputsFor := func(triple string) buildinput.Inputs {
		return buildinput.Inputs{
			CargoToml:             string(cargoToml),
			CargoLock:             string(cargoLock),
			RustTargetTriple:      triple,
			UniffiUDL:             udl,
			LibforgeYaml:          libforgeYaml,
			BindingMetadata:       bindings.Set{},
			ManifestSchemaVersion: buildinput.SchemaVersion,
		}
	}

	// The release id is target-agnostic: every archive of this release
	// carries it in its filename and build_id.txt. The per-target hash
	// only appears as each platform entry's buildId in the manifest.
	releaseID, err := buildinput.HashReleaseInputs(inputsFor(rustTargetTriple(targets[0], opts.Bundle.Target)))
	if err != nil {
		return fail(err)
	}
	ui.Detail("Release", releaseID)

	platforms := make([]manifest.Platform, 0, len(targets))
	builtArtifacts := make([]buildplan.BuiltArtifact, 0, len(targets))

	for _, key := range targets {
		triple := rustTargetTriple(key, opts.Bundle.Target)
		buildID, err := buildinput.HashBuildInputs(inputsFor(triple))
		if err != nil {
			return fail(err)
		}

		built, err := stagedArtifact(manifestDir, stageDir, libName, profile, key, releaseID)
		if err != nil {
			return fail(err)
		}
		builtArtifacts = append(builtArtifacts, built)

		platforms = append(platforms, manifest.Platform{
			Name:      key.String(),
			BuildID:   buildID,
			Triples:   key.RustTargets(),
			Artifacts: []string{built.ArtifactName},
		})
		ui.Detail("Resolved", fmt.Sprintf("%s build_id=%s", key, buildID))
	}

	m := manifest.Manifest{
		SchemaVersion: manifest.SchemaVersion,
		Package:       manifest.Package{Name: libName, Version: libVersion},
		Build: manifest.Build{
			ID: releaseID,
			Identity: manifest.BuildIdentity{
				Host:      hostTriple(),
				Toolchain: "cargo",
				Profile:   profile,
			},
		},
		Artifacts: manifest.Artifacts{
			Naming: manifest.ArtifactNaming{
				Template:        "{package.name}-{build.id}-{platform}",
				Delimiter:       "-",
				IncludePlatform: true,
				IncludeBinding:  false,
			},
			Checksums: []string{artifact.Sha256Algorithm.String()},
		},
		Bindings:  manifest.Bindings{},
		Platforms: manifest.Platforms{
			Default: platforms[0].Name,
			Targets: platforms,
		},
	}

	if err := manifest.Validate(m); err != nil {
		return fail(err)
	}

	pretty, err := manifest.SerializePretty(m)
	if err != nil {
		return fail(err)
	}

	var archivePaths []string
	for _, built := range builtArtifacts {
		if err := os.WriteFile(built.ManifestPath, pretty, 0o644); err != nil {
			return fail(err)
		}
		if err := os.WriteFile(built.BuildIDPath, []byte(built.BuildID+"\n"), 0o644); err != nil {
			return fail(err)
		}

		layout := artifact.For(libName, built.Platform)
		if built.IncludeDir != "" {
			layout.IncludePath = artifact.IncludeDirName
		}
		input := pack.Input{Artifact: built, Layout: layout}
		request := pack.Request{OutputDir: outputDir, Inputs: []pack.Input{input}}

		var packer pack.Executor
		switch built.ArchiveKind {
		case platform.ArchiveZip:
			request.Format = pack.FormatZip
			packer = pack.ZipPacker{}
		default:
			request.Format = pack.FormatTarGz
			packer = pack.TarGzPacker{}
		}

		result, err := packer.Pack(request)
		if err != nil {
			return fail(err)
		}
		archivePaths = append(archivePaths, result.OutputPaths...)
		ui.Status("Packaged", strings.Join(result.OutputPaths, ", "))
	}

	for _, archivePath := range archivePaths {
		if err := writeChecksumSidecar(outputDir, archivePath); err != nil {
			return fail(err)
		}
	}

	if err := os.WriteFile(filepath.Join(outputDir, signer.ManifestFileName), pretty, 0o644); err != nil {
		return fail(err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "build_id.txt"), []byte(releaseID+"\n"), 0o644); err != nil {
		return fail(err)
	}
	_ = os.RemoveAll(stageDir)

	ui.Status("Done", fmt.Sprintf("release %s: %d archive(s) in %s", releaseID, len(archivePaths), outputDir))
	return 0
}

func hostTriple() string {
	return fmt.Sprintf("%s-%s", runtime.GOOS, runtime.GOARCH)
}

// uploadTracker adapts the remote publisher's per-asset progress callback
// to a terminal progress bar. Uploads run sequentially, so one tracker at
// a time is live.
func uploadTracker() publish.UploadProgress {
	var tracker *ui.DownloadTracker
	var current string
	return func(name string, uploaded, total int64) {
		if tracker == nil || current != name {
			tracker = ui.NewDownloadTracker(fmt.Sprintf("Uploading %s", name), total)
			current = name
		}
		tracker.Update(uploaded, total)
		if uploaded >= total {
			tracker.Done()
		}
	}
}

// writeChecksumSidecar digests an archive and writes the
// "<archive>.sha256" file next to it.
func writeChecksumSidecar(outputDir, archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}

	name := filepath.Base(archivePath)
	entry, err := artifact.NewChecksumEntry(artifact.Sha256Algorithm, hex.EncodeToString(h.Sum(nil)), name)
	if err != nil {
		return err
	}
	sidecar := filepath.Join(outputDir, artifact.ChecksumName(name, artifact.Sha256))
	return os.WriteFile(sidecar, []byte(artifact.RenderChecksumFile([]artifact.ChecksumEntry{entry})+"\n"), 0o644)
}

func runKeygen() int {
	priv, pub, err := signer.GenerateKeypair()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("public_key=%x\n", []byte(pub))
	fmt.Printf("private_key=%x\n", []byte(priv))
	return 0
}

func runSign(opts *cli.Options) int {
	if opts.Sign.File == "" {
		return fail(fmt.Errorf("--file is required"))
	}
	key := os.Getenv("LIBFORGE_PRIVATE_KEY")
	if key == "" {
		key = os.Getenv("XFORGE_PRIVATE_KEY")
	}
	if key == "" {
		secret, err := ui.ReadSecret("private key (hex)")
		if err != nil {
			return fail(fmt.Errorf("LIBFORGE_PRIVATE_KEY (or XFORGE_PRIVATE_KEY) is not set, and reading it interactively failed: %w", err))
		}
		key = secret
	}
	if key == "" {
		return fail(fmt.Errorf("LIBFORGE_PRIVATE_KEY (or XFORGE_PRIVATE_KEY) is not set"))
	}

	outDir := opts.Sign.Out
	if outDir == "" {
		outDir = filepath.Dir(opts.Sign.File)
	}

	result, err := signer.SignManifest(signer.Request{
		ManifestPath: opts.Sign.File,
		PrivateKey:   key,
		OutputDir:    outDir,
	})
	if err != nil {
		return fail(err)
	}

	ui.Status("Signed", result.ManifestPath)
	ui.Detail("Signature", result.SignaturePath)
	for _, sig := range result.AssetSignatures {
		ui.Detail("Signed asset", sig)
	}
	return 0
}

func runVerify(opts *cli.Options) int {
	if opts.Verify.File == "" || opts.Verify.Signature == "" {
		return fail(fmt.Errorf("--file and --signature are required"))
	}

	var pubHex string
	switch {
	case opts.Verify.PublicKey != "":
		pubHex = opts.Verify.PublicKey
	case opts.Verify.PublicKeyFile != "":
		data, err := os.ReadFile(opts.Verify.PublicKeyFile)
		if err != nil {
			return fail(err)
		}
		pubHex = strings.TrimSpace(string(data))
	default:
		return fail(fmt.Errorf("one of --public-key or --public-key-file is required"))
	}

	pub, err := signer.ParsePublicKeyHex(pubHex)
	if err != nil {
		return fail(err)
	}

	raw, err := os.ReadFile(opts.Verify.File)
	if err != nil {
		return fail(err)
	}
	m, err := manifest.Deserialize(raw)
	if err != nil {
		return fail(err)
	}
	payload, err := manifest.SigningPayload(m)
	if err != nil {
		return fail(err)
	}

	signature, err := os.ReadFile(opts.Verify.Signature)
	if err != nil {
		return fail(err)
	}

	ok, err := signer.Verify(pub, payload, signature)
	if err != nil {
		return fail(err)
	}
	if !ok {
		fmt.Println("INVALID SIGNATURE")
		return 1
	}
	fmt.Println("VALID SIGNATURE")
	return 0
}

func runPublish(opts *cli.Options) int {
	if opts.Publish.Manifest == "" {
		return fail(fmt.Errorf("--manifest is required"))
	}

	raw, err := os.ReadFile(opts.Publish.Manifest)
	if err != nil {
		return fail(err)
	}
	m, err := manifest.Deserialize(raw)
	if err != nil {
		return fail(err)
	}

	var assets []publish.Asset
	manifestAsset, err := publish.AssetFromPath(opts.Publish.Manifest)
	if err != nil {
		return fail(err)
	}
	assets = append(assets, manifestAsset)

	if opts.Publish.AssetsDir != "" {
		entries, err := os.ReadDir(opts.Publish.AssetsDir)
		if err != nil {
			return fail(err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			asset, err := publish.AssetFromPath(filepath.Join(opts.Publish.AssetsDir, entry.Name()))
			if err != nil {
				return fail(err)
			}
			assets = append(assets, asset)
		}
	}
	for _, path := range opts.Publish.Assets {
		asset, err := publish.AssetFromPath(path)
		if err != nil {
			return fail(err)
		}
		assets = append(assets, asset)
	}

	request := publish.Request{
		Repository:   opts.Publish.Repository,
		Tag:          m.Build.ID,
		Name:         m.Package.Name,
		BuildID:      m.Build.ID,
		ManifestPath: opts.Publish.Manifest,
		Assets:       assets,
	}

	var publisher publish.Publisher
	if opts.Publish.OutDir != "" {
		publisher, err = publish.NewLocalPublisher(opts.Publish.OutDir)
		if err != nil {
			return fail(err)
		}
	} else {
		token := os.Getenv("GITHUB_TOKEN")
		remote := publish.NewRemotePublisher(token)
		if !opts.Global.Quiet && !opts.Global.JSON {
			remote.Progress = uploadTracker()
		}
		publisher = remote
	}

	outcome, err := publish.Release(publisher, request)
	if err != nil {
		return fail(err)
	}

	for _, name := range outcome.Uploaded {
		ui.Status("Uploaded", name)
	}
	for _, name := range outcome.Skipped {
		ui.Detail("Skipped", name+" (already present)")
	}
	if outcome.ReleaseURL != "" {
		ui.Status("Release", outcome.ReleaseURL)
	}
	return 0
}
