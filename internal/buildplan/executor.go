package buildplan

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/nuCode-Tech/lib-forge/internal/platform"
)

// BuildBackend is the external toolchain a target is compiled through.
type BuildBackend int

const (
	// BackendCargo invokes the host cargo directly; used for native
	// Linux/macOS/Windows targets that match the build host.
	BackendCargo BuildBackend = iota
	// BackendCross invokes `cross`, which runs cargo inside a
	// target-specific Docker image; used for cross-compiled targets with
	// a CrossImage set.
	BackendCross
	// BackendZigbuild invokes `cargo zigbuild`, a lighter-weight
	// alternative to cross for glibc/musl/Android targets.
	BackendZigbuild
)

func (b BuildBackend) String() string {
	switch b {
	case BackendCargo:
		return "cargo"
	case BackendCross:
		return "cross"
	case BackendZigbuild:
		return "cargo-zigbuild"
	default:
		return "unknown"
	}
}

// SelectBackend chooses which external toolchain drives plan, absent an
// explicit override: a target with a CrossImage always uses cross,
// Android targets default to zigbuild (no Docker image needed), and
// everything else uses the host cargo.
func SelectBackend(target BuildTargetPlan) BuildBackend {
	if target.CrossImage != "" {
		return BackendCross
	}
	if target.Platform.Family() == platform.FamilyAndroid {
		return BackendZigbuild
	}
	return BackendCargo
}

// ParseBackend resolves an --executor flag value to a backend. The empty
// string defaults to cargo.
func ParseBackend(value string) (BuildBackend, error) {
	switch value {
	case "", "cargo":
		return BackendCargo, nil
	case "cross":
		return BackendCross, nil
	case "zigbuild":
		return BackendZigbuild, nil
	default:
		return 0, fmt.Errorf("unknown build executor %q: expected cargo, cross, or zigbuild", value)
	}
}

// ExecError reports a failed external toolchain invocation.
type ExecError struct {
	Backend BuildBackend
	Target  string
	Stderr  string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s build for %s failed: %v: %s", e.Backend, e.Target, e.Err, e.Stderr)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Executor drives the external Rust toolchain for each target in a plan.
type Executor struct {
	// Run invokes name with args in dir, with env appended to the
	// process environment, and returns combined stderr. Exposed so
	// tests can substitute a fake without shelling out.
	Run func(ctx context.Context, dir, name string, args, env []string) (stderr string, err error)
}

// NewExecutor returns an Executor that shells out via os/exec.
func NewExecutor() *Executor {
	return &Executor{Run: runCommand}
}

func runCommand(ctx context.Context, dir, name string, args, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// BuildTarget compiles a single target according to its selected
// backend, blocking until the external process exits or ctx is
// cancelled.
func (e *Executor) BuildTarget(ctx context.Context, profile BuildProfile, target BuildTargetPlan) error {
	return e.BuildTargetWith(ctx, SelectBackend(target), profile, target)
}

// BuildTargetWith compiles a single target through an explicitly chosen
// backend, bypassing SelectBackend's heuristics. Used when the caller's
// --executor flag names the toolchain directly.
func (e *Executor) BuildTargetWith(ctx context.Context, backend BuildBackend, profile BuildProfile, target BuildTargetPlan) error {
	name, prefix := commandFor(backend)
	args := append(prefix, buildArgs(backend, profile, target)...)
	env := buildEnv(profile, target)

	stderr, err := e.Run(ctx, target.WorkingDir, name, args, env)
	if err != nil {
		return &ExecError{Backend: backend, Target: target.RustTargetTriple, Stderr: stderr, Err: err}
	}
	return nil
}

// commandFor maps a backend to the binary it invokes and the subcommand
// prefix it expects: cargo and cross take "build", zigbuild is itself a
// cargo subcommand.
func commandFor(backend BuildBackend) (string, []string) {
	switch backend {
	case BackendCross:
		return "cross", []string{"build"}
	case BackendZigbuild:
		return "cargo", []string{"zigbuild"}
	default:
		return "cargo", []string{"build"}
	}
}

// BuildAll compiles every target in plan in sequence, stopping at the
// first failure. Parallelizing across targets is left to callers that
// want it (each target is independent and safe to run concurrently).
func (e *Executor) BuildAll(ctx context.Context, plan BuildPlan) error {
	for _, target := range plan.Targets {
		if err := e.BuildTarget(ctx, plan.Profile, target); err != nil {
			return err
		}
	}
	return nil
}

func buildArgs(backend BuildBackend, profile BuildProfile, target BuildTargetPlan) []string {
	args := []string{"--manifest-path", target.CargoManifestPath, "--target", target.RustTargetTriple}
	if profile.Name == "release" {
		args = append(args, "--release")
	}
	for _, feature := range target.CargoFeatures {
		args = append(args, "--features", feature)
	}
	args = append(args, profile.CargoArgs...)
	args = append(args, target.CargoArgs...)
	if backend == BackendCross && target.CrossImage != "" {
		args = append(args, "--target-dir", "target")
	}
	return args
}

func buildEnv(profile BuildProfile, target BuildTargetPlan) []string {
	var env []string
	if len(profile.Rustflags) > 0 {
		env = append(env, "RUSTFLAGS="+joinSpace(profile.Rustflags))
	}
	for _, v := range profile.Env {
		env = append(env, v.Key+"="+v.Value)
	}
	for _, v := range target.Env {
		env = append(env, v.Key+"="+v.Value)
	}
	if target.CrossImage != "" {
		env = append(env, "CROSS_IMAGE="+target.CrossImage)
	}
	return env
}

func joinSpace(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += " "
		}
		out += v
	}
	return out
}
