// Package pack assembles deterministic archives (tar.gz, zip, AAR,
// XCFramework) from a built artifact's files and its platform layout.
package pack

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nuCode-Tech/lib-forge/internal/artifact"
	"github.com/nuCode-Tech/lib-forge/internal/buildplan"
)

// Format identifies the archive container a packer emits.
type Format int

const (
	FormatZip Format = iota
	FormatTarGz
	FormatXCFramework
	FormatAAR
)

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTarGz:
		return "tar.gz"
	case FormatXCFramework:
		return "xcframework"
	case FormatAAR:
		return "aar"
	default:
		return "unknown"
	}
}

// Input pairs a built artifact with the archive layout its platform uses.
type Input struct {
	Artifact buildplan.BuiltArtifact
	Layout   artifact.Layout
}

// Request describes one packing invocation. Single-file formats (zip,
// tar.gz) expect exactly one input; AAR and XCFramework accept multiple
// per-ABI/per-slice inputs merged into a single output.
type Request struct {
	Format    Format
	Inputs    []Input
	OutputDir string
}

// Result is the set of archive files a packer produced.
type Result struct {
	Format      Format
	OutputPaths []string
}

// Error reports why a pack request could not be satisfied.
type Error struct {
	InvalidRequest bool
	Message        string
}

func (e *Error) Error() string {
	if e.InvalidRequest {
		return fmt.Sprintf("invalid pack request: %s", e.Message)
	}
	return fmt.Sprintf("pack i/o error: %s", e.Message)
}

func invalidRequest(format string, args ...interface{}) error {
	return &Error{InvalidRequest: true, Message: fmt.Sprintf(format, args...)}
}

func ioError(format string, args ...interface{}) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Executor packs a request into one or more archive files.
type Executor interface {
	Pack(request Request) (Result, error)
}

// ArchiveEntry is one file to be written into an archive, at a given
// archive-relative path. Exactly one of SourcePath or Content is set:
// SourcePath for entries copied from the filesystem, Content for entries
// synthesized in memory (e.g. an AAR's empty classes.jar).
type ArchiveEntry struct {
	ArchivePath string
	SourcePath  string
	Content     []byte
}

func contentEntry(archivePath string, content []byte) ArchiveEntry {
	return ArchiveEntry{ArchivePath: archivePath, Content: content}
}

// buildArchiveEntries lays out the manifest, build id, library, and
// optional include directory for a single input, sorted by archive path.
func buildArchiveEntries(input Input) ([]ArchiveEntry, error) {
	hasIncludeDir := input.Artifact.IncludeDir != ""
	hasIncludePath := input.Layout.IncludePath != ""
	if hasIncludeDir != hasIncludePath {
		return nil, invalidRequest("include directory and layout include path must match")
	}

	var entries []ArchiveEntry
	manifestEntry, err := fileEntry(input.Artifact.ManifestPath, input.Layout.ManifestPath)
	if err != nil {
		return nil, err
	}
	buildIDEntry, err := fileEntry(input.Artifact.BuildIDPath, input.Layout.BuildIDPath)
	if err != nil {
		return nil, err
	}
	libraryEntry, err := fileEntry(input.Artifact.LibraryPath, input.Layout.LibraryPath)
	if err != nil {
		return nil, err
	}
	entries = append(entries, manifestEntry, buildIDEntry, libraryEntry)

	if hasIncludeDir {
		includeEntries, err := includeDirEntries(input.Artifact.IncludeDir, input.Layout.IncludePath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, includeEntries...)
	}

	sortEntries(entries)
	return entries, nil
}

// entriesFromDir walks root and produces one entry per file, archive
// paths relative to root with forward-slash separators.
func entriesFromDir(root string) ([]ArchiveEntry, error) {
	var entries []ArchiveEntry
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, ArchiveEntry{
			ArchivePath: filepath.ToSlash(relative),
			SourcePath:  path,
		})
		return nil
	})
	if err != nil {
		return nil, ioError("%s", err)
	}
	sortEntries(entries)
	return entries, nil
}

func includeDirEntries(includeDir, includePath string) ([]ArchiveEntry, error) {
	info, err := os.Stat(includeDir)
	if err != nil || !info.IsDir() {
		return nil, invalidRequest("missing include dir %q", includeDir)
	}
	var entries []ArchiveEntry
	err = filepath.Walk(includeDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		relative, err := filepath.Rel(includeDir, path)
		if err != nil {
			return err
		}
		entries = append(entries, ArchiveEntry{
			ArchivePath: joinArchivePath(includePath, filepath.ToSlash(relative)),
			SourcePath:  path,
		})
		return nil
	})
	if err != nil {
		return nil, ioError("%s", err)
	}
	sortEntries(entries)
	return entries, nil
}

func joinArchivePath(prefix, suffix string) string {
	if strings.HasSuffix(prefix, "/") {
		return prefix + suffix
	}
	return prefix + "/" + suffix
}

func fileEntry(sourcePath, archivePath string) (ArchiveEntry, error) {
	info, err := os.Stat(sourcePath)
	if err != nil || info.IsDir() {
		return ArchiveEntry{}, invalidRequest("missing file %q", sourcePath)
	}
	return ArchiveEntry{ArchivePath: archivePath, SourcePath: sourcePath}, nil
}

func sortEntries(entries []ArchiveEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ArchivePath < entries[j].ArchivePath })
}

// deterministicModTime is the fixed timestamp (1980-01-01, the earliest
// representable DOS time) stamped on every archive entry so repeated
// packing of identical inputs produces byte-identical archives.
var deterministicModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

func writeZip(path string, entries []ArchiveEntry) error {
	file, err := os.Create(path)
	if err != nil {
		return ioError("%s", err)
	}
	defer file.Close()

	writer := zip.NewWriter(file)
	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:     entry.ArchivePath,
			Method:   zip.Deflate,
			Modified: deterministicModTime,
		}
		header.SetMode(0o644)
		entryWriter, err := writer.CreateHeader(header)
		if err != nil {
			return ioError("%s", err)
		}
		if err := writeEntryContent(entryWriter, entry); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return ioError("%s", err)
	}
	return nil
}

func writeTarGz(path string, entries []ArchiveEntry) error {
	file, err := os.Create(path)
	if err != nil {
		return ioError("%s", err)
	}
	defer file.Close()

	gzWriter, _ := gzip.NewWriterLevel(file, gzip.DefaultCompression)
	gzWriter.ModTime = time.Unix(0, 0)
	tarWriter := tar.NewWriter(gzWriter)

	for _, entry := range entries {
		size, err := entrySize(entry)
		if err != nil {
			return err
		}
		header := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     entry.ArchivePath,
			Size:     size,
			Mode:     0o644,
			Uid:      0,
			Gid:      0,
			ModTime:  time.Unix(0, 0),
			Format:   tar.FormatGNU,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return ioError("%s", err)
		}
		if err := writeEntryContent(tarWriter, entry); err != nil {
			return err
		}
	}

	if err := tarWriter.Close(); err != nil {
		return ioError("%s", err)
	}
	if err := gzWriter.Close(); err != nil {
		return ioError("%s", err)
	}
	return nil
}

func copyFileInto(w io.Writer, sourcePath string) error {
	input, err := os.Open(sourcePath)
	if err != nil {
		return ioError("%s", err)
	}
	defer input.Close()
	if _, err := io.Copy(w, input); err != nil {
		return ioError("%s", err)
	}
	return nil
}

// writeEntryContent streams entry's bytes into w, from memory if Content
// is set, otherwise from SourcePath on disk.
func writeEntryContent(w io.Writer, entry ArchiveEntry) error {
	if entry.Content != nil {
		if _, err := w.Write(entry.Content); err != nil {
			return ioError("%s", err)
		}
		return nil
	}
	return copyFileInto(w, entry.SourcePath)
}

// entrySize returns the byte length an entry will occupy in the archive.
func entrySize(entry ArchiveEntry) (int64, error) {
	if entry.Content != nil {
		return int64(len(entry.Content)), nil
	}
	info, err := os.Stat(entry.SourcePath)
	if err != nil {
		return 0, ioError("%s", err)
	}
	return info.Size(), nil
}

// derivePackageName strips the "-<build_id>-" infix (or a known archive
// extension) from an artifact name to recover the bare package name,
// used to name XCFramework outputs and the AAR's Android package.
func derivePackageName(a buildplan.BuiltArtifact) string {
	needle := "-" + a.BuildID + "-"
	if idx := strings.Index(a.ArtifactName, needle); idx >= 0 {
		return a.ArtifactName[:idx]
	}
	return stripKnownExtension(a.ArtifactName)
}

func replaceExtension(name, newExtension string) string {
	if stripped, ok := strings.CutSuffix(name, ".tar.gz"); ok {
		return stripped + "." + newExtension
	}
	if stripped, ok := strings.CutSuffix(name, ".zip"); ok {
		return stripped + "." + newExtension
	}
	return name + "." + newExtension
}

func stripKnownExtension(name string) string {
	if stripped, ok := strings.CutSuffix(name, ".tar.gz"); ok {
		return stripped
	}
	if stripped, ok := strings.CutSuffix(name, ".zip"); ok {
		return stripped
	}
	return name
}
