package artifact

import (
	"fmt"
	"sort"
	"strings"
)

// ChecksumAlgorithm is a digest algorithm recorded in checksums.txt.
type ChecksumAlgorithm int

// Sha256Algorithm is the only supported algorithm.
const Sha256Algorithm ChecksumAlgorithm = iota

func (a ChecksumAlgorithm) String() string {
	switch a {
	case Sha256Algorithm:
		return "sha256"
	default:
		return "unknown"
	}
}

// ParseChecksumAlgorithm parses the algorithm token of a checksums.txt line.
func ParseChecksumAlgorithm(value string) (ChecksumAlgorithm, error) {
	if value == "sha256" {
		return Sha256Algorithm, nil
	}
	return 0, &ChecksumFormatError{UnknownAlgorithm: value}
}

// ChecksumEntry is one row of a checksums.txt sidecar file.
type ChecksumEntry struct {
	Algorithm ChecksumAlgorithm
	Digest    string
	Path      string
}

// NewChecksumEntry validates and constructs a ChecksumEntry.
func NewChecksumEntry(algorithm ChecksumAlgorithm, digest, path string) (ChecksumEntry, error) {
	if err := validateDigest(algorithm, digest); err != nil {
		return ChecksumEntry{}, err
	}
	if strings.TrimSpace(path) == "" {
		return ChecksumEntry{}, &ChecksumFormatError{MissingPath: true}
	}
	return ChecksumEntry{Algorithm: algorithm, Digest: digest, Path: path}, nil
}

// ChecksumFormatError reports a malformed checksums.txt line or entry.
type ChecksumFormatError struct {
	InvalidLine      int
	UnknownAlgorithm string
	InvalidDigest    string
	MissingPath      bool
}

func (e *ChecksumFormatError) Error() string {
	switch {
	case e.InvalidLine != 0:
		return fmt.Sprintf("checksum line %d is malformed", e.InvalidLine)
	case e.UnknownAlgorithm != "":
		return fmt.Sprintf("unknown checksum algorithm %q", e.UnknownAlgorithm)
	case e.InvalidDigest != "":
		return fmt.Sprintf("invalid checksum digest %q", e.InvalidDigest)
	default:
		return "checksum path is missing"
	}
}

func validateDigest(algorithm ChecksumAlgorithm, digest string) error {
	if algorithm != Sha256Algorithm {
		return nil
	}
	if len(digest) != 64 {
		return &ChecksumFormatError{InvalidDigest: digest}
	}
	for _, r := range digest {
		if !isHexDigit(r) {
			return &ChecksumFormatError{InvalidDigest: digest}
		}
	}
	return nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// RenderChecksumFile renders entries sorted by path (then digest) into the
// newline-joined checksums.txt format.
func RenderChecksumFile(entries []ChecksumEntry) string {
	sorted := make([]ChecksumEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Digest < sorted[j].Digest
	})
	lines := make([]string, len(sorted))
	for i, e := range sorted {
		lines[i] = fmt.Sprintf("%s %s %s", e.Algorithm, e.Digest, e.Path)
	}
	return strings.Join(lines, "\n")
}

// ParseChecksumFile parses the checksums.txt format produced by
// RenderChecksumFile.
func ParseChecksumFile(contents string) ([]ChecksumEntry, error) {
	var entries []ChecksumEntry
	for i, line := range strings.Split(contents, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		parts := strings.SplitN(trimmed, " ", 3)
		if len(parts) != 3 {
			return nil, &ChecksumFormatError{InvalidLine: i + 1}
		}
		algorithm, err := ParseChecksumAlgorithm(parts[0])
		if err != nil {
			return nil, err
		}
		entry, err := NewChecksumEntry(algorithm, parts[1], parts[2])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
