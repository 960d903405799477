// Package blobsource discovers and names snapshot/delta blob files on
// the local filesystem, adapted from the segment-file naming scheme the
// rest of this codebase uses elsewhere: a fixed prefix, a zero-padded
// version number, and a kind-specific extension, which sorts
// lexicographically in version order.
//
// Filename format: prefix_NNNNNNNNNN.snapshot / prefix_NNNNNNNNNN.delta
package blobsource

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/iamNilotpal/hollow/pkg/blob"
	"github.com/iamNilotpal/hollow/pkg/filesys"
	"github.com/iamNilotpal/hollow/pkg/options"
)

// Source discovers and names blob files under a single data directory.
type Source struct {
	dataDir string
	blobDir string
	prefix  string
}

// New prepares (creating if necessary) the blob directory beneath
// dataDir and returns a Source scoped to it.
func New(dataDir string, naming *options.BlobNamingOptions) (*Source, error) {
	dir := filepath.Join(dataDir, naming.Directory)
	if err := filesys.CreateDir(dir, 0o755, true); err != nil {
		return nil, fmt.Errorf("failed to prepare blob directory %s: %w", dir, err)
	}
	return &Source{dataDir: dataDir, blobDir: naming.Directory, prefix: naming.Prefix}, nil
}

// Entry describes one discovered blob file.
type Entry struct {
	Path    string
	Version uint64
	Kind    blob.Kind
}

func (s *Source) dir() string { return filepath.Join(s.dataDir, s.blobDir) }

// GenerateName returns the filename this source uses for a blob whose
// destination version is destVersion.
func (s *Source) GenerateName(destVersion uint64, kind blob.Kind) string {
	return fmt.Sprintf("%s_%010d.%s", s.prefix, destVersion, extensionFor(kind))
}

func extensionFor(kind blob.Kind) string {
	if kind == blob.KindSnapshot {
		return "snapshot"
	}
	return "delta"
}

// ListSnapshots returns every discovered snapshot blob, ascending by
// version.
func (s *Source) ListSnapshots() ([]Entry, error) {
	return s.list("snapshot", blob.KindSnapshot)
}

// ListDeltas returns every discovered delta blob, ascending by version.
func (s *Source) ListDeltas() ([]Entry, error) {
	return s.list("delta", blob.KindDelta)
}

func (s *Source) list(ext string, kind blob.Kind) ([]Entry, error) {
	pattern := filepath.Join(s.dir(), s.prefix+"_*."+ext)
	paths, err := filesys.ReadDir(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s blobs: %w", ext, err)
	}

	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		version, err := parseVersion(p, s.prefix)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Path: p, Version: version, Kind: kind})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Version < entries[j].Version })
	return entries, nil
}

func parseVersion(fullPath, prefix string) (uint64, error) {
	_, filename := filepath.Split(fullPath)
	withoutPrefix, ok := strings.CutPrefix(filename, prefix+"_")
	if !ok {
		return 0, fmt.Errorf("filename %s does not match prefix %s", filename, prefix)
	}
	withoutExt, _, _ := strings.Cut(withoutPrefix, ".")
	return strconv.ParseUint(withoutExt, 10, 64)
}

// LatestSnapshot returns the highest-version discovered snapshot, or nil
// if none exist yet.
func (s *Source) LatestSnapshot() (*Entry, error) {
	entries, err := s.ListSnapshots()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	last := entries[len(entries)-1]
	return &last, nil
}

// DeltasAfter returns every discovered delta with version strictly
// greater than afterVersion, ascending.
func (s *Source) DeltasAfter(afterVersion uint64) ([]Entry, error) {
	all, err := s.ListDeltas()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.Version > afterVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

// Open memory-maps the blob file described by entry.
func (s *Source) Open(entry Entry) (*blob.Blob, error) {
	return blob.Open(entry.Path, blob.Identity(entry.Path), entry.Kind)
}
