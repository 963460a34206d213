package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/emenda-labs/pyapi/core/breaks"
)

// CorruptError means the persisted acceptance document could not be decoded.
// Fatal: continuing would silently drop previously accepted breaks.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("acceptance ledger %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// AcceptedBreak is one break a maintainer approved, with the operator's
// justification. Entries are append-only within their bucket.
type AcceptedBreak struct {
	Code          string `yaml:"code"`
	Justification string `yaml:"justification"`
}

// AcceptResult reports whether Accept mutated the document.
type AcceptResult int

const (
	Inserted AcceptResult = iota
	AlreadyAccepted
)

// Document is the full persisted acceptance state: accepted breaks bucketed
// by version then project, and per-version baseline overrides.
type Document struct {
	AcceptedBreaks   map[string]map[string][]AcceptedBreak `yaml:"acceptedBreaks"`
	VersionOverrides map[string]string                     `yaml:"versionOverrides"`
}

// NewDocument returns the empty document, equivalent to a missing file.
func NewDocument() *Document {
	return &Document{
		AcceptedBreaks:   make(map[string]map[string][]AcceptedBreak),
		VersionOverrides: make(map[string]string),
	}
}

// Load reads the document at path. A missing file yields the empty document;
// a file that cannot be decoded is a CorruptError.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDocument(), nil
		}
		return nil, &CorruptError{Path: path, Err: err}
	}

	doc := NewDocument()
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	if doc.AcceptedBreaks == nil {
		doc.AcceptedBreaks = make(map[string]map[string][]AcceptedBreak)
	}
	if doc.VersionOverrides == nil {
		doc.VersionOverrides = make(map[string]string)
	}
	return doc, nil
}

// IsAccepted reports whether the exact code string was accepted for the
// given version and project.
func (d *Document) IsAccepted(version, project, code string) bool {
	for _, ab := range d.AcceptedBreaks[version][project] {
		if ab.Code == code {
			return true
		}
	}
	return false
}

// FilterAccepted removes every break whose code is already accepted under
// (version, project). Other projects and versions never suppress a break.
func (d *Document) FilterAccepted(version, project string, found []breaks.Break) []breaks.Break {
	var remaining []breaks.Break
	for _, b := range found {
		if !d.IsAccepted(version, project, b.Code) {
			remaining = append(remaining, b)
		}
	}
	return remaining
}

// Accept appends {code, justification} to the (version, project) bucket,
// creating it if needed. Accepting an already-accepted code is a no-op and
// returns AlreadyAccepted, keeping the operation idempotent and retry-safe.
func (d *Document) Accept(version, project, code, justification string) AcceptResult {
	if d.IsAccepted(version, project, code) {
		return AlreadyAccepted
	}
	byProject := d.AcceptedBreaks[version]
	if byProject == nil {
		byProject = make(map[string][]AcceptedBreak)
		d.AcceptedBreaks[version] = byProject
	}
	byProject[project] = append(byProject[project], AcceptedBreak{Code: code, Justification: justification})
	return Inserted
}

// ResolveOverride returns the baseline version recorded for currentVersion.
func (d *Document) ResolveOverride(currentVersion string) (string, bool) {
	v, ok := d.VersionOverrides[currentVersion]
	return v, ok
}

// SetOverride upserts the baseline override for currentVersion. Last write
// wins.
func (d *Document) SetOverride(currentVersion, baselineVersion string) {
	d.VersionOverrides[currentVersion] = baselineVersion
}

// Save rewrites the document in full. Version keys are rendered in ascending
// semantic-version order regardless of insertion order, project keys
// lexicographically, and break lists in append order.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}

	data, err := encode(d.marshalNode())
	if err != nil {
		return fmt.Errorf("encoding acceptance ledger: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing acceptance ledger: %w", err)
	}
	return nil
}

// sortVersions orders semantic versions by numeric major.minor.patch fields,
// never lexicographically: 0.9.0 < 0.191.0 < 1.0.0 < 5.302.0.
func sortVersions(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare("v"+versions[i], "v"+versions[j]) < 0
	})
}
