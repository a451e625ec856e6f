// Package manifest records what a build wrote: one entry per output route with
// the source it came from and a content fingerprint.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
)

// Build outcomes recorded in a manifest.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// BuildManifest is the record of a single build.
type BuildManifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Site      Site      `json:"site"`
	Entries   []Entry   `json:"entries"`
	Status    string    `json:"status"`
	Duration  int64     `json:"duration_ms"`
	Failures  int       `json:"failures"`
}

// Site captures the settings that affect every rendered page.
type Site struct {
	Title   string `json:"title"`
	BaseURL string `json:"base_url"`
}

// Entry describes one written artifact.
type Entry struct {
	Route       string `json:"route"`
	Source      string `json:"source"`
	Kind        string `json:"kind"`
	Layout      string `json:"layout,omitempty"`
	Collection  string `json:"collection,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

// New creates an empty manifest for a build.
func New(id string, site Site, started time.Time) *BuildManifest {
	return &BuildManifest{
		ID:        id,
		Timestamp: started.UTC(),
		Site:      site,
		Entries:   make([]Entry, 0),
	}
}

// Add records a written page. source is the route of the source file.
func (m *BuildManifest) Add(p content.Page, source string) error {
	fp, err := Fingerprint(p)
	if err != nil {
		return err
	}
	m.Entries = append(m.Entries, Entry{
		Route:       p.Route,
		Source:      source,
		Kind:        p.Kind.String(),
		Layout:      p.Layout(),
		Collection:  p.Collection(),
		Fingerprint: fp,
	})
	return nil
}

// Finish stamps the outcome and sorts entries by route.
func (m *BuildManifest) Finish(status string, duration time.Duration, failures int) {
	sort.Slice(m.Entries, func(i, j int) bool { return m.Entries[i].Route < m.Entries[j].Route })
	m.Status = status
	m.Duration = duration.Milliseconds()
	m.Failures = failures
}

// Fingerprint returns a stable content fingerprint for a page. Templated pages
// are fingerprinted from their metadata and rendered body with mdfp; opaque
// pages by the SHA-256 of their bytes.
func Fingerprint(p content.Page) (string, error) {
	if !p.IsTemplated() {
		sum := sha256.Sum256(p.Bytes)
		return hex.EncodeToString(sum[:]), nil
	}

	meta, err := metadataYAML(p)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(meta, p.Body), nil
}

// fingerprintFields fixes the key order of the metadata block.
type fingerprintFields struct {
	Collection string `yaml:"collection,omitempty"`
	Layout     string `yaml:"layout,omitempty"`
	Title      string `yaml:"title,omitempty"`
}

// metadataYAML renders the page metadata that participates in the
// fingerprint. Pages without metadata yield an empty string.
func metadataYAML(p content.Page) (string, error) {
	m, ok := p.Metadata.Get()
	if !ok {
		return "", nil
	}
	fields := fingerprintFields{Collection: m.Collection, Layout: m.Layout, Title: m.Title}
	if fields == (fingerprintFields{}) {
		return "", nil
	}
	data, err := yaml.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("serialize metadata for fingerprint: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash over the site settings and the written
// entries. Two builds of identical sources hash the same regardless of build
// ID, timestamp or duration.
func (m *BuildManifest) Hash() (string, error) {
	entries := append([]Entry(nil), m.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Route < entries[j].Route })

	hashInput := struct {
		Site    Site    `json:"site"`
		Entries []Entry `json:"entries"`
	}{
		Site:    m.Site,
		Entries: entries,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Persist writes the manifest to path via a temporary file and rename.
func (m *BuildManifest) Persist(path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure manifest dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename manifest: %w", err)
	}
	return nil
}

// Load reads a manifest previously written by Persist.
func Load(path string) (*BuildManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return FromJSON(data)
}
