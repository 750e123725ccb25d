package gofst

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kaitu-io/gofst/internal/registry"
)

// formatVersion is the on-disk format-version number embedded in every
// artifact's version tag. §9 treats version equality as required: a
// reader refuses to open an artifact whose format-version differs.
const formatVersion uint32 = 1

// BuildConfig tunes a MapBuilder. The zero value is valid and applies the
// same defaults §4.4 calls for.
//
// Mirrors the teacher's Config struct: a single struct with a Validate
// method and yaml tags, loadable from a file rather than threaded through
// constructor arguments one at a time.
type BuildConfig struct {
	// RegistryCapacity bounds the builder's deduplication table. 0 uses
	// registry.DefaultCapacity (sized for a 5-20MB construction working
	// set, per §4.4).
	RegistryCapacity int `yaml:"registry_capacity"`
}

// Validate checks BuildConfig for internally inconsistent settings.
func (c *BuildConfig) Validate() error {
	if c.RegistryCapacity < 0 {
		return fmt.Errorf("gofst: RegistryCapacity must be >= 0, got %d", c.RegistryCapacity)
	}
	return nil
}

func (c *BuildConfig) registryCapacity() int {
	if c.RegistryCapacity <= 0 {
		return registry.DefaultCapacity
	}
	return c.RegistryCapacity
}

// LoadBuildConfig reads a YAML-encoded BuildConfig from path.
func LoadBuildConfig(path string) (*BuildConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(KindIO, "read build config", err)
	}
	var c BuildConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, wrapError(KindFormat, "parse build config", err)
	}
	if err := c.Validate(); err != nil {
		return nil, wrapError(KindFormat, "validate build config", err)
	}
	return &c, nil
}

// ReaderConfig tunes Map.Open. The zero value sets ChecksumStrict to
// false. A nil *ReaderConfig picks a default by source: Open and OpenSet
// use false, while OpenFile, OpenSetFile and the reloadable wrappers use
// true for memory-mapped sources.
type ReaderConfig struct {
	// ChecksumStrict, when true, verifies the footer CRC32 against the
	// computed checksum of the preceding bytes at Open time and fails
	// with ErrChecksumMismatch on mismatch. §9 recommends true by
	// default for memory-mapped inputs, where partial reads from a
	// truncated or concurrently-modified file are otherwise observable,
	// and false for in-memory sources the caller already trusts.
	ChecksumStrict bool `yaml:"checksum_strict"`
}

// LoadReaderConfig reads a YAML-encoded ReaderConfig from path.
func LoadReaderConfig(path string) (*ReaderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(KindIO, "read reader config", err)
	}
	var c ReaderConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, wrapError(KindFormat, "parse reader config", err)
	}
	return &c, nil
}
