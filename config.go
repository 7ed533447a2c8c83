package fatinspect

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aligator/fatinspect/checkpoint"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

// Supported values of Config.ShortNameCharset.
const (
	CharsetASCII = "ascii"
	CharsetCP437 = "cp437"
)

// Config controls an inspection pass.
type Config struct {
	// MaxChainLinks caps chain walks, DefaultMaxChainLinks if 0.
	MaxChainLinks int `yaml:"max_chain_links"`
	// DetectCycles enables the visited set of the chain walker.
	DetectCycles bool `yaml:"detect_cycles"`
	// Strict applies BootSector.Validate.
	Strict bool `yaml:"strict"`
	// ShortNameCharset is CharsetASCII or CharsetCP437.
	ShortNameCharset string `yaml:"short_name_charset"`
	// ScanLength is the number of bytes analyzed per directory cluster, the
	// cluster size if 0.
	ScanLength int `yaml:"scan_length"`
	// Partition selects a partition of a partitioned disk image, starting
	// at 1. 0 means the image holds the volume directly.
	Partition int `yaml:"partition"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		MaxChainLinks:    DefaultMaxChainLinks,
		ShortNameCharset: CharsetASCII,
	}
}

// LoadConfig reads a YAML config file from fsys. Keys missing in the file
// keep their default, unknown keys are an error.
func LoadConfig(fsys afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := fsys.Open(path)
	if err != nil {
		return Config{}, checkpoint.Wrapf(err, ErrInvalidConfig, "open %s", path)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, checkpoint.Wrapf(err, ErrInvalidConfig, "decode %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks all values for their allowed ranges.
func (c Config) Validate() error {
	if c.MaxChainLinks < 0 {
		return checkpoint.Wrap(fmt.Errorf("max_chain_links must not be negative, got %d", c.MaxChainLinks), ErrInvalidConfig)
	}
	if c.ScanLength < 0 {
		return checkpoint.Wrap(fmt.Errorf("scan_length must not be negative, got %d", c.ScanLength), ErrInvalidConfig)
	}
	if c.Partition < 0 {
		return checkpoint.Wrap(fmt.Errorf("partition must not be negative, got %d", c.Partition), ErrInvalidConfig)
	}
	if _, err := c.ShortNameEncoding(); err != nil {
		return err
	}
	return nil
}

// ShortNameEncoding returns the encoding for Decoder.ShortNameCharset.
// nil stands for ASCII.
func (c Config) ShortNameEncoding() (encoding.Encoding, error) {
	switch strings.ToLower(c.ShortNameCharset) {
	case "", CharsetASCII:
		return nil, nil
	case CharsetCP437:
		return charmap.CodePage437, nil
	default:
		return nil, checkpoint.Wrap(fmt.Errorf("unknown short_name_charset %q", c.ShortNameCharset), ErrInvalidConfig)
	}
}
