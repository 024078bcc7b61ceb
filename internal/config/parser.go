package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/jheddings/safenet/internal/model"
	pkgerrors "github.com/pkg/errors"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConfigNotFound indicates that the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: file does not exist")

	// ErrInvalidConfig indicates that the configuration is not valid.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Format is a configuration file format.
type Format string

const (
	// FormatYAML is the YAML format.
	FormatYAML = Format("yaml")

	// FormatHuJSON is JSON with comments and trailing commas.
	FormatHuJSON = Format("hujson")
)

// FormatFromPath returns the format of a file given its extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".hujson":
		return FormatHuJSON
	default:
		return FormatYAML
	}
}

// Defaults used by Config.Default.
const (
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "cli"
	DefaultParallelism = 1
	DefaultCount       = 3
	DefaultTimeout     = 5 * time.Second
	DefaultTTL         = 64
	DefaultSize        = 56
	DefaultDNSPort     = "53"
)

// LogFormats lists the valid values of logging.format.
var LogFormats = []string{"cli", "json", "text", "discard"}

// ReadConfig reads the configuration from the path
func ReadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, err
	}

	c, err := ParseConfig(b, FormatFromPath(path))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "parsing config %s", path)
	}
	c.path = path
	return c, nil
}

// ParseConfig returns config from bytes in the given format.
func ParseConfig(b []byte, format Format) (*Config, error) {
	var c Config

	switch format {
	case FormatHuJSON:
		std, err := hujson.Standardize(b)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "parsing json")
		}
		dec := json.NewDecoder(bytes.NewReader(std))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return nil, pkgerrors.Wrap(err, "parsing json")
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		// an empty document is a valid empty configuration
		if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return nil, pkgerrors.Wrap(err, "parsing yaml")
		}
	}

	if err := c.Default(); err != nil {
		return nil, pkgerrors.Wrap(err, "defaulting")
	}

	if err := c.Validate(); err != nil {
		return nil, pkgerrors.Wrap(err, "validating")
	}

	return &c, nil
}

// Default config settings
func (c *Config) Default() error {
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Scan.Parallelism == 0 {
		c.Scan.Parallelism = DefaultParallelism
	}
	if c.Resolver.Server != "" {
		if _, _, err := net.SplitHostPort(c.Resolver.Server); err != nil {
			c.Resolver.Server = net.JoinHostPort(c.Resolver.Server, DefaultDNSPort)
		}
	}
	if c.Resolver.Timeout == nil {
		c.Resolver.Timeout = durationPtr(DefaultTimeout)
	}
	defaultSection(c.Targets, "")
	defaultSection(c.Websites, model.ProbeKindHTTP)
	defaultSection(c.Systems, model.ProbeKindPing)
	defaultSection(c.Networks, model.ProbeKindTCP)
	return nil
}

func defaultSection(targets []Target, kind model.ProbeKind) {
	for idx := range targets {
		targets[idx].setDefaults(kind)
	}
}

func (t *Target) setDefaults(kind model.ProbeKind) {
	if t.Kind == "" {
		t.Kind = kind
	}
	t.Kind = model.ProbeKind(strings.ToLower(string(t.Kind)))
	if t.Timeout == nil {
		t.Timeout = durationPtr(DefaultTimeout)
	}
	if t.Kind != model.ProbeKindPing {
		return
	}
	if t.Count == nil {
		t.Count = intPtr(DefaultCount)
	}
	if t.TTL == nil {
		t.TTL = intPtr(DefaultTTL)
	}
	if t.Size == nil {
		t.Size = intPtr(DefaultSize)
	}
}

// Validate the config file. All the problems are reported at once.
func (c *Config) Validate() error {
	var errorv []error
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		errorv = append(errorv, fmt.Errorf("logging.level: invalid level %q", c.Logging.Level))
	}
	if !slices.Contains(LogFormats, c.Logging.Format) {
		errorv = append(errorv, fmt.Errorf("logging.format: invalid format %q", c.Logging.Format))
	}
	if c.Scan.Parallelism < 1 {
		errorv = append(errorv, fmt.Errorf("scan.parallelism: must be >= 1"))
	}
	if c.Resolver.Timeout != nil && *c.Resolver.Timeout <= 0 {
		errorv = append(errorv, fmt.Errorf("resolver.timeout: must be > 0"))
	}
	errorv = append(errorv, validateSection("targets", c.Targets, "")...)
	errorv = append(errorv, validateSection("websites", c.Websites, model.ProbeKindHTTP)...)
	errorv = append(errorv, validateSection("systems", c.Systems, model.ProbeKindPing)...)
	errorv = append(errorv, validateSection("networks", c.Networks, model.ProbeKindTCP)...)
	if len(errorv) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errorv...))
	}
	return nil
}

func validateSection(section string, targets []Target, kind model.ProbeKind) (errorv []error) {
	for idx, t := range targets {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("#%d", idx)
		}
		for _, err := range t.validate(kind) {
			errorv = append(errorv, fmt.Errorf("%s[%s]: %w", section, name, err))
		}
	}
	return
}

func (t *Target) validate(kind model.ProbeKind) (errorv []error) {
	if t.Name == "" {
		errorv = append(errorv, errors.New("name: must not be empty"))
	}
	if t.Address == "" {
		errorv = append(errorv, errors.New("address: must not be empty"))
	}
	if kind != "" && t.Kind != kind {
		errorv = append(errorv, fmt.Errorf("kind: must be %q in this section", kind))
	}
	if t.Timeout != nil && *t.Timeout <= 0 {
		errorv = append(errorv, errors.New("timeout: must be > 0"))
	}
	switch t.Kind {
	case model.ProbeKindPing:
		if t.Count != nil && *t.Count <= 0 {
			errorv = append(errorv, errors.New("count: must be > 0"))
		}
		if t.TTL != nil && (*t.TTL < 1 || *t.TTL > 255) {
			errorv = append(errorv, errors.New("ttl: must be within 1..255"))
		}
		if t.Size != nil && (*t.Size < 0 || *t.Size > 65500) {
			errorv = append(errorv, errors.New("size: must be within 0..65500"))
		}
	case model.ProbeKindTCP:
		if t.Port < 1 || t.Port > 65535 {
			errorv = append(errorv, errors.New("port: must be within 1..65535"))
		}
	case model.ProbeKindHTTP:
		if URL, err := url.Parse(t.Address); err != nil || (URL.Scheme != "http" && URL.Scheme != "https") || URL.Host == "" {
			errorv = append(errorv, errors.New("address: must be an http or https URL"))
		}
	default:
		errorv = append(errorv, fmt.Errorf("kind: unknown probe kind %q", t.Kind))
	}
	if t.Network != "" && t.Kind != model.ProbeKindTCP {
		errorv = append(errorv, errors.New("network: only supported by tcp targets"))
	}
	return
}

func durationPtr(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

func intPtr(v int) *int {
	return &v
}
