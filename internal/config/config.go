// Package config contains the safenet configuration.
package config

import (
	"github.com/jheddings/safenet/internal/model"
)

// Config is the safenet configuration.
type Config struct {
	// Logging configures logging.
	Logging Logging `yaml:"logging" json:"logging"`

	// Scan configures the scan.
	Scan Scan `yaml:"scan" json:"scan"`

	// Resolver configures name resolution.
	Resolver Resolver `yaml:"resolver" json:"resolver"`

	// Targets contains targets of any kind.
	Targets []Target `yaml:"targets" json:"targets"`

	// Websites contains HTTP targets.
	Websites []Target `yaml:"websites" json:"websites"`

	// Systems contains ping targets.
	Systems []Target `yaml:"systems" json:"systems"`

	// Networks contains TCP targets.
	Networks []Target `yaml:"networks" json:"networks"`

	path string
}

// Logging settings
type Logging struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// Scan settings
type Scan struct {
	Parallelism int `yaml:"parallelism" json:"parallelism"`
}

// Resolver settings. An empty Server selects the system resolver.
type Resolver struct {
	Server  string    `yaml:"server" json:"server"`
	Timeout *Duration `yaml:"timeout" json:"timeout"`
}

// Target is a target declaration. Optional numeric fields are pointers
// so that Validate can tell an explicit zero from a missing value.
type Target struct {
	Name       string          `yaml:"name" json:"name"`
	Kind       model.ProbeKind `yaml:"kind" json:"kind"`
	Address    string          `yaml:"address" json:"address"`
	Safe       bool            `yaml:"safe" json:"safe"`
	Timeout    *Duration       `yaml:"timeout" json:"timeout"`
	Count      *int            `yaml:"count" json:"count"`
	TTL        *int            `yaml:"ttl" json:"ttl"`
	Size       *int            `yaml:"size" json:"size"`
	Privileged bool            `yaml:"privileged" json:"privileged"`
	Port       int             `yaml:"port" json:"port"`
	Network    string          `yaml:"network" json:"network"`
}

// Path returns the path the configuration was read from.
func (c *Config) Path() string {
	return c.path
}

// AllTargets returns every target declaration in scan order: targets,
// then websites, systems and networks.
func (c *Config) AllTargets() []Target {
	var out []Target
	out = append(out, c.Targets...)
	out = append(out, c.Websites...)
	out = append(out, c.Systems...)
	out = append(out, c.Networks...)
	return out
}
