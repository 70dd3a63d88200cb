package mermaid

import (
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultWidth is the output width used when the request does not specify one
	DefaultWidth = 1400
	// MinDimension is the default lower bound for the output width
	MinDimension = 100
	// MaxDimension is the default upper bound for the output width
	MaxDimension = 4000
	// DefaultTimeoutMsec is the hard wall-clock limit for a single renderer run
	DefaultTimeoutMsec = 30000
	// DefaultOutputDir is the directory under the storage root for rendered images
	DefaultOutputDir = "mermaid"
	// DefaultPublicPrefix is the URL prefix the storage root is served under
	DefaultPublicPrefix = "/storage/"
	// DefaultExecutable is the bare renderer name, resolved via PATH at launch
	DefaultExecutable = "mmdc"
)

// DefaultSearchDirs are package-manager install prefixes
// that are commonly missing from the PATH of background workers.
var DefaultSearchDirs = []string{
	"/opt/homebrew/bin",
	"/usr/local/bin",
}

// Config for the Mermaid renderer
type Config struct {
	// StorageRoot is the root folder of the public storage disk
	StorageRoot string `json:"storage_root" yaml:"storage_root" validate:"required"`
	// PublicPrefix is the URL prefix the storage root is served under,
	// default: /storage/
	PublicPrefix string `json:"public_prefix,omitempty" yaml:"public_prefix,omitempty"`
	// OutputDir is the folder under StorageRoot for rendered images,
	// default: mermaid
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	// TempDir is the folder for temporary input files,
	// if empty, the OS temp folder is used
	TempDir string `json:"temp_dir,omitempty" yaml:"temp_dir,omitempty"`
	// BaseDir is the project folder with node_modules, used to discover a local mmdc install
	BaseDir string `json:"base_dir,omitempty" yaml:"base_dir,omitempty"`

	// Executable specifies the renderer path, and disables the discovery when set
	Executable string `json:"executable,omitempty" yaml:"executable,omitempty"`
	// Candidates is the ordered list of paths probed for the renderer,
	// the default list is returned by DefaultCandidates
	Candidates []string `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	// SearchDirs are prepended to the subprocess PATH when they exist on disk
	SearchDirs []string `json:"search_dirs,omitempty" yaml:"search_dirs,omitempty"`

	DefaultWidth int `json:"default_width,omitempty" yaml:"default_width,omitempty" validate:"gte=0"`
	MinDimension int `json:"min_dimension,omitempty" yaml:"min_dimension,omitempty" validate:"gte=0"`
	MaxDimension int `json:"max_dimension,omitempty" yaml:"max_dimension,omitempty" validate:"gte=0,gtefield=MinDimension"`

	// TimeoutMsec is the hard limit for the renderer run, default: 30000
	TimeoutMsec int `json:"timeout_msec,omitempty" yaml:"timeout_msec,omitempty" validate:"gte=0"`
}

// LoadConfig from file
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithDefaults returns a copy of the config with the empty values populated
func (c *Config) WithDefaults() *Config {
	res := new(Config)
	if c != nil {
		*res = *c
		res.Candidates = slices.Clone(c.Candidates)
		res.SearchDirs = slices.Clone(c.SearchDirs)
	}

	res.PublicPrefix = values.StringsCoalesce(res.PublicPrefix, DefaultPublicPrefix)
	res.OutputDir = values.StringsCoalesce(res.OutputDir, DefaultOutputDir)
	res.DefaultWidth = values.NumbersCoalesce(res.DefaultWidth, DefaultWidth)
	res.MinDimension = values.NumbersCoalesce(res.MinDimension, MinDimension)
	res.MaxDimension = values.NumbersCoalesce(res.MaxDimension, MaxDimension)
	res.TimeoutMsec = values.NumbersCoalesce(res.TimeoutMsec, DefaultTimeoutMsec)
	if len(res.Candidates) == 0 {
		res.Candidates = DefaultCandidates(res.BaseDir)
	}
	if res.SearchDirs == nil {
		res.SearchDirs = slices.Clone(DefaultSearchDirs)
	}
	return res
}

// Validate returns an error if the config is not valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid mermaid config")
	}
	return nil
}

// Timeout returns the renderer run limit
func (c *Config) Timeout() time.Duration {
	return time.Duration(values.NumbersCoalesce(c.TimeoutMsec, DefaultTimeoutMsec)) * time.Millisecond
}
