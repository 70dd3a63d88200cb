package server

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/gogentic-mermaid/pkg/mermaid"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
)

// DefaultListenAddr is the default HTTP listen address
const DefaultListenAddr = ":8080"

// Config of the HTTP server
type Config struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	// BodyLimit is the max request body size in bytes
	BodyLimit int `json:"body_limit,omitempty" yaml:"body_limit,omitempty"`

	Mermaid mermaid.Config `json:"mermaid" yaml:"mermaid"`
}

// LoadConfig returns the server configuration
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}
	if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
		return nil, errors.WithMessagef(err, "failed to load config: %s", file)
	}
	return cfg, nil
}

// WithDefaults returns a copy of the config with defaults applied
func (c *Config) WithDefaults() *Config {
	res := new(Config)
	if c != nil {
		*res = *c
	}
	res.ListenAddr = values.StringsCoalesce(res.ListenAddr, DefaultListenAddr)
	res.BodyLimit = values.NumbersCoalesce(res.BodyLimit, 1024*1024)
	res.Mermaid = *res.Mermaid.WithDefaults()
	return res
}
