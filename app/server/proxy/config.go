package proxy

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/kycdash/screengate/app/enum"
)

//go:embed routes.yml
var defaultRoutes []byte

// Config represents the route table file (routes.yml or routes.toml).
type Config struct {
	Routes []RouteConfig `yaml:"routes" toml:"routes" json:"routes" jsonschema:"description=proxied API routes"`
}

// RouteConfig represents a single route in the route table file.
type RouteConfig struct {
	Name     string `yaml:"name" toml:"name" json:"name" jsonschema:"required,minLength=1"`
	Method   string `yaml:"method" toml:"method" json:"method" jsonschema:"required,enum=GET,enum=POST,enum=PUT,enum=PATCH,enum=DELETE"`
	Path     string `yaml:"path" toml:"path" json:"path" jsonschema:"required,pattern=^/api/"`
	Backend  string `yaml:"backend" toml:"backend" json:"backend" jsonschema:"required,pattern=^/"`
	Auth     *bool  `yaml:"auth,omitempty" toml:"auth,omitempty" json:"auth,omitempty" jsonschema:"description=require session token (default true)"`
	Body     string `yaml:"body,omitempty" toml:"body,omitempty" json:"body,omitempty" jsonschema:"enum=auto,enum=none,enum=json,enum=form,enum=multipart"`
	Timeout  string `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"description=per-route timeout like 30s"`
	Filename string `yaml:"filename,omitempty" toml:"filename,omitempty" json:"filename,omitempty" jsonschema:"description=attachment filename for binary responses"`
	Cache    bool   `yaml:"cache,omitempty" toml:"cache,omitempty" json:"cache,omitempty" jsonschema:"description=cache successful responses (public GET only)"`
	Session  string `yaml:"session,omitempty" toml:"session,omitempty" json:"session,omitempty" jsonschema:"enum=login,enum=logout"`
}

// ConfigValidator validates route table data (as JSON) against a schema.
type ConfigValidator func(data []byte) error

// LoadConfig reads and parses the route table file. TOML is used for .toml files, YAML otherwise.
// If validator is provided, the config is validated against the schema.
func LoadConfig(path string, validator ConfigValidator) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from CLI flag, controlled by admin
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	return ParseConfig(data, format, validator)
}

// DefaultConfig returns the built-in route table.
func DefaultConfig(validator ConfigValidator) (*Config, error) {
	return ParseConfig(defaultRoutes, "yaml", validator)
}

// ParseConfig decodes route table data in the given format ("yaml" or "toml").
func ParseConfig(data []byte, format string, validator ConfigValidator) (*Config, error) {
	var raw any
	var cfg Config
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse routes file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse routes file: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse routes file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse routes file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported routes format %q", format)
	}

	// validate against the generated JSON schema if validator provided
	if validator != nil {
		js, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to convert routes to json: %w", err)
		}
		if err := validator(js); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Table converts the config into validated routes.
func (c *Config) Table() ([]Route, error) {
	if c == nil || len(c.Routes) == 0 {
		return nil, errors.New("routes config must have at least one route")
	}

	routes := make([]Route, 0, len(c.Routes))
	names := make(map[string]bool)
	patterns := make(map[string]bool)
	for i, rc := range c.Routes {
		rt, err := rc.route()
		if err != nil {
			return nil, fmt.Errorf("route #%d: %w", i+1, err)
		}
		if err := rt.validate(); err != nil {
			return nil, err
		}
		if names[rt.Name] {
			return nil, fmt.Errorf("duplicate route name %q", rt.Name)
		}
		names[rt.Name] = true
		if patterns[rt.Pattern()] {
			return nil, fmt.Errorf("duplicate route %q", rt.Pattern())
		}
		patterns[rt.Pattern()] = true
		routes = append(routes, rt)
	}
	return routes, nil
}

// route converts a single route config, applying defaults.
func (rc RouteConfig) route() (Route, error) {
	rt := Route{
		Name:     strings.TrimSpace(rc.Name),
		Method:   strings.ToUpper(strings.TrimSpace(rc.Method)),
		Path:     strings.TrimSpace(rc.Path),
		Backend:  strings.TrimSpace(rc.Backend),
		Auth:     rc.Auth == nil || *rc.Auth,
		Filename: rc.Filename,
		Cache:    rc.Cache,
	}

	var err error
	if rt.Body, err = enum.ParseBodyKind(orDefault(rc.Body, enum.BodyKindAuto.String())); err != nil {
		return Route{}, fmt.Errorf("%q: %w", rt.Name, err)
	}
	if rt.Session, err = enum.ParseSessionAction(orDefault(rc.Session, enum.SessionActionNone.String())); err != nil {
		return Route{}, fmt.Errorf("%q: %w", rt.Name, err)
	}
	if rc.Timeout != "" {
		if rt.Timeout, err = time.ParseDuration(rc.Timeout); err != nil {
			return Route{}, fmt.Errorf("%q: invalid timeout %q: %w", rt.Name, rc.Timeout, err)
		}
	}
	return rt, nil
}

// orDefault lowercases an enum field value, empty values give def.
func orDefault(v, def string) string {
	if v = strings.ToLower(strings.TrimSpace(v)); v == "" {
		return def
	}
	return v
}
