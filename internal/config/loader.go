// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `FORMCHECK_`, where `__` maps to “.”
     (e.g., `FORMCHECK_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
defaulted, validated, and enriched with the runtime root path.  Callers own
the returned `*Config`; there is no package-level copy.

Instrumentation
---------------
  • DEBUG spans: root discovery, YAML read.
  • ERROR spans: YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span : final “config loaded” with key highlights.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface before the file logger is installed.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const envPrefix = "FORMCHECK_"

/*──────────────────────────── root discovery ───────────────────────────────*/

// RootDir resolves FORMCHECK_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to the executable layout
// (`<root>/bin/formcheck`) and finally the working directory.
func RootDir() string {
	if r := os.Getenv(envPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads configuration below RootDir().
func Load() (*Config, error) { return LoadFrom(RootDir()) }

// LoadFrom reads .env, YAML, and env overrides below root, validates, and
// caches the result.
func LoadFrom(root string) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: FORMCHECK_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"forms_source", cfg.Forms.Source,
		"forms_dirs", cfg.Forms.Dirs,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// applyDefaults fills optional settings and anchors relative paths at root.
func applyDefaults(c *Config) {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Forms.Source == "" {
		c.Forms.Source = "yaml"
	}
	if c.Forms.Source == "yaml" && len(c.Forms.Dirs) == 0 {
		c.Forms.Dirs = []string{"forms"}
	}

	c.Log.Dir = underRoot(c.Paths.Root, c.Log.Dir)
	for i, d := range c.Forms.Dirs {
		c.Forms.Dirs[i] = underRoot(c.Paths.Root, d)
	}
	if c.GeoIP.DBPath != "" {
		c.GeoIP.DBPath = underRoot(c.Paths.Root, c.GeoIP.DBPath)
	}
}

func underRoot(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
