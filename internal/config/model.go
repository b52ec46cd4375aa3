// internal/config/model.go
//
// Typed configuration model for formcheck.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                              – dotenv values,
//   • `conf/global.yaml`                           – primary static file,
//   • `FORMCHECK_`-prefixed environment overrides  – highest precedence.
//
// A database password that begins with `vault:` is a reference, not a
// secret.  cmd/web resolves it through internal/vault before opening the
// pool, so the plain password never lives in a file.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Relative directories are resolved against `Paths.Root` by the loader.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Log section
//

// Log controls the zap logger.  Dir defaults to `<root>/logs`.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Tee   bool   `koanf:"tee"`
}

//
// Forms section
//

// Forms selects where form definitions come from.  With Source "yaml" the
// Dirs are walked in order, overrides first.  With "sql" the form_field
// table of Database is read.
type Forms struct {
	Source string   `koanf:"source" validate:"required,oneof=yaml sql"`
	Dirs   []string `koanf:"dirs"`
}

//
// Database section
//

// Database holds the DSN template and its secret.  DSN carries one %s verb
// where the password goes.
type Database struct {
	DSN      string `koanf:"dsn"`
	Password string `koanf:"password"`
}

//
// GeoIP section
//

// GeoIP points at an optional GeoLite2 Country database used to tag request
// logs.  Empty disables the lookup.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // FORMCHECK_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the aggregate returned by Load().  Treat it as read-only.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Log      Log      `koanf:"log"`
	Forms    Forms    `koanf:"forms"`
	Database Database `koanf:"database"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Paths    Paths    `koanf:"-"`
}
