package config

import (
	"net/url"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const envconfigPrefix = "CPPE"

const (
	// CredentialsBackendFile persists credentials to a JSON file.
	CredentialsBackendFile = "file"
	// CredentialsBackendRedis persists credentials to Redis.
	CredentialsBackendRedis = "redis"
	// CredentialsBackendMemory keeps credentials for the life of the process.
	CredentialsBackendMemory = "memory"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// We use an exported interface to govern access to our config because the
// underlying struct has fields we don't want to expose.
type Config interface {
	// APIAddress is the absolute base address of the CPPE API, API_URL
	// resolved against ORIGIN.
	APIAddress() string
	AllowInsecureAPIConnections() bool
	Port() int
	TLSEnabled() bool
	TLSCertPath() string
	TLSKeyPath() string
	CORSAllowedOrigins() []string
	LogLevel() logrus.Level
	LogFormat() string
	CredentialsBackend() string
	// CredentialsFile is the path used by the file backend. Empty means the
	// default location under the user's home directory.
	CredentialsFile() string
}

type config struct {
	APIURLAttr             string       `envconfig:"API_URL"`
	OriginAttr             string       `envconfig:"ORIGIN"`
	APIAddressAttr         string       `ignored:"true"`
	APIInsecureAttr        bool         `envconfig:"API_INSECURE"`
	PortAttr               int          `envconfig:"CONSOLE_PORT"`
	TLSEnabledAttr         bool         `envconfig:"TLS_ENABLED"`
	TLSCertPathAttr        string       `envconfig:"TLS_CERT_PATH"`
	TLSKeyPathAttr         string       `envconfig:"TLS_KEY_PATH"`
	CORSAllowedOriginsAttr []string     `envconfig:"CORS_ALLOWED_ORIGINS"`
	LogLevelNameAttr       string       `envconfig:"LOG_LEVEL"`
	LogLevelAttr           logrus.Level `ignored:"true"`
	LogFormatAttr          string       `envconfig:"LOG_FORMAT"`
	CredentialsBackendAttr string       `envconfig:"CREDENTIALS_BACKEND"`
	CredentialsFileAttr    string       `envconfig:"CREDENTIALS_FILE"`
}

// NewConfigWithDefaults returns a Config object with default values already
// applied.
func NewConfigWithDefaults() Config {
	c := newConfigWithDefaults()
	// The defaults always resolve
	_ = c.resolve()
	return c
}

func newConfigWithDefaults() *config {
	return &config{
		APIURLAttr:             "/api",
		OriginAttr:             "http://localhost:8000",
		PortAttr:               8080,
		LogLevelNameAttr:       "info",
		LogFormatAttr:          LogFormatText,
		CredentialsBackendAttr: CredentialsBackendFile,
	}
}

// GetConfigFromEnvironment returns configuration derived from environment
// variables
func GetConfigFromEnvironment() (Config, error) {
	c := newConfigWithDefaults()
	if err := envconfig.Process(envconfigPrefix, c); err != nil {
		return c, errors.Wrap(err, "error reading configuration from environment")
	}

	if c.TLSEnabledAttr {
		if c.TLSCertPathAttr == "" {
			return c, errors.New(
				"with TLS enabled, a value is required for the " +
					"CPPE_TLS_CERT_PATH environment variable",
			)
		}
		if c.TLSKeyPathAttr == "" {
			return c, errors.New(
				"with TLS enabled, a value is required for the " +
					"CPPE_TLS_KEY_PATH environment variable",
			)
		}
	}

	switch c.CredentialsBackendAttr {
	case CredentialsBackendFile, CredentialsBackendRedis, CredentialsBackendMemory:
	default:
		return c, errors.Errorf(
			"invalid value %q for the CPPE_CREDENTIALS_BACKEND environment "+
				"variable; valid values are %q, %q and %q",
			c.CredentialsBackendAttr,
			CredentialsBackendFile,
			CredentialsBackendRedis,
			CredentialsBackendMemory,
		)
	}

	switch c.LogFormatAttr {
	case LogFormatText, LogFormatJSON:
	default:
		return c, errors.Errorf(
			"invalid value %q for the CPPE_LOG_FORMAT environment variable; "+
				"valid values are %q and %q",
			c.LogFormatAttr,
			LogFormatText,
			LogFormatJSON,
		)
	}

	return c, c.resolve()
}

// resolve derives the fields that are computed from other fields.
func (c *config) resolve() error {
	var err error
	if c.LogLevelAttr, err = logrus.ParseLevel(c.LogLevelNameAttr); err != nil {
		return errors.Wrap(
			err,
			"invalid value for the CPPE_LOG_LEVEL environment variable",
		)
	}
	if c.APIAddressAttr, err = ResolveAPIAddress(
		c.OriginAttr,
		c.APIURLAttr,
	); err != nil {
		return err
	}
	return nil
}

// ResolveAPIAddress resolves apiURL, which may be relative, against origin
// and returns an absolute address without a trailing slash.
func ResolveAPIAddress(origin string, apiURL string) (string, error) {
	originURL, err := url.Parse(origin)
	if err != nil {
		return "", errors.Wrapf(err, "error parsing origin %q", origin)
	}
	ref, err := url.Parse(apiURL)
	if err != nil {
		return "", errors.Wrapf(err, "error parsing API URL %q", apiURL)
	}
	resolved := originURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", errors.Errorf(
			"API URL %q resolved against origin %q is not an http(s) address",
			apiURL,
			origin,
		)
	}
	return strings.TrimRight(resolved.String(), "/"), nil
}

func (c *config) APIAddress() string {
	return c.APIAddressAttr
}

func (c *config) AllowInsecureAPIConnections() bool {
	return c.APIInsecureAttr
}

func (c *config) Port() int {
	return c.PortAttr
}

func (c *config) TLSEnabled() bool {
	return c.TLSEnabledAttr
}

func (c *config) TLSCertPath() string {
	return c.TLSCertPathAttr
}

func (c *config) TLSKeyPath() string {
	return c.TLSKeyPathAttr
}

func (c *config) CORSAllowedOrigins() []string {
	return c.CORSAllowedOriginsAttr
}

func (c *config) LogLevel() logrus.Level {
	return c.LogLevelAttr
}

func (c *config) LogFormat() string {
	return c.LogFormatAttr
}

func (c *config) CredentialsBackend() string {
	return c.CredentialsBackendAttr
}

func (c *config) CredentialsFile() string {
	return c.CredentialsFileAttr
}
