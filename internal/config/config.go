package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Drivers del identity provider.
const (
	DriverCognito = "cognito"
	DriverLocal   = "local"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr               string        `yaml:"addr"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// IDP: identidad del cliente frente al identity provider. Se lee una vez
	// al arrancar y no se modifica después.
	IDP IDP `yaml:"idp"`

	// Local: provider embebido para desarrollo (idp.driver=local).
	Local struct {
		TokenTTL   time.Duration `yaml:"token_ttl"`
		CodeTTL    time.Duration `yaml:"code_ttl"`
		Store      string        `yaml:"store"`       // memory | redis
		CodeSender string        `yaml:"code_sender"` // log | smtp
		// SigningKey firma los access tokens locales. Vacío = aleatorio por proceso.
		SigningKey Secret `yaml:"signing_key"`
	} `yaml:"local"`

	Redis struct {
		Addr     string `yaml:"addr"`
		DB       int    `yaml:"db"`
		Password Secret `yaml:"password"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           Secret `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// IDP identifica a este sistema (no al usuario) frente al identity provider.
type IDP struct {
	Driver       string        `yaml:"driver"`
	Region       string        `yaml:"region"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret Secret        `yaml:"client_secret"`
	Endpoint     string        `yaml:"endpoint"` // override (LocalStack, cognito-local)
	Timeout      time.Duration `yaml:"timeout"`
}

// Load lee el YAML en path (opcional: path vacío o inexistente se ignora),
// aplica defaults, overrides por env y valida.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// sin archivo: solo env + defaults
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	// Overrides por env antes de los defaults para que un valor vacío
	// en YAML pueda completarse desde el entorno.
	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// FromEnv es un atajo para Load("") usado por el entrypoint Lambda.
func FromEnv() (*Config, error) {
	return Load("")
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.IDP.Driver == "" {
		c.IDP.Driver = DriverCognito
	}
	if c.IDP.Driver == DriverLocal && strings.TrimSpace(c.IDP.ClientID) == "" {
		c.IDP.ClientID = "local-client"
	}
	if c.IDP.Timeout == 0 {
		c.IDP.Timeout = 10 * time.Second
	}
	if c.Local.TokenTTL == 0 {
		c.Local.TokenTTL = time.Hour
	}
	if c.Local.CodeTTL == 0 {
		c.Local.CodeTTL = 24 * time.Hour
	}
	if c.Local.Store == "" {
		c.Local.Store = "memory"
	}
	if c.Local.CodeSender == "" {
		c.Local.CodeSender = "log"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "idpgate"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate chequea lo que no se puede recuperar en runtime. No modifica c.
// Un client secret vacío se permite: el secret hash se calcula igual (más
// débil) y decide el provider.
func (c *Config) Validate() error {
	switch c.IDP.Driver {
	case DriverCognito:
		if strings.TrimSpace(c.IDP.Region) == "" {
			return errors.New("config: idp.region is required for the cognito driver (IDP_REGION or AWS_REGION)")
		}
		if strings.TrimSpace(c.IDP.ClientID) == "" {
			return errors.New("config: idp.client_id is required (IDP_CLIENT_ID)")
		}
	case DriverLocal:
		switch c.Local.Store {
		case "memory":
		case "redis":
			if c.Redis.Addr == "" {
				return errors.New("config: redis.addr is required when local.store=redis")
			}
		default:
			return fmt.Errorf("config: unknown local.store %q", c.Local.Store)
		}
		switch c.Local.CodeSender {
		case "log":
		case "smtp":
			if c.SMTP.Host == "" || c.SMTP.From == "" {
				return errors.New("config: smtp.host and smtp.from are required when local.code_sender=smtp")
			}
		default:
			return fmt.Errorf("config: unknown local.code_sender %q", c.Local.CodeSender)
		}
	default:
		return fmt.Errorf("config: unknown idp.driver %q", c.IDP.Driver)
	}
	if c.IDP.Timeout < 0 {
		return errors.New("config: idp.timeout must be positive")
	}
	return nil
}

// IsProd indica si corremos en producción.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvDur("SERVER_SHUTDOWN_TIMEOUT"); ok {
		c.Server.ShutdownTimeout = v
	}

	// IDP (AWS_REGION lo setea el runtime de Lambda)
	if v, ok := getEnvStr("IDP_DRIVER"); ok {
		c.IDP.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("AWS_REGION"); ok && c.IDP.Region == "" {
		c.IDP.Region = v
	}
	if v, ok := getEnvStr("IDP_REGION"); ok {
		c.IDP.Region = v
	}
	if v, ok := getEnvStr("IDP_CLIENT_ID"); ok {
		c.IDP.ClientID = v
	}
	if v, ok := getEnvStr("IDP_CLIENT_SECRET"); ok {
		c.IDP.ClientSecret = Secret(v)
	}
	if v, ok := getEnvStr("IDP_ENDPOINT"); ok {
		c.IDP.Endpoint = v
	}
	if v, ok := getEnvDur("IDP_TIMEOUT"); ok {
		c.IDP.Timeout = v
	}

	// LOCAL IDP
	if v, ok := getEnvDur("LOCAL_IDP_TOKEN_TTL"); ok {
		c.Local.TokenTTL = v
	}
	if v, ok := getEnvDur("LOCAL_IDP_CODE_TTL"); ok {
		c.Local.CodeTTL = v
	}
	if v, ok := getEnvStr("LOCAL_IDP_STORE"); ok {
		c.Local.Store = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOCAL_IDP_CODE_SENDER"); ok {
		c.Local.CodeSender = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOCAL_IDP_SIGNING_KEY"); ok {
		c.Local.SigningKey = Secret(v)
	}

	// REDIS
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Redis.Password = Secret(v)
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Redis.Prefix = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = Secret(v)
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = v
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}

	// METRICS
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
	if v, ok := getEnvStr("METRICS_PATH"); ok {
		c.Metrics.Path = v
	}
}
