package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	PlatformConfig struct {
		BaseURL               string        `validate:"required,url"`
		Token                 string        // static credential; the API service passes the caller's through instead
		Timeout               time.Duration `validate:"gt=0"`
		MaxConcurrentRequests int           `validate:"min=1"`
		ParallelClasses       bool
	}

	ServerConfig struct {
		Host            string
		Address         string        `validate:"required"`
		DebugAddress    string        `validate:"required"`
		ShutdownTimeout time.Duration `validate:"gt=0"`
	}

	Config struct {
		Env              string `validate:"required"`
		Build            string
		AppName          string `validate:"required"`
		Debug            bool
		TestMode         bool
		FrontendBaseURL  string `validate:"omitempty,url"`
		RollbarToken     string
		SendgridApiKey   string
		DefaultFromEmail string `validate:"required"`

		Platform PlatformConfig
		Server   ServerConfig
	}
)

// FromEmail parses DefaultFromEmail, which may be either `addr` or `Name <addr>`.
// The app name is used when no name is given.
func (conf *Config) FromEmail() mail.Address {
	addr, err := mail.ParseAddress(conf.DefaultFromEmail)
	if err != nil {
		return mail.Address{Name: conf.AppName, Address: conf.DefaultFromEmail}
	}
	if addr.Name == "" {
		addr.Name = conf.AppName
	}
	return *addr
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "codeFORGE")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "codeFORGE <noreply@localhost>")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("platform.baseURL", "http://localhost:5000/api")
	v.SetDefault("platform.token", "")
	v.SetDefault("platform.timeout", 15*time.Second)
	v.SetDefault("platform.maxConcurrentRequests", 8)
	v.SetDefault("platform.parallelClasses", false)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
}

// NewConfig loads the configuration of the environment named by $ENV, exiting on failure.
func NewConfig() *Config {
	conf, err := LoadConfig(os.Getenv("ENV"))
	if err != nil {
		log.Fatalf("%+v", errors.Wrap(err, "loading config"))
	}
	return conf
}

// LoadConfig reads defaults, then `config/.env.<env>` if it exists, then environment variables
// prefixed by the env name (eg. DEV_PLATFORM_BASEURL).
func LoadConfig(env string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env = strings.ToUpper(CleanString(env)) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if root := ProjectRoot(); root != "" {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err = godotenv.Load(dotEnvPath); err != nil {
				return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
		}
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		Platform: PlatformConfig{
			BaseURL:               strings.TrimRight(v.GetString("platform.baseURL"), "/"),
			Token:                 v.GetString("platform.token"),
			Timeout:               v.GetDuration("platform.timeout"),
			MaxConcurrentRequests: v.GetInt("platform.maxConcurrentRequests"),
			ParallelClasses:       v.GetBool("platform.parallelClasses"),
		},
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			DebugAddress:    v.GetString("server.debugAddress"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
	}
	if err := validator.New().Struct(conf); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	return conf, nil
}
