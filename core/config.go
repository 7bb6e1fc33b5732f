package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugAddr                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
	}

	// ServicesConfig holds the base URLs of the internal platform services
	// the evaluation engine collaborates with.
	ServicesConfig struct {
		ProgressBaseURL    string
		CertificateBaseURL string
		Timeout            time.Duration
	}

	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		Build            string
		SecretKey        string
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Services ServicesConfig
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

// NewConfig loads the application configuration from the environment,
// optionally seeded by a config/.env.<env> file.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Tathmini")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "v7dm+z(qxh3=k2_ae&u9!0yrn$5)gw4#cs8^jp6fb1%tol*i-e")
	conf.SetDefault("frontendBaseUrl", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverDebugAddr", ":8001")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbUser", "postgres")
	conf.SetDefault("dbPassword", "")
	conf.SetDefault("dbName", "tathmini")
	conf.SetDefault("dbDisableTls", true)
	conf.SetDefault("progressBaseUrl", "http://localhost:8010")
	conf.SetDefault("certificateBaseUrl", "http://localhost:8020")
	conf.SetDefault("servicesTimeout", 10*time.Second)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:          conf.GetString("appName"),
		Env:              env,
		Debug:            conf.GetBool("debug"),
		TestMode:         env == "TEST",
		Build:            conf.GetString("build"),
		SecretKey:        conf.GetString("secretKey"),
		WorkDir:          wd,
		FrontendBaseURL:  conf.GetString("frontendBaseUrl"),
		DefaultFromEmail: mail.Address{Address: conf.GetString("defaultFromEmail")},
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Addr:                      conf.GetString("serverAddr"),
			DebugAddr:                 conf.GetString("serverDebugAddr"),
			ShutdownTimeout:           conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetString("dbPort"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			Name:          conf.GetString("dbName"),
			DisableTLS:    conf.GetBool("dbDisableTls"),
		},
		Services: ServicesConfig{
			ProgressBaseURL:    conf.GetString("progressBaseUrl"),
			CertificateBaseURL: conf.GetString("certificateBaseUrl"),
			Timeout:            conf.GetDuration("servicesTimeout"),
		},
	}
}
