package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Settings struct {
	Server      ServerSettings      `mapstructure:"server"`
	DB          DBSettings          `mapstructure:"db"`
	JWT         JWTSettings         `mapstructure:"jwt"`
	CORS        CORSSettings        `mapstructure:"cors"`
	Scheduler   SchedulerSettings   `mapstructure:"scheduler"`
	Twilio      TwilioSettings      `mapstructure:"twilio"`
	MercadoPago MercadoPagoSettings `mapstructure:"mercadopago"`
	Log         LogSettings         `mapstructure:"log"`
	Uploads     UploadSettings      `mapstructure:"uploads"`
}

type ServerSettings struct {
	Port string `mapstructure:"port"`
}

type DBSettings struct {
	Driver       string `mapstructure:"driver"` // postgres, sqlite
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type JWTSettings struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

func (j JWTSettings) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

type CORSSettings struct {
	Origins []string `mapstructure:"origins"`
}

type SchedulerSettings struct {
	OverdueSpec string `mapstructure:"overdue_spec"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TwilioSettings struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
}

func (t TwilioSettings) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != ""
}

type MercadoPagoSettings struct {
	AccessToken string `mapstructure:"access_token"`
	Mock        bool   `mapstructure:"mock"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

type UploadSettings struct {
	Dir string `mapstructure:"dir"`
}

// App holds the settings the process was started with.
var App = Defaults()

func Defaults() *Settings {
	return &Settings{
		Server: ServerSettings{Port: "8080"},
		DB:     DBSettings{Driver: "postgres", MaxOpenConns: 25, MaxIdleConns: 10},
		JWT:    JWTSettings{ExpiryHours: 24},
		CORS:   CORSSettings{Origins: []string{"http://localhost:3000"}},
		Scheduler: SchedulerSettings{
			OverdueSpec: "0 9 * * *",
			Enabled:     true,
		},
		MercadoPago: MercadoPagoSettings{Mock: true},
		Log:         LogSettings{Level: "info"},
		Uploads:     UploadSettings{Dir: "uploads"},
	}
}

// LoadSettings reads config.yaml (optional) and FIELDPRO_* environment
// variables on top of the defaults.
func LoadSettings() (*Settings, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME/.fieldpro/")
	v.AddConfigPath("/etc/fieldpro/")

	v.SetEnvPrefix("FIELDPRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("db.driver", d.DB.Driver)
	v.SetDefault("db.url", "")
	v.SetDefault("db.max_open_conns", d.DB.MaxOpenConns)
	v.SetDefault("db.max_idle_conns", d.DB.MaxIdleConns)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry_hours", d.JWT.ExpiryHours)
	v.SetDefault("cors.origins", d.CORS.Origins)
	v.SetDefault("scheduler.overdue_spec", d.Scheduler.OverdueSpec)
	v.SetDefault("scheduler.enabled", d.Scheduler.Enabled)
	v.SetDefault("twilio.account_sid", "")
	v.SetDefault("twilio.auth_token", "")
	v.SetDefault("twilio.from", "")
	v.SetDefault("mercadopago.access_token", "")
	v.SetDefault("mercadopago.mock", d.MercadoPago.Mock)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("uploads.dir", d.Uploads.Dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if s.JWT.Secret == "" {
		return nil, errors.New("jwt.secret is required (FIELDPRO_JWT_SECRET)")
	}
	return &s, nil
}
