// Package config defines the server configuration and loads it from a YAML
// file, an optional .env file and LEAVE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/timeoff"
)

// EnvPrefix is prepended to every environment override, e.g.
// LEAVE_AUTH_JWT_SECRET overrides auth.jwt_secret.
const EnvPrefix = "LEAVE"

// Configuration holds all configuration for the leave server.
type Configuration struct {
	Server    Server
	Database  Database
	Auth      Auth
	Policy    Policy
	CORS      CORS
	RateLimit RateLimit `mapstructure:"rate_limit"`
	Log       Log
}

type Server struct {
	Port            int
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	StaticDir       string        `mapstructure:"static_dir"`

	// TrustedProxies lists proxy IPs or CIDR ranges whose X-Forwarded-For
	// and X-Real-IP headers are honoured.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type Database struct {
	Path string
}

type Auth struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Users     []User
}

// User declares one login. PasswordHash is a bcrypt hash.
type User struct {
	Username     string
	PasswordHash string `mapstructure:"password_hash"`
	Name         string
	Role         string
	EmployeeID   string `mapstructure:"employee_id"`
}

// Policy tunes the accrual engine.
type Policy struct {
	MonthlyAccrual string `mapstructure:"monthly_accrual"`
	WaitingMonths  int    `mapstructure:"waiting_months"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimit throttles login attempts per client IP.
type RateLimit struct {
	LoginPerSecond float64 `mapstructure:"login_per_second"`
	LoginBurst     int     `mapstructure:"login_burst"`
}

type Log struct {
	Level       string
	Development bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.static_dir", "./web/dist")
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("database.path", "leave.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("policy.monthly_accrual", timeoff.DefaultMonthlyAccrual.String())
	v.SetDefault("policy.waiting_months", timeoff.DefaultWaitingMonths)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("rate_limit.login_per_second", 1.0)
	v.SetDefault("rate_limit.login_burst", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// LoadConfiguration reads configPath (optional; "" skips the file), then
// applies .env and environment overrides, and validates the result.
func LoadConfiguration(configPath string) (*Configuration, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks the settings that would otherwise fail at request time.
func (c *Configuration) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if _, err := c.Policy.Build(); err != nil {
		return err
	}
	if _, err := c.Server.TrustedProxyPrefixes(); err != nil {
		return err
	}
	for _, u := range c.Auth.Users {
		if !auth.Role(u.Role).Valid() {
			return fmt.Errorf("auth.users: %q has unknown role %q", u.Username, u.Role)
		}
	}
	return nil
}

// TrustedProxyPrefixes parses server.trusted_proxies. Bare IPs become
// single-address prefixes.
func (s Server) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(s.TrustedProxies))
	for _, entry := range s.TrustedProxies {
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("server.trusted_proxies: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("server.trusted_proxies: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Build converts the policy settings into an engine policy.
func (p Policy) Build() (timeoff.Policy, error) {
	rate, err := decimal.NewFromString(p.MonthlyAccrual)
	if err != nil {
		return timeoff.Policy{}, fmt.Errorf("policy.monthly_accrual: %w", err)
	}
	if !rate.IsPositive() {
		return timeoff.Policy{}, errors.New("policy.monthly_accrual must be positive")
	}
	if p.WaitingMonths <= 0 {
		return timeoff.Policy{}, errors.New("policy.waiting_months must be positive")
	}
	return timeoff.NewPolicy(rate, p.WaitingMonths), nil
}

// AuthUsers converts the configured users for auth.NewAuthenticator.
func (a Auth) AuthUsers() []auth.User {
	users := make([]auth.User, len(a.Users))
	for i, u := range a.Users {
		users[i] = auth.User{
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			Name:         u.Name,
			Role:         auth.Role(u.Role),
			EmployeeID:   u.EmployeeID,
		}
	}
	return users
}
