// Package config wires flags, environment variables, and an optional TOML
// file into the settings chainrelayd needs to start the gateway. This is
// intentionally thin: spec.md places CLI/configuration setup out of scope,
// so this package exists only to get a Config populated, not to specify
// gateway behavior.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully-resolved set of startup settings for chainrelayd.
type Config struct {
	// ListenAddr is the address the gateway's HTTP listener binds to.
	ListenAddr string

	// AllowOrigin is the CORS allow-origin value echoed on every response.
	AllowOrigin string

	// PublishTimeout bounds how long the gateway waits for a bus reply.
	PublishTimeout time.Duration

	// BusBuffer is the channel capacity chanbus.New uses for the
	// loop-back dev/test bus.
	BusBuffer int

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
}

// defaults returns the baseline Config used when no flag, environment
// variable, or config file overrides a setting.
func defaults() Config {
	return Config{
		ListenAddr:     "127.0.0.1:8080",
		AllowOrigin:    "*",
		PublishTimeout: 30 * time.Second,
		BusBuffer:      256,
		LogLevel:       "info",
	}
}

// BindFlags registers chainrelayd's startup flags on fs and binds them into
// v, so that flag > environment > config-file > default precedence (the
// usual viper layering) resolves correctly when Load is later called.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) {
	d := defaults()
	fs.String("listen-addr", d.ListenAddr, "address the gateway listens on")
	fs.String("allow-origin", d.AllowOrigin, "CORS Access-Control-Allow-Origin value")
	fs.Duration("publish-timeout", d.PublishTimeout, "how long to wait for a bus reply before timing out")
	fs.Int("bus-buffer", d.BusBuffer, "buffer capacity of the loop-back dev bus")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn, or error")

	v.BindPFlags(fs)
}

// Load resolves a Config from v, which should already have had BindFlags
// applied and, if desired, SetConfigFile/ReadInConfig called against a TOML
// file and AutomaticEnv enabled for CHAINRELAY_-prefixed environment
// overrides.
func Load(v *viper.Viper) (Config, error) {
	cfg := defaults()
	if addr := v.GetString("listen-addr"); addr != "" {
		cfg.ListenAddr = addr
	}
	cfg.AllowOrigin = v.GetString("allow-origin")
	cfg.PublishTimeout = v.GetDuration("publish-timeout")
	cfg.BusBuffer = v.GetInt("bus-buffer")
	cfg.LogLevel = v.GetString("log-level")

	if cfg.PublishTimeout <= 0 {
		return cfg, fmt.Errorf("config: publish-timeout must be positive, got %s", cfg.PublishTimeout)
	}
	if cfg.BusBuffer < 0 {
		return cfg, fmt.Errorf("config: bus-buffer must be non-negative, got %d", cfg.BusBuffer)
	}
	return cfg, nil
}

// NewViper returns a *viper.Viper configured for chainrelayd's environment
// and file conventions: CHAINRELAY_-prefixed environment variables (with
// "-" mapped to "_"), and an optional chainrelay.toml in the working
// directory or /etc/chainrelay/.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("chainrelay")
	v.SetEnvKeyReplacer(envReplacer{})
	v.AutomaticEnv()

	v.SetConfigName("chainrelay")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/chainrelay/")
	return v
}

// envReplacer maps flag-style "-" separators to the "_" environment
// variables use, e.g. "publish-timeout" -> "CHAINRELAY_PUBLISH_TIMEOUT".
type envReplacer struct{}

func (envReplacer) Replace(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			out[i] = '_'
		} else {
			out[i] = s[i]
		}
	}
	return string(out)
}
