package config

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ErrInvalid is returned for malformed startup arguments.
var ErrInvalid = errors.New("invalid configuration")

// Keys shared by the cobra flags, the config file and the environment.
const (
	KeyHost           = "host"
	KeyMaxConcurrency = "mc"
	KeyNodePort       = "np"
	KeyActixPort      = "ap"
	KeyMonitor        = "monitor"
	KeyTime           = "time"
	KeyTool           = "tool"
	KeyWidth          = "width"
	KeyLogLevel       = "log-level"
)

// Defaults
const (
	DefaultHost           = "127.0.0.1"
	DefaultMaxConcurrency = 128
	DefaultNodePort       = 3000
	DefaultActixPort      = 3002
	DefaultTime           = 60
	DefaultTool           = "wrk"
	DefaultWidth          = 100
	DefaultLogLevel       = "info"

	// ToolBuiltin selects the in-process generator instead of a wrk binary.
	ToolBuiltin = "builtin"
)

// Config holds the sweep parameters. It is read-only once loaded.
type Config struct {
	Host            net.IP
	MaxConcurrency  uint16
	NodePort        uint16
	ActixPort       uint16
	Monitor         bool
	DurationSeconds uint16

	Tool       string
	ChartWidth int
	LogLevel   string
}

// Load builds a Config from the merged viper state (defaults, config file,
// environment, flags) and validates it.
func Load(v *viper.Viper) (Config, error) {
	hostStr := v.GetString(KeyHost)
	host := net.ParseIP(hostStr)
	if host == nil {
		return Config{}, errors.Wrapf(ErrInvalid, "host %q is not an IP address", hostStr)
	}

	mc, err := uint16Setting(v, KeyMaxConcurrency)
	if err != nil {
		return Config{}, err
	}
	np, err := uint16Setting(v, KeyNodePort)
	if err != nil {
		return Config{}, err
	}
	ap, err := uint16Setting(v, KeyActixPort)
	if err != nil {
		return Config{}, err
	}
	dur, err := uint16Setting(v, KeyTime)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Host:            host,
		MaxConcurrency:  mc,
		NodePort:        np,
		ActixPort:       ap,
		Monitor:         v.GetBool(KeyMonitor),
		DurationSeconds: dur,
		Tool:            v.GetString(KeyTool),
		ChartWidth:      v.GetInt(KeyWidth),
		LogLevel:        v.GetString(KeyLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// uint16Setting reads a uint16 setting, rejecting out of range values instead of
// letting them wrap.
func uint16Setting(v *viper.Viper, key string) (uint16, error) {
	n := v.GetInt64(key)
	if n < 0 || n > 65535 {
		return 0, errors.Wrapf(ErrInvalid, "%s=%d out of range 0..65535", key, n)
	}
	return uint16(n), nil
}

// Validate checks the cross-field constraints of a Config.
func (c Config) Validate() error {
	if c.Host == nil {
		return errors.Wrap(ErrInvalid, "host is required")
	}
	if c.DurationSeconds == 0 {
		return errors.Wrap(ErrInvalid, "time must be at least 1 second")
	}
	if c.NodePort == 0 || c.ActixPort == 0 {
		return errors.Wrap(ErrInvalid, "backend ports must be non-zero")
	}
	if c.ChartWidth <= 0 {
		return errors.Wrapf(ErrInvalid, "width must be positive, got %d", c.ChartWidth)
	}
	if c.Tool == "" {
		return errors.Wrap(ErrInvalid, "tool is required")
	}
	return nil
}

// BaseURL returns the tasks endpoint of a backend listening on port.
func (c Config) BaseURL(port uint16) string {
	return fmt.Sprintf("http://%s/tasks", net.JoinHostPort(c.Host.String(), fmt.Sprint(port)))
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyHost, DefaultHost)
	v.SetDefault(KeyMaxConcurrency, DefaultMaxConcurrency)
	v.SetDefault(KeyNodePort, DefaultNodePort)
	v.SetDefault(KeyActixPort, DefaultActixPort)
	v.SetDefault(KeyMonitor, false)
	v.SetDefault(KeyTime, DefaultTime)
	v.SetDefault(KeyTool, DefaultTool)
	v.SetDefault(KeyWidth, DefaultWidth)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
}
