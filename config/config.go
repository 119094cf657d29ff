package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Tunables that have no command-line flag. They can still be changed
// through the config file.
const (
	DefaultKeep           = 2
	DefaultPrefix         = "backup"
	DefaultListenerPort   = 3333
	DefaultSettleDelay    = time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultPingTimeout    = 5 * time.Second
)

// Duration decodes TOML strings like "10s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config carries the settings for one replication run. It is assembled
// once from defaults, the config file, and flags, then passed by value;
// components never mutate it.
type Config struct {
	Source    string `toml:"-"`
	Dest      string `toml:"-"`
	Remote    string `toml:"-"`
	Transport string `toml:"-"`

	Recursive  bool `toml:"-"`
	Properties bool `toml:"-"`
	Force      bool `toml:"-"`
	DryRun     bool `toml:"-"`
	Verbose    int  `toml:"-"`

	Keep           int      `toml:"keep"`
	Prefix         string   `toml:"prefix"`
	ListenerPort   int      `toml:"listener_port"`
	SettleDelay    Duration `toml:"settle_delay"`
	ConnectTimeout Duration `toml:"connect_timeout"`
	PingTimeout    Duration `toml:"ping_timeout"`
	LogFile        string   `toml:"log_file"`
}

var pathHierarchy = []string{
	"/etc/zfs-send-receive.toml",
	"/usr/local/etc/zfs-send-receive.toml",
	"/opt/local/etc/zfs-send-receive.toml",
}

func Default() Config {
	return Config{
		Keep:           DefaultKeep,
		Prefix:         DefaultPrefix,
		ListenerPort:   DefaultListenerPort,
		SettleDelay:    Duration(DefaultSettleDelay),
		ConnectTimeout: Duration(DefaultConnectTimeout),
		PingTimeout:    Duration(DefaultPingTimeout),
	}
}

// Load returns the defaults overlaid with the first config file found.
// An explicitly given path must exist; the hierarchy is optional.
func Load(path string) (Config, error) {
	conf := Default()

	paths := pathHierarchy
	if path != "" {
		paths = []string{path}
	}

	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil && os.IsNotExist(err) && path == "" {
			continue
		} else if err != nil {
			return conf, fmt.Errorf("opening config '%s': %w", p, err)
		}
		defer f.Close()

		if _, err := toml.NewDecoder(f).Decode(&conf); err != nil {
			return conf, fmt.Errorf("decoding '%s': %w", p, err)
		}
		return conf, nil
	}

	return conf, nil
}

func (conf *Config) Validate() error {
	switch {
	case conf.Source == "":
		return fmt.Errorf("source dataset is required")
	case conf.Dest == "":
		return fmt.Errorf("destination dataset is required")
	case conf.Remote == "":
		return fmt.Errorf("remote host is required")
	case conf.Transport == "":
		return fmt.Errorf("transport is required")
	case conf.Prefix == "":
		return fmt.Errorf("snapshot prefix must not be empty")
	case conf.Keep < 0:
		return fmt.Errorf("keep must not be negative")
	case conf.ListenerPort <= 0 || conf.ListenerPort > 65535:
		return fmt.Errorf("listener port %d out of range", conf.ListenerPort)
	}
	return nil
}
