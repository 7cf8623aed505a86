package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// Config is the on-disk Helios configuration shared by the client and host.
type Config struct {
	HostAddr    string `toml:"host_addr" jsonschema:"description=Address of the host the client dials (host:port or ws:// URL),default=127.0.0.1:7488"`
	Listen      string `toml:"listen" jsonschema:"description=Address the host listens on,default=127.0.0.1:7488"`
	AlmanacPath string `toml:"almanac_path" jsonschema:"description=YAML almanac served by the host,default=~/.config/helios/almanac.yaml"`
	LogDir      string `toml:"log_dir" jsonschema:"description=Directory for the client log,default=~/.local/share/helios/logs"`
	Location    string `toml:"location" jsonschema:"description=Place name shown in the header,default=Berlin"`
	TimeZone    string `toml:"time_zone" jsonschema:"description=IANA zone the host uses for today,default=Local"`
}

const (
	defaultConfigPath  = "~/.config/helios/config.toml"
	defaultHostAddr    = "127.0.0.1:7488"
	defaultListen      = "127.0.0.1:7488"
	defaultAlmanacPath = "~/.config/helios/almanac.yaml"
	defaultLogDir      = "~/.local/share/helios/logs"
	defaultLocation    = "Berlin"
	defaultTimeZone    = "Local"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		HostAddr:    defaultHostAddr,
		Listen:      defaultListen,
		AlmanacPath: mustExpand(defaultAlmanacPath),
		LogDir:      mustExpand(defaultLogDir),
		Location:    defaultLocation,
		TimeZone:    defaultTimeZone,
	}
}

// Load locates and parses the config at path, falling back to defaults when missing.
func Load(fs afero.Fs, path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	bytes, err := afero.ReadFile(fs, resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw Config
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		HostAddr:    orDefault(raw.HostAddr, defaultHostAddr),
		Listen:      orDefault(raw.Listen, defaultListen),
		AlmanacPath: mustExpand(orDefault(raw.AlmanacPath, defaultAlmanacPath)),
		LogDir:      mustExpand(orDefault(raw.LogDir, defaultLogDir)),
		Location:    orDefault(raw.Location, defaultLocation),
		TimeZone:    orDefault(raw.TimeZone, defaultTimeZone),
	}
	return cfg, nil
}

// LogPath returns the path of the client log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/helios.log")
	}
	return filepath.Join(c.LogDir, "helios.log")
}

// Zone resolves TimeZone. "Local" and empty mean the system zone.
func (c Config) Zone() (*time.Location, error) {
	name := strings.TrimSpace(c.TimeZone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}
	return loc, nil
}

// ExpandPath expands a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
