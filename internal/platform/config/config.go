package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix      = "TDRILL_"
	configFileName = "config.yaml"
)

type Config struct {
	DataDir      string `yaml:"-"`
	MediaRoot    string `yaml:"media_root"`
	ManifestPath string `yaml:"manifest_path"`
	DBPath       string `yaml:"db_path"`
	BoltPath     string `yaml:"bolt_path"`
	CacheDir     string `yaml:"cache_dir"`
	PrefsPath    string `yaml:"prefs_path"`
	LogFile      string `yaml:"log_file"`
	LogLevel     string `yaml:"log_level"`
	MetricsAddr  string `yaml:"metrics_addr"`
}

// DefaultDataDir resolves $TDRILL_DATA, falling back to ~/.tdrill.
func DefaultDataDir() string {
	if dir := strings.TrimSpace(os.Getenv(EnvPrefix + "DATA")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tdrill"
	}
	return filepath.Join(home, ".tdrill")
}

// New layers defaults, <data>/config.yaml, .env files and TDRILL_* variables,
// in increasing priority.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := defaults(dataDir)

	if err := cfg.mergeFile(filepath.Join(dataDir, configFileName)); err != nil {
		return Config{}, err
	}
	env, err := readDotEnv(filepath.Join(dataDir, ".env"), ".env")
	if err != nil {
		return Config{}, err
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	cfg.mergeEnv(env)
	cfg.resolvePaths()
	return cfg, nil
}

func defaults(dataDir string) Config {
	return Config{
		DataDir:      dataDir,
		MediaRoot:    "media",
		ManifestPath: "manifest.yaml",
		DBPath:       "tdrill.db",
		BoltPath:     "media.bolt",
		CacheDir:     "cache",
		PrefsPath:    "prefs.yaml",
		LogFile:      "tdrill.log",
		LogLevel:     "info",
	}
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func readDotEnv(paths ...string) (map[string]string, error) {
	out := map[string]string{}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range values {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	return out, nil
}

func (c *Config) mergeEnv(env map[string]string) {
	fields := map[string]*string{
		"MEDIA_ROOT":    &c.MediaRoot,
		"MANIFEST_PATH": &c.ManifestPath,
		"DB_PATH":       &c.DBPath,
		"BOLT_PATH":     &c.BoltPath,
		"CACHE_DIR":     &c.CacheDir,
		"PREFS_PATH":    &c.PrefsPath,
		"LOG_FILE":      &c.LogFile,
		"LOG_LEVEL":     &c.LogLevel,
		"METRICS_ADDR":  &c.MetricsAddr,
	}
	for key, dst := range fields {
		if v, ok := env[EnvPrefix+key]; ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
}

// resolvePaths anchors relative paths at the data dir.
func (c *Config) resolvePaths() {
	for _, p := range []*string{&c.MediaRoot, &c.ManifestPath, &c.DBPath, &c.BoltPath, &c.CacheDir, &c.PrefsPath, &c.LogFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.DataDir, *p)
		}
	}
}
