package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/karte/internal/logging"
	"github.com/mesh-intelligence/karte/internal/paths"
	"github.com/mesh-intelligence/karte/internal/uploads"
	"github.com/mesh-intelligence/karte/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "KARTE"

	// Config keys.
	cfgKeyDataDir    = "data_dir"
	cfgKeyDBFile     = "db_file"
	cfgKeyUploadsDir = "uploads_dir"
	cfgKeyListen     = "listen"
	cfgKeyLogLevel   = "log_level"
	cfgKeyLogFormat  = "log_format"
	cfgKeyLogFile    = "log_file"

	defaultListen   = "127.0.0.1:8501"
	defaultLogLevel = "info"
)

// envKeys are the keys KARTE_<KEY> may override. data_dir is resolved
// separately by paths.ResolveDataDir, where config.yaml outranks the
// environment.
var envKeys = []string{
	cfgKeyDBFile,
	cfgKeyUploadsDir,
	cfgKeyListen,
	cfgKeyLogLevel,
	cfgKeyLogFormat,
	cfgKeyLogFile,
}

// settings is the resolved configuration of one invocation.
type settings struct {
	ConfigDir  string
	DataDir    string
	DBFile     string
	UploadsDir string
	Listen     string
	LogLevel   string
	LogFormat  string
	LogFile    string
}

// storeConfig returns the record store configuration.
func (s settings) storeConfig() types.Config {
	return types.Config{
		Backend: types.BackendSQLite,
		DataDir: s.DataDir,
		DBFile:  s.DBFile,
	}
}

// uploadsDir returns the uploads directory handle.
func (s settings) uploadsDir() *uploads.Dir {
	return uploads.New(s.DataDir, s.UploadsDir)
}

// configFile holds the structure written to config.yaml.
type configFile struct {
	DataDir    string `yaml:"data_dir,omitempty"`
	DBFile     string `yaml:"db_file"`
	UploadsDir string `yaml:"uploads_dir"`
	Listen     string `yaml:"listen"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
}

func defaultConfigFile() configFile {
	return configFile{
		DBFile:     types.DefaultDBFile,
		UploadsDir: uploads.DefaultDir,
		Listen:     defaultListen,
		LogLevel:   defaultLogLevel,
		LogFormat:  logging.FormatConsole,
	}
}

// newViper returns a viper instance with defaults and environment
// overrides for configDir. A missing config.yaml is not an error.
func newViper(configDir string) (*viper.Viper, error) {
	d := defaultConfigFile()

	v := viper.New()
	v.SetDefault(cfgKeyDBFile, d.DBFile)
	v.SetDefault(cfgKeyUploadsDir, d.UploadsDir)
	v.SetDefault(cfgKeyListen, d.Listen)
	v.SetDefault(cfgKeyLogLevel, d.LogLevel)
	v.SetDefault(cfgKeyLogFormat, d.LogFormat)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// loadSettings resolves the configuration for cmd: flags, then
// config.yaml and KARTE_* variables, then defaults.
func loadSettings(cmd *cobra.Command, flags rootFlags) (settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve config dir: %w", err)
	}

	v, err := newViper(configDir)
	if err != nil {
		return settings{}, err
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil {
		if err := v.BindPFlag(cfgKeyLogLevel, f); err != nil {
			return settings{}, err
		}
	}
	if f := cmd.Flags().Lookup("listen"); f != nil {
		if err := v.BindPFlag(cfgKeyListen, f); err != nil {
			return settings{}, err
		}
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir), configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}

	return settings{
		ConfigDir:  configDir,
		DataDir:    dataDir,
		DBFile:     v.GetString(cfgKeyDBFile),
		UploadsDir: v.GetString(cfgKeyUploadsDir),
		Listen:     v.GetString(cfgKeyListen),
		LogLevel:   v.GetString(cfgKeyLogLevel),
		LogFormat:  v.GetString(cfgKeyLogFormat),
		LogFile:    v.GetString(cfgKeyLogFile),
	}, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. It reports whether a file was written.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	cfg := defaultConfigFile()
	cfg.DataDir = dataDir
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# karte configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
