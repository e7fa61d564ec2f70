package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/fivetwenty-io/pagedrest/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	URL        string        `json:"url,omitempty"        yaml:"url,omitempty"`
	User       string        `json:"user,omitempty"       yaml:"user,omitempty"`
	Password   string        `json:"password,omitempty"   yaml:"password,omitempty"`
	Production bool          `json:"production"           yaml:"production"`
	Output     string        `json:"output,omitempty"     yaml:"output,omitempty"`
	LogFormat  string        `json:"log_format,omitempty" yaml:"log_format,omitempty"`
	Cache      CacheSettings `json:"cache"                yaml:"cache"`
}

// CacheSettings selects and configures the response cache backend.
type CacheSettings struct {
	Type       string `json:"type,omitempty"        yaml:"type,omitempty"`
	Codec      string `json:"codec,omitempty"       yaml:"codec,omitempty"`
	MaxSize    int    `json:"max_size,omitempty"    yaml:"max_size,omitempty"`
	RedisAddr  string `json:"redis_addr,omitempty"  yaml:"redis_addr,omitempty"`
	RedisDB    int    `json:"redis_db,omitempty"    yaml:"redis_db,omitempty"`
	NATSURL    string `json:"nats_url,omitempty"    yaml:"nats_url,omitempty"`
	NATSBucket string `json:"nats_bucket,omitempty" yaml:"nats_bucket,omitempty"`
}

// configField reads and writes one settable key. Setting "" resets the
// field to its zero value.
type configField struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringField(field func(*Config) *string) configField {
	return configField{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, value string) error {
			*field(c) = value

			return nil
		},
	}
}

func intField(field func(*Config) *int) configField {
	return configField{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, value string) error {
			if value == "" {
				*field(c) = 0

				return nil
			}

			parsed, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid integer %q: %w", value, err)
			}

			*field(c) = parsed

			return nil
		},
	}
}

var configFields = map[string]configField{
	"url":      stringField(func(c *Config) *string { return &c.URL }),
	"user":     stringField(func(c *Config) *string { return &c.User }),
	"password": stringField(func(c *Config) *string { return &c.Password }),
	"production": {
		get: func(c *Config) string { return strconv.FormatBool(c.Production) },
		set: func(c *Config, value string) error {
			if value == "" {
				c.Production = false

				return nil
			}

			parsed, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid boolean %q: %w", value, err)
			}

			c.Production = parsed

			return nil
		},
	},
	"output":            stringField(func(c *Config) *string { return &c.Output }),
	"log_format":        stringField(func(c *Config) *string { return &c.LogFormat }),
	"cache.type":        stringField(func(c *Config) *string { return &c.Cache.Type }),
	"cache.codec":       stringField(func(c *Config) *string { return &c.Cache.Codec }),
	"cache.max_size":    intField(func(c *Config) *int { return &c.Cache.MaxSize }),
	"cache.redis_addr":  stringField(func(c *Config) *string { return &c.Cache.RedisAddr }),
	"cache.redis_db":    intField(func(c *Config) *int { return &c.Cache.RedisDB }),
	"cache.nats_url":    stringField(func(c *Config) *string { return &c.Cache.NATSURL }),
	"cache.nats_bucket": stringField(func(c *Config) *string { return &c.Cache.NATSBucket }),
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage pagedrest CLI configuration stored in $HOME/.pagedrest/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration with the password masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := maskConfig(loadConfig())

			return renderStructured(cmd.OutOrStdout(), viper.GetString("output"), config, func(w io.Writer) error {
				return displayConfigTable(w, config)
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + configKeyList(),
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config, configFilePath())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config, configFilePath())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

// loadConfig builds the effective configuration from flags, environment and
// the config file.
func loadConfig() *Config {
	return &Config{
		URL:        viper.GetString("url"),
		User:       viper.GetString("user"),
		Password:   viper.GetString("password"),
		Production: viper.GetBool("production"),
		Output:     viper.GetString("output"),
		LogFormat:  viper.GetString("log_format"),
		Cache: CacheSettings{
			Type:       viper.GetString("cache.type"),
			Codec:      viper.GetString("cache.codec"),
			MaxSize:    viper.GetInt("cache.max_size"),
			RedisAddr:  viper.GetString("cache.redis_addr"),
			RedisDB:    viper.GetInt("cache.redis_db"),
			NATSURL:    viper.GetString("cache.nats_url"),
			NATSBucket: viper.GetString("cache.nats_bucket"),
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	field, ok := configFields[key]
	if !ok {
		return fmt.Errorf("%w: %s (valid keys: %s)", constants.ErrUnknownConfigKey, key, configKeyList())
	}

	return field.set(config, value)
}

func configKeyList() string {
	keys := make([]string, 0, len(configFields))
	for key := range configFields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	encoded, _ := json.Marshal(keys)

	return string(encoded)
}

func maskConfig(config *Config) *Config {
	masked := *config
	if masked.Password != "" {
		masked.Password = constants.MaskedSecret
	}

	return &masked
}

func displayConfigTable(w io.Writer, config *Config) error {
	keys := make([]string, 0, len(configFields))
	for key := range configFields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.Header("Key", "Value")

	for _, key := range keys {
		_ = table.Append([]string{key, configFields[key].get(config)})
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// configFilePath returns the file in use, or $HOME/.pagedrest/config.yml.
func configFilePath() string {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return filepath.Join(home, ".pagedrest", "config.yml")
}

func saveConfigStruct(config *Config, configFile string) error {
	err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
