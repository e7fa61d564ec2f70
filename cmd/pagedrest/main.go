package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/pagedrest/cmd/pagedrest/commands"
	"github.com/fivetwenty-io/pagedrest/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pagedrest",
	Short: "Paginated REST API CLI",
	Long: `A command-line interface for a paginated REST API.

GET requests follow "nextPage" locators and merge every page into a single
result. Responses are cached for the lifetime of the command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.pagedrest/config.yml)")
	rootCmd.PersistentFlags().String("url", "", "API base URL (overrides --production)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "basic-auth user")
	rootCmd.PersistentFlags().StringP("password", "p", "", "basic-auth password (prompted when omitted)")
	rootCmd.PersistentFlags().Bool("production", false, "use the production API instead of the sandbox")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatJSON, "output format (json, yaml, table)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log HTTP requests and cache activity")
	rootCmd.PersistentFlags().String("log-format", constants.LogFormatText, "log format (text, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	_ = viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
	_ = viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
	_ = viper.BindPFlag("production", rootCmd.PersistentFlags().Lookup("production"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewPutCommand())
	rootCmd.AddCommand(commands.NewPostCommand())
	rootCmd.AddCommand(commands.NewDeleteCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.pagedrest/config.yml
		viper.AddConfigPath(filepath.Join(home, ".pagedrest"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match, e.g. PAGEDREST_CACHE_TYPE
	viper.SetEnvPrefix("PAGEDREST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
