package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	resolveCmd "github.com/apexgp/race-engine/pkg/cmd/resolve"
	serverCmd "github.com/apexgp/race-engine/pkg/cmd/server"
	"github.com/apexgp/race-engine/pkg/config"
	"github.com/apexgp/race-engine/pkg/race/genai"
	"github.com/apexgp/race-engine/pkg/race/online"
	"github.com/apexgp/race-engine/version"
)

const envPrefix = "RDE"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "rde",
	Short:   "Race outcome resolution engine for the Apex GP manager game",
	Long:    ``,
	Version: version.FullVersion,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.rde.yml)")

	rootCmd.PersistentFlags().StringVar(&config.GenAIBaseURL, "genai-url",
		genai.DefaultBaseURL,
		"base URL of the generative text service")
	rootCmd.PersistentFlags().StringVar(&config.GenAIAPIKey, "genai-api-key",
		"",
		"API key for the generative text service (empty disables the path)")
	rootCmd.PersistentFlags().StringVar(&config.GenAIModel, "genai-model",
		genai.DefaultModel,
		"model used for race resolution")
	rootCmd.PersistentFlags().StringVar(&config.GenAITimeout, "genai-timeout",
		"30s",
		"timeout for a single generative request")
	rootCmd.PersistentFlags().StringVar(&config.NatsURL, "nats-url",
		"nats://localhost:4222",
		"URL of the NATS server used for online sessions")
	rootCmd.PersistentFlags().StringVar(&config.RoomBucket, "room-bucket",
		online.DefaultBucket,
		"KV bucket holding shared race results")
	rootCmd.PersistentFlags().StringVar(&config.PollInterval, "poll-interval",
		"2s",
		"interval for the non-host result poll")
	rootCmd.PersistentFlags().StringVar(&config.AwaitTimeout, "await-timeout",
		"2m",
		"max duration a non-host waits for the shared result")

	// add commands here
	rootCmd.AddCommand(resolveCmd.NewResolveCmd())
	rootCmd.AddCommand(serverCmd.NewServerCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".rde" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rde")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --genai-url to RDE_GENAI_URL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
