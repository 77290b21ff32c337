package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"calltree/callgraph"
	"calltree/constants/lipgloss"
	"calltree/search"
)

// Config represents the structure of the configuration file.
type Config struct {
	Version          string   `mapstructure:"version"`
	Theme            string   `mapstructure:"theme"`
	EnableCache      bool     `mapstructure:"enable_cache"`
	CacheDir         string   `mapstructure:"cache_dir"`
	Extensions       []string `mapstructure:"extensions"`
	IgnoreGlobs      []string `mapstructure:"ignore_globs"`
	Blacklist        []string `mapstructure:"blacklist"`
	TrivialThreshold int      `mapstructure:"trivial_threshold"`
	LengthThreshold  int      `mapstructure:"length_threshold"`
	Workers          int      `mapstructure:"workers"`
}

// DefaultConfig values.
var DefaultConfig = Config{
	Version:          "1.0.0",
	Theme:            "dracula",
	EnableCache:      true,
	CacheDir:         ".calltree",
	Extensions:       []string{"c", "cc", "cpp", "cxx", "h", "hpp", "hxx", "inl"},
	IgnoreGlobs:      search.DefaultIgnoreGlobs,
	Blacklist:        callgraph.DefaultBlacklist,
	TrivialThreshold: 100,
	LengthThreshold:  4,
	Workers:          10,
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) *Config {
	var config *Config

	setDefaults()

	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading config file: %v", err)))
			os.Exit(1)
		}
	} else {
		viper.SetConfigName("calltree-config")
		viper.AddConfigPath(cwd)

		// Support both JSON and YAML formats
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigType("json")
			_ = viper.ReadInConfig() // fall back to defaults silently
		}
	}

	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Unable to decode into struct: %v", err)))
		os.Exit(1)
	}

	return config
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("theme", DefaultConfig.Theme)
	viper.SetDefault("enable_cache", DefaultConfig.EnableCache)
	viper.SetDefault("cache_dir", DefaultConfig.CacheDir)
	viper.SetDefault("extensions", DefaultConfig.Extensions)
	viper.SetDefault("ignore_globs", DefaultConfig.IgnoreGlobs)
	viper.SetDefault("blacklist", DefaultConfig.Blacklist)
	viper.SetDefault("trivial_threshold", DefaultConfig.TrivialThreshold)
	viper.SetDefault("length_threshold", DefaultConfig.LengthThreshold)
	viper.SetDefault("workers", DefaultConfig.Workers)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("theme", "THEME")
	_ = viper.BindEnv("enable_cache", "ENABLE_CACHE")
	_ = viper.BindEnv("cache_dir", "CACHE_DIR")
	_ = viper.BindEnv("extensions", "EXTENSIONS")
	_ = viper.BindEnv("trivial_threshold", "TRIVIAL_THRESHOLD")
	_ = viper.BindEnv("length_threshold", "LENGTH_THRESHOLD")
	_ = viper.BindEnv("workers", "WORKERS")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("enable_cache", rootCmd.PersistentFlags().Lookup("enable_cache"))
	_ = viper.BindPFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache_dir"))
	_ = viper.BindPFlag("extensions", rootCmd.PersistentFlags().Lookup("extensions"))
	_ = viper.BindPFlag("ignore_globs", rootCmd.PersistentFlags().Lookup("ignore_globs"))
	_ = viper.BindPFlag("trivial_threshold", rootCmd.PersistentFlags().Lookup("trivial_threshold"))
	_ = viper.BindPFlag("length_threshold", rootCmd.PersistentFlags().Lookup("length_threshold"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Syntax highlighting theme for the 'show' subcommand (e.g., 'dracula', 'monokai').")
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.EnableCache, "Enable or disable the on-disk call graph cache.")
	rootCmd.PersistentFlags().String("cache_dir", DefaultConfig.CacheDir, "Directory holding the persisted call graph cache.")
	rootCmd.PersistentFlags().StringSlice("extensions", DefaultConfig.Extensions, "Source file extensions scanned for function definitions.")
	rootCmd.PersistentFlags().StringSlice("ignore_globs", DefaultConfig.IgnoreGlobs, "Glob patterns excluded from the corpus (tests, benchmarks, build output, vendored code).")
	rootCmd.PersistentFlags().Int("trivial_threshold", DefaultConfig.TrivialThreshold, "A callee called more often than this across the corpus is dropped as noise.")
	rootCmd.PersistentFlags().Int("length_threshold", DefaultConfig.LengthThreshold, "A callee name shorter than this is dropped as noise.")
	rootCmd.PersistentFlags().Int("workers", DefaultConfig.Workers, "Number of concurrent sanitizer file groups.")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}
