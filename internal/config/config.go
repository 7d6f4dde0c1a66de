package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"vmsgate/pkg/logger"
)

// Defaults for the tunable knobs. The relay domain is the vendor's cloud
// relay; per-connector system ids become subdomains of it.
const (
	DefaultListenAddr      = ":8780"
	DefaultRelayDomain     = "relay.vmsproxy.com"
	DefaultTokenMarginSecs = 60
	DefaultStorePath       = "vmsgate.db"
	DefaultLogLevel        = "info"
	DefaultLogOutput       = "console"
)

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".vmsgate" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".vmsgate")
	}

	viper.SetDefault("listen_addr", DefaultListenAddr)
	viper.SetDefault("relay_domain", DefaultRelayDomain)
	viper.SetDefault("token_margin_seconds", DefaultTokenMarginSecs)
	viper.SetDefault("store_path", DefaultStorePath)
	viper.SetDefault("allow_insecure_transport", false)
	viper.SetDefault("log.level", DefaultLogLevel)
	viper.SetDefault("log.output", DefaultLogOutput)
	viper.SetDefault("log.file_path", "logs/vmsgate.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 28)

	viper.AutomaticEnv() // read in environment variables that match

	// A missing config file is fine; defaults and env vars apply.
	_ = viper.ReadInConfig()
}

func ListenAddr() string  { return viper.GetString("listen_addr") }
func RelayDomain() string { return viper.GetString("relay_domain") }
func StorePath() string   { return viper.GetString("store_path") }

// AllowInsecureTransport reports whether the skip-verify transport is
// constructed at startup. When false, connectors with ignoreTlsErrors set
// fail with a configuration error instead of silently validating TLS.
func AllowInsecureTransport() bool { return viper.GetBool("allow_insecure_transport") }

// TokenMargin is the safety margin a cached token must retain before
// expiry to be served without a network call.
func TokenMargin() time.Duration {
	return time.Duration(viper.GetInt("token_margin_seconds")) * time.Second
}

func LogConfig() logger.Config {
	return logger.Config{
		Level:      viper.GetString("log.level"),
		Output:     viper.GetString("log.output"),
		FilePath:   viper.GetString("log.file_path"),
		MaxSizeMB:  viper.GetInt("log.max_size_mb"),
		MaxBackups: viper.GetInt("log.max_backups"),
		MaxAgeDays: viper.GetInt("log.max_age_days"),
	}
}
