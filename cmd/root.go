package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vmsgate/internal/config"
)

var cfgFile string
var jsonOutput bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmsgate",
	Short: "Gateway for cloud-relay and on-prem VMS connectors",
	Long: `Manage VMS connectors and relay device info, events, bookmarks and
media through a single interface, whether the system is reached via the
vendor cloud relay or directly on the local network.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() { config.InitConfig(cfgFile) })

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vmsgate.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
}
