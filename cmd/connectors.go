package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vmsgate/pkg/models"
)

var (
	connType     string
	connID       string
	connName     string
	connUser     string
	connPass     string
	connSystemID string
	connHost     string
	connPort     int
	connNoTLS    bool
)

var connectorsCmd = &cobra.Command{
	Use:   "connectors",
	Short: "Manage stored VMS connectors",
}

var connectorsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a new connector configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := models.ConnectorConfig{
			ID:   connID,
			Name: connName,
			Type: models.DeploymentType(connType),
			Credentials: models.Credentials{
				Username: connUser,
				Password: connPass,
			},
		}
		if cfg.ID == "" {
			cfg.ID = uuid.NewString()
		}
		switch cfg.Type {
		case models.DeploymentCloud:
			cfg.Cloud = &models.CloudConfig{SelectedSystemID: connSystemID}
		case models.DeploymentLocal:
			cfg.Local = &models.LocalConfig{Host: connHost, Port: connPort, IgnoreTLSErrors: connNoTLS}
		}
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid connector: %v", err)
		}

		rt, err := newRuntime()
		if err != nil {
			log.Fatal(err)
		}
		defer rt.Close()

		if err := rt.store.Save(context.Background(), &cfg); err != nil {
			log.Fatalf("Failed to save connector: %v", err)
		}
		fmt.Printf("Connector %s saved.\n", cfg.ID)
	},
}

var connectorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored connectors",
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := newRuntime()
		if err != nil {
			log.Fatal(err)
		}
		defer rt.Close()

		cfgs, err := rt.store.List(context.Background())
		if err != nil {
			log.Fatalf("Failed to list connectors: %v", err)
		}
		printResult(cfgs, func() {
			for _, c := range cfgs {
				target := ""
				switch c.Type {
				case models.DeploymentCloud:
					target = c.Cloud.SelectedSystemID
				case models.DeploymentLocal:
					target = fmt.Sprintf("%s:%d", c.Local.Host, c.Local.Port)
				}
				fmt.Printf("%-36s  %-5s  %-20s  %s\n", c.ID, c.Type, target, c.Name)
			}
		})
	},
}

var connectorsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a stored connector",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := newRuntime()
		if err != nil {
			log.Fatal(err)
		}
		defer rt.Close()

		if err := rt.store.Delete(context.Background(), args[0]); err != nil {
			log.Fatalf("Failed to delete connector: %v", err)
		}
		fmt.Printf("Connector %s removed.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(connectorsCmd)
	connectorsCmd.AddCommand(connectorsAddCmd, connectorsListCmd, connectorsRemoveCmd)

	connectorsAddCmd.Flags().StringVar(&connType, "type", "", "Deployment type: cloud or local")
	connectorsAddCmd.Flags().StringVar(&connID, "id", "", "Connector id (generated if empty)")
	connectorsAddCmd.Flags().StringVar(&connName, "name", "", "Display name")
	connectorsAddCmd.Flags().StringVarP(&connUser, "username", "u", "", "VMS username")
	connectorsAddCmd.Flags().StringVarP(&connPass, "password", "p", "", "VMS password")
	connectorsAddCmd.Flags().StringVar(&connSystemID, "system-id", "", "Cloud system id (cloud only)")
	connectorsAddCmd.Flags().StringVar(&connHost, "host", "", "Appliance host (local only)")
	connectorsAddCmd.Flags().IntVar(&connPort, "port", 7001, "Appliance port (local only)")
	connectorsAddCmd.Flags().BoolVar(&connNoTLS, "ignore-tls-errors", false, "Skip TLS verification (local only, requires allow_insecure_transport)")

	_ = connectorsAddCmd.MarkFlagRequired("type")
	_ = connectorsAddCmd.MarkFlagRequired("username")
	_ = connectorsAddCmd.MarkFlagRequired("password")
}
