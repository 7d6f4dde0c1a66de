package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"vmsgate/internal/client"
)

var (
	devConnector string
	devDevice    string
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices on a connector, or show one device",
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := newRuntime()
		if err != nil {
			log.Fatal(err)
		}
		defer rt.Close()
		ctx := context.Background()

		if devDevice != "" {
			device, err := rt.dispatcher.GetDevice(ctx, client.ForConnector(devConnector), devDevice)
			if err != nil {
				log.Fatalf("Failed to get device: %v", err)
			}
			printResult(device, func() {
				transports := "none"
				if len(device.MediaStreams) > 0 {
					transports = strings.Join(device.MediaStreams[0].Transports, ",")
				}
				fmt.Printf("%s  server=%s  transports=%s  %s\n", device.ID, device.ServerID, transports, device.Name)
			})
			return
		}

		devices, err := rt.dispatcher.GetDevices(ctx, client.ForConnector(devConnector))
		if err != nil {
			log.Fatalf("Failed to list devices: %v", err)
		}
		printResult(devices, func() {
			for _, d := range devices {
				fmt.Printf("%-36s  %-12s  %s\n", d.ID, d.Status, d.Name)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().StringVar(&devConnector, "connector", "", "Connector id")
	devicesCmd.Flags().StringVar(&devDevice, "device", "", "Device id (show one device)")
	_ = devicesCmd.MarkFlagRequired("connector")
}
