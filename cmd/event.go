package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"vmsgate/pkg/models"
)

var (
	evConnector   string
	evCaption     string
	evDescription string
	evSource      string
	evCameras     []string
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Create VMS events",
}

var eventCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a generic event on a connector",
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := newRuntime()
		if err != nil {
			log.Fatal(err)
		}
		defer rt.Close()

		ev := models.EventRequest{
			Source:      evSource,
			Caption:     evCaption,
			Description: evDescription,
		}
		if len(evCameras) > 0 {
			ev.Metadata = &models.EventMetadata{CameraRefs: evCameras}
		}

		if err := rt.dispatcher.CreateEvent(context.Background(), evConnector, &ev); err != nil {
			log.Fatalf("Failed to create event: %v", err)
		}
		fmt.Println("Event created.")
	},
}

func init() {
	rootCmd.AddCommand(eventCmd)
	eventCmd.AddCommand(eventCreateCmd)

	eventCreateCmd.Flags().StringVar(&evConnector, "connector", "", "Connector id")
	eventCreateCmd.Flags().StringVar(&evCaption, "caption", "", "Event caption")
	eventCreateCmd.Flags().StringVar(&evDescription, "description", "", "Event description")
	eventCreateCmd.Flags().StringVar(&evSource, "source", "vmsgate", "Event source label")
	eventCreateCmd.Flags().StringSliceVar(&evCameras, "camera", nil, "Associated camera id (repeatable)")

	_ = eventCreateCmd.MarkFlagRequired("connector")
	_ = eventCreateCmd.MarkFlagRequired("caption")
}
