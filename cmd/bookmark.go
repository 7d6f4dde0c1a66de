package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"vmsgate/pkg/models"
)

var (
	bmConnector   string
	bmCamera      string
	bmName        string
	bmDescription string
	bmStartMs     int64
	bmDurationMs  int64
	bmTags        []string
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Create bookmarks on recorded footage",
}

var bookmarkCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a bookmark on a camera",
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := newRuntime()
		if err != nil {
			log.Fatal(err)
		}
		defer rt.Close()

		bm := models.Bookmark{
			Name:        bmName,
			Description: bmDescription,
			StartTimeMs: bmStartMs,
			DurationMs:  bmDurationMs,
			Tags:        bmTags,
		}
		created, err := rt.dispatcher.CreateBookmark(context.Background(), bmConnector, bmCamera, &bm)
		if err != nil {
			log.Fatalf("Failed to create bookmark: %v", err)
		}
		fmt.Printf("Bookmark %s created.\n", created.ID)
	},
}

func init() {
	rootCmd.AddCommand(bookmarkCmd)
	bookmarkCmd.AddCommand(bookmarkCreateCmd)

	bookmarkCreateCmd.Flags().StringVar(&bmConnector, "connector", "", "Connector id")
	bookmarkCreateCmd.Flags().StringVar(&bmCamera, "camera", "", "Camera id")
	bookmarkCreateCmd.Flags().StringVar(&bmName, "name", "", "Bookmark name")
	bookmarkCreateCmd.Flags().StringVar(&bmDescription, "description", "", "Bookmark description")
	bookmarkCreateCmd.Flags().Int64Var(&bmStartMs, "start", 0, "Start position, epoch milliseconds")
	bookmarkCreateCmd.Flags().Int64Var(&bmDurationMs, "duration", 5000, "Duration in milliseconds")
	bookmarkCreateCmd.Flags().StringSliceVar(&bmTags, "tag", nil, "Tag (repeatable)")

	_ = bookmarkCreateCmd.MarkFlagRequired("connector")
	_ = bookmarkCreateCmd.MarkFlagRequired("camera")
	_ = bookmarkCreateCmd.MarkFlagRequired("name")
	_ = bookmarkCreateCmd.MarkFlagRequired("start")
}
