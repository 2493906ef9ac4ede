package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wattwise/wattwise/internal/database"
	"github.com/wattwise/wattwise/internal/publisher"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish unpublished daily usage to MQTT / Home Assistant",
	Long: `Pushes every daily usage record not yet published to the configured
targets (MQTT broker and/or Home Assistant) and marks it published.
Re-derived days are republished on the next run.`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, userID, err := currentUser()
	if err != nil {
		return err
	}

	if !cfg.MQTT.Enabled && !cfg.HomeAssistant.Enabled {
		return fmt.Errorf("no publish target configured: enable mqtt or home_assistant in %s", getConfigPath())
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	pub, err := publisher.New(cfg.MQTT, cfg.GetTopicPrefix(), cfg.HomeAssistant)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	published, err := publishPending(db, pub, userID)
	if err != nil {
		return err
	}

	if published == 0 {
		fmt.Println("Nothing to publish")
		return nil
	}
	fmt.Printf("✓ Published %d usage record(s)\n", published)
	return nil
}

// publishPending pushes every unpublished record in date order and marks
// each one published as it goes, so a mid-run failure does not republish
// earlier records.
func publishPending(db *database.DB, pub *publisher.Publisher, userID string) (int, error) {
	pending, err := db.ListUnpublishedDailyUsage(userID)
	if err != nil {
		return 0, fmt.Errorf("listing unpublished usage: %w", err)
	}

	published := 0
	for _, u := range pending {
		if err := pub.Publish(u); err != nil {
			return published, fmt.Errorf("publishing usage for %s: %w", u.Date.Format("2006-01-02"), err)
		}
		if err := db.MarkUsagePublished(u.ID); err != nil {
			return published, fmt.Errorf("marking usage published: %w", err)
		}
		published++
	}
	return published, nil
}
