// ABOUTME: Settings CLI commands
// ABOUTME: Reads and writes per-user settings stored on the backend
package cli

import (
	"context"
	"flag"
	"fmt"

	"synchro/api"
)

// SettingsCommand shows settings, or updates them when flags are passed.
func SettingsCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	style := fs.String("style-sample", "", "Writing style sample for draft generation")
	notify := fs.String("notification-time", "", "Daily briefing time (HH:MM)")
	_ = fs.Parse(args)

	ctx := context.Background()

	settings, err := client.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch settings: %w", err)
	}

	changed := false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "style-sample":
			settings.WritingStyleSample = *style
			changed = true
		case "notification-time":
			settings.NotificationTime = *notify
			changed = true
		}
	})

	if changed {
		if err := client.UpdateSettings(ctx, settings); err != nil {
			return fmt.Errorf("failed to update settings: %w", err)
		}
		fmt.Println("✓ Settings updated")
		return nil
	}

	fmt.Printf("Notification time: %s\n", valueOr(settings.NotificationTime, "not set"))
	fmt.Printf("Writing style sample: %s\n", valueOr(settings.WritingStyleSample, "not set"))

	return nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
