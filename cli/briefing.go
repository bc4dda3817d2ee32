// ABOUTME: Morning briefing and draft CLI commands
// ABOUTME: Surfaces due contacts and AI-drafted reconnection messages
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"synchro/api"
	"synchro/models"
)

// BriefingCommand prints the contacts due for a follow-up today.
func BriefingCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("briefing", flag.ExitOnError)
	_ = fs.Parse(args)

	contacts, err := client.MorningBriefing(context.Background())
	if err != nil {
		return fmt.Errorf("failed to fetch briefing: %w", err)
	}

	if len(contacts) == 0 {
		fmt.Println("Nobody is due today. ✓")
		return nil
	}

	fmt.Printf("%d contact(s) due today:\n\n", len(contacts))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTAGE\tLAST CONTACT")
	for _, c := range contacts {
		last := c.LastContactDate
		if last == "" {
			last = "never"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.PipelineStage, last)
	}

	return w.Flush()
}

// DraftsCommand lists pending drafts, or generates one with --generate.
func DraftsCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("drafts", flag.ExitOnError)
	generate := fs.String("generate", "", "Generate a draft for the given contact ID")
	dismiss := fs.String("dismiss", "", "Dismiss the given draft ID")
	sent := fs.String("sent", "", "Mark the given draft ID as sent")
	_ = fs.Parse(args)

	ctx := context.Background()

	switch {
	case *generate != "":
		draft, err := client.GenerateDraft(ctx, *generate)
		if err != nil {
			return fmt.Errorf("failed to generate draft: %w", err)
		}
		fmt.Printf("✓ Draft for %s:\n\n%s\n", draft.ContactName, draft.DraftMessage)
		return nil

	case *dismiss != "":
		if err := client.DismissDraft(ctx, *dismiss); err != nil {
			return fmt.Errorf("failed to dismiss draft: %w", err)
		}
		fmt.Printf("✓ Draft dismissed: %s\n", *dismiss)
		return nil

	case *sent != "":
		if err := client.MarkDraftSent(ctx, *sent); err != nil {
			return fmt.Errorf("failed to mark draft sent: %w", err)
		}
		fmt.Printf("✓ Draft marked sent: %s\n", *sent)
		return nil
	}

	drafts, err := client.Drafts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list drafts: %w", err)
	}

	pending := 0
	for _, d := range drafts {
		if d.Status != models.DraftPending {
			continue
		}
		pending++
		fmt.Printf("[%s] %s\n  %s\n\n", d.ID, d.ContactName, d.DraftMessage)
	}

	if pending == 0 {
		fmt.Println("No pending drafts.")
	}

	return nil
}
