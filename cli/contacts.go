// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for browsing and editing remote contacts
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"synchro/api"
	"synchro/models"
)

// ListContactsCommand lists remote contacts, optionally filtered by stage.
func ListContactsCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	stage := fs.String("stage", "", "Filter by pipeline stage")
	unlinked := fs.Bool("unlinked", false, "Only contacts without a device link")
	_ = fs.Parse(args)

	contacts, err := client.ListContacts(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHONE\tEMAIL\tSTAGE\tNEXT DUE\tLINKED")

	shown := 0
	for _, c := range contacts {
		if *stage != "" && c.PipelineStage != *stage {
			continue
		}
		if *unlinked && c.Linked() {
			continue
		}
		linked := "no"
		if c.Linked() {
			linked = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Phone, c.Email, c.PipelineStage, c.NextDue, linked)
		shown++
	}

	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d contact(s)\n", shown)

	return nil
}

// ShowContactCommand prints one contact in full.
func ShowContactCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("contact ID is required")
	}

	c, err := client.GetContact(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("%s (ID: %s)\n", c.Name, c.ID)
	if c.Phone != "" {
		fmt.Printf("  Phone: %s\n", c.Phone)
	}
	if c.Email != "" {
		fmt.Printf("  Email: %s\n", c.Email)
	}
	if c.Birthday != "" {
		fmt.Printf("  Birthday: %s\n", c.Birthday)
	}
	if c.Job != "" {
		fmt.Printf("  Job: %s\n", c.Job)
	}
	if c.Location != "" {
		fmt.Printf("  Location: %s\n", c.Location)
	}
	fmt.Printf("  Stage: %s (every %d days)\n", c.PipelineStage, models.TargetInterval(c.PipelineStage))
	if c.NextDue != "" {
		fmt.Printf("  Next due: %s\n", c.NextDue)
	} else if est := estimatedDue(c.PipelineStage, c.LastContactDate); est != "" {
		fmt.Printf("  Next due: ~%s (estimated)\n", est)
	}
	if c.DeviceContactID != "" {
		fmt.Printf("  Device link: %s\n", c.DeviceContactID)
	}
	if c.Notes != "" {
		fmt.Printf("  Notes: %s\n", c.Notes)
	}

	return nil
}

// AddContactCommand creates a contact directly on the backend.
func AddContactCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "Contact name (required)")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	birthday := fs.String("birthday", "", "Birthday (YYYY-MM-DD)")
	job := fs.String("job", "", "Job title")
	location := fs.String("location", "", "Location")
	notes := fs.String("notes", "", "Notes about the contact")
	stage := fs.String("stage", models.StageNew, "Pipeline stage")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	created, err := client.CreateContact(context.Background(), &models.AppContact{
		Name:          *name,
		Phone:         *phone,
		Email:         *email,
		Birthday:      *birthday,
		Job:           *job,
		Location:      *location,
		Notes:         *notes,
		PipelineStage: *stage,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Contact created: %s (ID: %s)\n", created.Name, created.ID)

	return nil
}

// UpdateContactCommand sends a partial update; only flags that were set are
// included in the payload.
func UpdateContactCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	name := fs.String("name", "", "Contact name")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	birthday := fs.String("birthday", "", "Birthday (YYYY-MM-DD)")
	job := fs.String("job", "", "Job title")
	location := fs.String("location", "", "Location")
	notes := fs.String("notes", "", "Notes about the contact")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("contact ID is required (flags must come before the ID)")
	}

	update := &models.ContactUpdate{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			update.Name = name
		case "phone":
			update.Phone = phone
		case "email":
			update.Email = email
		case "birthday":
			update.Birthday = birthday
		case "job":
			update.Job = job
		case "location":
			update.Location = location
		case "notes":
			update.Notes = notes
		}
	})

	updated, err := client.UpdateContact(context.Background(), fs.Arg(0), update)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Contact updated: %s\n", updated.Name)

	return nil
}

// DeleteContactCommand removes a contact from the backend.
func DeleteContactCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("contact ID is required")
	}

	id := fs.Arg(0)
	if err := client.DeleteContact(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete contact %s: %w", id, err)
	}

	fmt.Printf("✓ Contact deleted: %s\n", id)

	return nil
}

// estimatedDue computes a local follow-up estimate for contacts the backend
// has not scheduled yet. Empty when there is no parsable last-contact date.
func estimatedDue(stage, lastContact string) string {
	last, err := time.Parse("2006-01-02", lastContact)
	if err != nil {
		return ""
	}
	return models.NextDue(last, models.TargetInterval(stage)).Format("2006-01-02")
}

// MoveContactCommand moves a contact to another pipeline stage.
func MoveContactCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	stage := fs.String("stage", "", "Target pipeline stage (required)")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("contact ID is required (flags must come before the ID)")
	}
	if *stage == "" {
		return fmt.Errorf("--stage is required")
	}

	updated, err := client.MovePipeline(context.Background(), fs.Arg(0), *stage)
	if err != nil {
		return err
	}

	fmt.Printf("✓ %s moved to %s", updated.Name, updated.PipelineStage)
	if updated.NextDue != "" {
		fmt.Printf(" (next due %s)", updated.NextDue)
	}
	fmt.Println()

	return nil
}
