// ABOUTME: Group CLI commands
// ABOUTME: Manages contact groups stored on the backend
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

// ListGroupsCommand lists all groups.
func ListGroupsCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	_ = fs.Parse(args)

	groups, err := client.Groups(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%s\n", g.ID, g.Name, g.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d group(s)\n", len(groups))

	return nil
}

// AddGroupCommand creates a group.
func AddGroupCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "Group name (required)")
	description := fs.String("description", "", "Group description")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	created, err := client.CreateGroup(context.Background(), &models.Group{
		Name:        *name,
		Description: *description,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Group created: %s (ID: %s)\n", created.Name, created.ID)

	return nil
}

// UpdateGroupCommand sends a partial group update; only flags that were set
// are included in the payload.
func UpdateGroupCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	name := fs.String("name", "", "Group name")
	description := fs.String("description", "", "Group description")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("group ID is required (flags must come before the ID)")
	}

	update := &models.GroupUpdate{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			update.Name = name
		case "description":
			update.Description = description
		}
	})

	updated, err := client.UpdateGroup(context.Background(), fs.Arg(0), update)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Group updated: %s\n", updated.Name)

	return nil
}

// DeleteGroupCommand removes a group.
func DeleteGroupCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("group ID is required")
	}

	id := fs.Arg(0)
	if err := client.DeleteGroup(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete group %s: %w", id, err)
	}

	fmt.Printf("✓ Group deleted: %s\n", id)

	return nil
}
