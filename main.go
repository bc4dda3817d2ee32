// ABOUTME: Entry point for the synchro contact sync client
// ABOUTME: Routes CLI commands and wires the local database and API client
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"synchro/cli"
	"synchro/db"
)

const version = "0.2.1"

func main() {
	// Optional .env for SYNCHRO_SERVER / SYNCHRO_TOKEN during development
	_ = godotenv.Load()

	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/synchro/synchro.db)")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("synchro version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	// Account commands need no local database.
	case "login":
		if err := cli.LoginCommand(commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "signup":
		if err := cli.SignupCommand(commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "whoami":
		client, err := cli.AuthenticatedClient()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		if err := cli.WhoamiCommand(client, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "sync":
		database, err := db.OpenDatabase(getDatabasePath(*dbPath))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		client, err := cli.AuthenticatedClient()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		if err := cli.SyncContactsCommand(database, client, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "status":
		database, err := db.OpenDatabase(getDatabasePath(*dbPath))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		if err := cli.StatusCommand(database, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "contacts":
		client, err := cli.AuthenticatedClient()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		if len(commandArgs) == 0 {
			fmt.Println("Error: contacts requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		sub := commandArgs[0]
		subArgs := commandArgs[1:]

		switch sub {
		case "list":
			if err := cli.ListContactsCommand(client, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "show":
			if err := cli.ShowContactCommand(client, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "add":
			if err := cli.AddContactCommand(client, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "update":
			if err := cli.UpdateContactCommand(client, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "delete":
			if err := cli.DeleteContactCommand(client, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "move":
			if err := cli.MoveContactCommand(client, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown contacts command: %s\n\n", sub)
			printUsage()
			os.Exit(1)
		}

	case "groups":
		client, err := cli.AuthenticatedClient()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		if len(commandArgs) == 0 {
			fmt.Println("Error: groups requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		sub := commandArgs[0]
		subArgs := commandArgs[1:]

		switch sub {
		case "list":
			if err := cli.ListGroupsCommand(client, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "add":
			if err := cli.AddGroupCommand(client, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "update":
			if err := cli.UpdateGroupCommand(client, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "delete":
			if err := cli.DeleteGroupCommand(client, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown groups command: %s\n\n", sub)
			printUsage()
			os.Exit(1)
		}

	case "briefing":
		client, err := cli.AuthenticatedClient()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		if err := cli.BriefingCommand(client, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "drafts":
		client, err := cli.AuthenticatedClient()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		if err := cli.DraftsCommand(client, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "settings":
		client, err := cli.AuthenticatedClient()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		if err := cli.SettingsCommand(client, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func getDatabasePath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	return filepath.Join(xdg.DataHome, "synchro", "synchro.db")
}

func printUsage() {
	fmt.Printf(`synchro v%s - Contact sync client

USAGE:
  synchro [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/synchro/synchro.db)

ACCOUNT:
  synchro login          Log in to the backend
    --server <url>          Backend server URL (saved for later commands)
    --email <email>         Account email (required)
    --password <pass>       Account password (required)

  synchro signup         Create an account
    --server <url>          Backend server URL
    --email <email>         Account email (required)
    --password <pass>       Account password (required)
    --name <name>           Display name (required)

  synchro whoami         Show the authenticated account

SYNC:
  synchro sync           Run a full two-phase contact sync
    --quick                 Import new device contacts only
    --workers <n>           Concurrent per-contact operations (default 4)

  synchro status         Show server, session, and last sync time

CONTACTS:
  synchro contacts list     List remote contacts
    --stage <stage>           Filter by pipeline stage
    --unlinked                Only contacts without a device link

  synchro contacts show <id>    Show one contact in full
  synchro contacts add          Create a contact on the backend
    --name <name>                 Contact name (required)
    --phone, --email, --birthday, --job, --location, --notes
    --stage <stage>               Pipeline stage (default: New)

  synchro contacts update [flags] <id>  Partial update (flags before the ID)
  synchro contacts delete <id>          Delete a contact
  synchro contacts move --stage <stage> <id>  Move pipeline stage

GROUPS:
  synchro groups list       List contact groups
  synchro groups add        Create a group
    --name <name>             Group name (required)
    --description <text>      Group description

  synchro groups update [flags] <id>  Partial update (flags before the ID)
  synchro groups delete <id>          Delete a group

FOLLOW-UPS:
  synchro briefing       Contacts due for follow-up today
  synchro drafts         List pending reconnection drafts
    --generate <contact-id>   Generate a draft for a contact
    --dismiss <draft-id>      Dismiss a draft
    --sent <draft-id>         Mark a draft as sent

SETTINGS:
  synchro settings       Show backend settings
    --style-sample <text>       Writing style sample for drafts
    --notification-time <HH:MM> Daily briefing time

EXAMPLES:
  # First run
  synchro login --server https://crm.example.com --email me@example.com --password secret
  synchro sync

  # Quick import of new address book entries
  synchro sync --quick

  # See who is due today
  synchro briefing

`, version)
}
