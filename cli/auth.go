// ABOUTME: Authentication CLI commands
// ABOUTME: Handles login, signup, and account inspection against the backend
package cli

import (
	"context"
	"flag"
	"fmt"

	"golang.org/x/oauth2"

	"synchro/api"
)

// resolveServer merges the --server flag with saved config, preferring the
// flag. The resolved value is persisted so later commands can omit it.
func resolveServer(flagValue string) (*api.Config, error) {
	cfg, err := api.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flagValue != "" {
		cfg.Server = flagValue
	}
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("no server configured; pass --server or set SYNCHRO_SERVER")
	}
	return cfg, nil
}

func saveSession(cfg *api.Config, token *api.Token) error {
	if err := api.SaveToken(&oauth2.Token{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	cfg.UserID = token.User.ID
	cfg.Email = token.User.Email
	if err := api.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// LoginCommand authenticates against the backend and stores the session.
func LoginCommand(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	server := fs.String("server", "", "Backend server URL")
	email := fs.String("email", "", "Account email (required)")
	password := fs.String("password", "", "Account password (required)")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("--email and --password are required")
	}

	cfg, err := resolveServer(*server)
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.Server, nil)
	token, err := client.Login(context.Background(), *email, *password)
	if err != nil {
		return err
	}

	if err := saveSession(cfg, token); err != nil {
		return err
	}

	fmt.Printf("✓ Logged in as %s\n", token.User.Email)
	fmt.Printf("✓ Session saved to %s\n", api.TokenPath())
	if !token.User.HasImportedContacts {
		fmt.Println("\nNo contacts imported yet. Run 'synchro sync' to import your address book.")
	}

	return nil
}

// SignupCommand registers a new account and stores the session.
func SignupCommand(args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	server := fs.String("server", "", "Backend server URL")
	email := fs.String("email", "", "Account email (required)")
	password := fs.String("password", "", "Account password (required)")
	name := fs.String("name", "", "Display name (required)")
	_ = fs.Parse(args)

	if *email == "" || *password == "" || *name == "" {
		return fmt.Errorf("--email, --password, and --name are required")
	}

	cfg, err := resolveServer(*server)
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.Server, nil)
	token, err := client.Signup(context.Background(), *email, *password, *name)
	if err != nil {
		return err
	}

	if err := saveSession(cfg, token); err != nil {
		return err
	}

	fmt.Printf("✓ Account created for %s\n", token.User.Email)
	fmt.Println("Run 'synchro sync' to import your address book.")

	return nil
}

// WhoamiCommand prints the authenticated account.
func WhoamiCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	_ = fs.Parse(args)

	user, err := client.Me(context.Background())
	if err != nil {
		return fmt.Errorf("failed to fetch account: %w", err)
	}

	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	if user.HasImportedContacts {
		fmt.Println("Contacts imported: yes")
	} else {
		fmt.Println("Contacts imported: no")
	}

	return nil
}

// AuthenticatedClient builds an API client from saved config and token.
func AuthenticatedClient() (*api.Client, error) {
	cfg, err := api.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("not configured; run 'synchro login --server <url>' first")
	}

	token, err := api.LoadToken()
	if err != nil {
		return nil, fmt.Errorf("not logged in; run 'synchro login' first")
	}

	return api.NewClient(cfg.Server, token), nil
}
