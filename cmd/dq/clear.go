package main

import (
	"context"
	"fmt"

	"github.com/docquery/docquery/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var clearToken string

func init() {
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(adminTokenCmd)

	clearCmd.Flags().StringVar(&clearToken, "token", "", "Admin token (required when one is configured)")
}

// ClearResponse is the response for the clear command.
type ClearResponse struct {
	Cleared bool `json:"cleared"`
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all indexed documents",
	Long: `Empty the vector index and chunk metadata together and persist the
empty state. This cannot be undone.

When an admin token is configured (see 'dq admin-token'), the matching
token must be supplied with --token.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	if cfg.AdminTokenHash != "" {
		if clearToken == "" {
			exitWithError(ExitDenied, "an admin token is configured; supply it with --token")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminTokenHash), []byte(clearToken)); err != nil {
			exitWithError(ExitDenied, "admin token rejected")
		}
	}

	svc, _, cleanup := buildService(ctx)
	defer cleanup()

	if err := svc.Clear(); err != nil {
		exitWithError(ExitError, "clearing index: %v", err)
	}

	if humanOutput {
		fmt.Println("Index cleared.")
	} else {
		outputJSON(ClearResponse{Cleared: true})
	}

	return nil
}

var adminTokenCmd = &cobra.Command{
	Use:   "admin-token <token>",
	Short: "Set the admin token required by destructive commands",
	Long: `Store a bcrypt hash of the given token in the config file. Once set,
'dq clear' refuses to run without the matching --token value.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdminToken,
}

func runAdminToken(cmd *cobra.Command, args []string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
	if err != nil {
		exitWithError(ExitError, "hashing token: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	cfg.AdminTokenHash = string(hash)
	if err := config.Save(cfg); err != nil {
		exitWithError(ExitConfigError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Println("Admin token set.")
	} else {
		outputJSON(map[string]bool{"token_set": true})
	}

	return nil
}
