package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/logbookhq/logbook/internal/session"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage logbook configuration",
		Long:  "Initialize a default configuration file, display the current effective configuration, or set runtime settings.",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

// ---------- config init ----------

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default logbook.yaml configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")

	return cmd
}

const defaultConfigFile = `# Logbook Configuration
# https://github.com/logbookhq/logbook

server:
  host: 0.0.0.0
  port: 8080
  shutdown_timeout: 30s
  cors:
    origins:
      - "*"
  tls:
    enabled: false
    cert_file: ""
    key_file: ""

# Spreadsheet register gateway. The deployment URL handles both record
# queries and credential actions.
upstream:
  url: ""  # e.g. https://script.google.com/macros/s/DEPLOYMENT_ID/exec
  timeout: 30s

# Authentication
auth:
  jwt_secret: ""  # Set via LOGBOOK_JWT_SECRET env var, or ${LOGBOOK_JWT_SECRET} here
  session_ttl: 24h

# Local session store (SQLite). Empty data_dir keeps sessions in memory only.
storage:
  data_dir: ~/.logbook

# MCP server
mcp:
  enabled: false
  transport: stdio

# Logging
logging:
  level: info    # debug, info, warn, error
  format: text   # text or json
`

func runConfigInit(force bool) error {
	path := "logbook.yaml"

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.WriteFile(path, []byte(defaultConfigFile), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println("Edit the file to point upstream.url at your register gateway, then run 'logbook serve'.")
	return nil
}

// ---------- config show ----------

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	return cmd
}

func runConfigShow() error {
	// Ensure config is loaded
	initConfig()

	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		fmt.Printf("Config file: %s\n", configFile)
	} else {
		fmt.Println("Config file: (none found, using defaults)")
	}
	fmt.Println()

	// Print all settings
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Println("No configuration settings loaded.")
		fmt.Println("Run 'logbook config init' to create a default configuration file.")
		return nil
	}

	for key, value := range settings {
		fmt.Printf("  %s: %v\n", key, value)
	}

	return nil
}

// ---------- config set ----------

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a runtime setting in the local store",
		Long: `Set a key/value pair in the local settings store. These settings persist
across restarts and override nothing in logbook.yaml; they cover runtime
toggles only.

Known keys:
  telemetry.enabled   "true" or "false" — anonymous usage heartbeats`,
		Example: `  logbook config set telemetry.enabled false`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}

	return cmd
}

func runConfigSet(key, value string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := session.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}
	defer store.Close()

	if err := store.SetSetting(context.Background(), key, value); err != nil {
		return fmt.Errorf("save setting: %w", err)
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}
