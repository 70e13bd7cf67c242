package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a running logbook server",
		Long: `Log in to a running logbook server and cache the session token for
subsequent 'logbook search' and 'logbook user' commands.`,
		Example: `  logbook login --username smith
  logbook login --username admin --server http://logbook.example.org:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(username, password)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Register username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	cmd.Flags().StringVar(&serverAddr, "server", "", "Server address (default http://127.0.0.1:<port>)")
	cmd.MarkFlagRequired("username")

	return cmd
}

func runLogin(username, password string) error {
	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)
	}

	client, err := newAPIClient(false)
	if err != nil {
		return err
	}

	var resp struct {
		Token     string `json:"session_token"`
		ExpiresIn int    `json:"expires_in"`
		Username  string `json:"username"`
		Role      string `json:"role"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := client.do("POST", "/api/v1/session", body, &resp); err != nil {
		return err
	}

	if err := saveToken(resp.Token); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}

	fmt.Printf("Logged in as %s (%s)\n", resp.Username, resp.Role)
	fmt.Printf("  Session valid for %dh\n", resp.ExpiresIn/3600)
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and discard the cached session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(true)
			if err != nil {
				return err
			}
			// Best effort server side; the local token is removed regardless.
			client.do("DELETE", "/api/v1/session", nil, nil)
			os.Remove(tokenFilePath())
			fmt.Println("Logged out.")
			return nil
		},
	}
}
