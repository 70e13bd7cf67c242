package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/logbookhq/logbook/internal/model"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage register users (admin only)",
		Long:  "List, add, and remove register users. These commands require an admin session.",
	}

	cmd.PersistentFlags().StringVar(&serverAddr, "server", "", "Server address (default http://127.0.0.1:<port>)")

	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserAddCmd())
	cmd.AddCommand(newUserRemoveCmd())
	cmd.AddCommand(newUserPasswdCmd())

	return cmd
}

// ---------- user list ----------

func newUserListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all register users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runUserList(jsonOutput bool) error {
	client, err := newAPIClient(true)
	if err != nil {
		return err
	}

	var resp struct {
		Users []model.UserSummary `json:"users"`
	}
	if err := client.do("GET", "/api/v1/users", nil, &resp); err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp.Users)
	}

	if len(resp.Users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tCREATED\tCREATED BY")
	for _, u := range resp.Users {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Username, u.CreatedAt, u.CreatedBy)
	}
	tw.Flush()
	return nil
}

// ---------- user add ----------

func newUserAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Add a register user",
		Long: `Add a new register user. The gateway assigns a default password, which is
printed once; the user should change it after their first login.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserAdd(args[0])
		},
	}

	return cmd
}

func runUserAdd(username string) error {
	client, err := newAPIClient(true)
	if err != nil {
		return err
	}

	var resp struct {
		Username        string `json:"username"`
		DefaultPassword string `json:"default_password"`
	}
	body := map[string]string{"username": username}
	if err := client.do("POST", "/api/v1/users", body, &resp); err != nil {
		return err
	}

	fmt.Printf("Created user %q\n", resp.Username)
	fmt.Printf("  Default password: %s\n", resp.DefaultPassword)
	fmt.Println("  Ask them to change it after their first login.")
	return nil
}

// ---------- user remove ----------

func newUserRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove <username>",
		Aliases: []string{"rm"},
		Short:   "Remove a register user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserRemove(args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runUserRemove(username string, yes bool) error {
	if !yes {
		fmt.Printf("Remove user %q? This cannot be undone. [y/N] ", username)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	client, err := newAPIClient(true)
	if err != nil {
		return err
	}

	if err := client.do("DELETE", "/api/v1/users/"+username, nil, nil); err != nil {
		return err
	}

	fmt.Printf("Removed user %q\n", username)
	return nil
}

// ---------- user passwd ----------

func newUserPasswdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your own password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserPasswd()
		},
	}

	return cmd
}

func runUserPasswd() error {
	current, err := promptPassword("Current password: ")
	if err != nil {
		return err
	}
	newPw, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm new password: ")
	if err != nil {
		return err
	}
	if newPw != confirm {
		return fmt.Errorf("passwords do not match")
	}

	client, err := newAPIClient(true)
	if err != nil {
		return err
	}

	body := map[string]string{
		"current_password": current,
		"new_password":     newPw,
		"confirm_password": confirm,
	}
	if err := client.do("POST", "/api/v1/session/password", body, nil); err != nil {
		return err
	}

	fmt.Println("Password changed.")
	return nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pwBytes), nil
}
