package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/logbookhq/logbook/internal/model"
)

func newSearchCmd() *cobra.Command {
	var (
		logbookNumber string
		owner         string
		rego          string
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the vehicle register",
		Long: `Search the vehicle register by logbook number, owner name, or registration
number. At least one criterion is required; matching is case-insensitive
substring.`,
		Example: `  logbook search --owner smith
  logbook search --logbook LB-100 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(logbookNumber, owner, rego, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&logbookNumber, "logbook", "", "Logbook number to match")
	cmd.Flags().StringVar(&owner, "owner", "", "Owner name to match")
	cmd.Flags().StringVar(&rego, "rego", "", "Registration number to match")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().StringVar(&serverAddr, "server", "", "Server address (default http://127.0.0.1:<port>)")

	return cmd
}

func runSearch(logbookNumber, owner, rego string, jsonOutput bool) error {
	if logbookNumber == "" && owner == "" && rego == "" {
		return fmt.Errorf("at least one of --logbook, --owner, --rego is required")
	}

	// Search needs no session; use the cached token only if one exists.
	client, err := newAPIClient(false)
	if err != nil {
		return err
	}
	if token, err := loadToken(); err == nil {
		client.token = token
	}

	params := url.Values{}
	if logbookNumber != "" {
		params.Set("logbookNumber", logbookNumber)
	}
	if owner != "" {
		params.Set("ownerName", owner)
	}
	if rego != "" {
		params.Set("regoNumber", rego)
	}

	var resp model.SearchResponse
	if err := client.do("GET", "/api/v1/vehicles?"+params.Encode(), nil, &resp); err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp.Results)
	}

	if len(resp.Results) == 0 {
		fmt.Println("No matching records.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tLOGBOOK\tOWNER\tYEAR\tMAKE/MODEL\tREGO\tCLASS")
	for _, rec := range resp.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.RowIndex, rec.LogbookNumber, rec.OwnerName, rec.Year,
			rec.MakeModel, rec.RegoNumber, rec.Class)
	}
	tw.Flush()

	fmt.Printf("\n%d record(s)\n", len(resp.Results))
	return nil
}
