package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check if the logbook server is running",
		Long: "Check the status of the logbook server: process state, HTTP reachability, " +
			"and whether the register gateway is answering.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

// readiness mirrors the /readyz response body.
type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func runStatus() error {
	pid, err := readPID()
	if err != nil {
		fmt.Println("Server is not running (no PID file found).")
		return nil
	}

	if !isProcessRunning(pid) {
		removePID()
		fmt.Println("Server is not running (stale PID file removed).")
		return nil
	}

	host := viper.GetString("server.host")
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	port := viper.GetInt("server.port")
	if port == 0 {
		port = 8080
	}

	// The process is alive; ask /readyz whether it can actually reach the
	// spreadsheet gateway. A degraded answer means logins and edits will
	// fail even though the server is up.
	readyAddr := fmt.Sprintf("http://%s:%d/readyz", host, port)
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(readyAddr)
	if err != nil {
		fmt.Printf("Server process is running (PID %d) but not responding to HTTP.\n", pid)
		fmt.Printf("  Logs: %s\n", logFilePath())
		return nil
	}
	defer resp.Body.Close()

	var ready readiness
	if err := json.NewDecoder(resp.Body).Decode(&ready); err != nil {
		ready = readiness{Status: fmt.Sprintf("unparseable (%d)", resp.StatusCode)}
	}

	fmt.Printf("Server is running (PID %d)\n", pid)
	fmt.Printf("  Status:   %s\n", ready.Status)
	if gw, ok := ready.Checks["gateway"]; ok {
		fmt.Printf("  Gateway:  %s\n", gw)
	}
	fmt.Printf("  Logs:     %s\n", logFilePath())
	return nil
}
