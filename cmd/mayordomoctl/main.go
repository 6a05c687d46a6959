// Command mayordomoctl sends a single query to a running mayordomo server
// and prints the spoken response. Ask a status question ("qué pasó") to
// retrieve the result of a query that answered with a placeholder.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type queryRequest struct {
	Query     string   `json:"query"`
	Timeout   *float64 `json:"timeout,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
}

type queryResponse struct {
	Response string `json:"response"`
	Status   string `json:"status"`
	TaskID   string `json:"task_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

func main() {
	var (
		addr    string
		session string
		timeout float64
	)

	root := &cobra.Command{
		Use:          "mayordomoctl <query>",
		Short:        "Send a query to the mayordomo server",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, addr, strings.Join(args, " "), session, timeout)
		},
	}

	root.Flags().StringVar(&addr, "addr", "http://127.0.0.1:8080", "server base URL")
	root.Flags().StringVar(&session, "session", "", "session id for conversation memory")
	root.Flags().Float64Var(&timeout, "timeout", 0, "deadline in seconds (0 uses the server default)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func query(cmd *cobra.Command, addr, text, session string, timeout float64) error {
	req := queryRequest{Query: text, SessionID: session}
	if timeout > 0 {
		req.Timeout = &timeout
	}

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Post(strings.TrimRight(addr, "/")+"/query", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("contact server: %w", err)
	}
	defer resp.Body.Close()

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, out.Error)
	}

	cmd.Println(out.Response)

	if out.Status == "processing" {
		cmd.Println("(aún procesando, pregunta \"¿qué pasó?\" en unos segundos)")
	}

	return nil
}
