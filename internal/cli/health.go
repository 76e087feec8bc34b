package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yildizm/PcapView/internal/client"
	"github.com/yildizm/PcapView/internal/emoji"
)

func newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis backend is reachable",
		Long: `Query the backend's health endpoint and report its status.

Exits non-zero when the backend is unreachable or reports an error.`,
		Args: cobra.NoArgs,
		RunE: runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	log := newLogger("health")

	ctx, stop := withInterrupt(cmd.Context())
	defer stop()

	status, err := client.New(cfg, log).Health(ctx)
	if err != nil {
		return fmt.Errorf("backend at %s is not healthy: %w", cfg.Server.BaseURL, err)
	}

	out := cmd.OutOrStdout()
	if getOutputFormat() == "json" {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal health status: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "%s Backend: %s\n", emoji.GetEmoji("health"), cfg.Server.BaseURL)
	fmt.Fprintf(out, "   Status: %s\n", status.Status)
	queue := "disconnected"
	if status.NATSConnected {
		queue = "connected"
	}
	fmt.Fprintf(out, "   Message queue: %s\n", queue)
	return nil
}
