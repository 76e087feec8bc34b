package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yildizm/PcapView/internal/client"
	"github.com/yildizm/PcapView/internal/dropzone"
	"github.com/yildizm/PcapView/internal/logger"
	"github.com/yildizm/PcapView/internal/ui"
)

var tuiDropDir string

func newTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive upload screen",
		Long: `Launch a terminal UI to pick a capture, upload it and browse the result.

Type a path and press enter to analyze it. Tab switches between the summary
and the detailed report. With --drop-dir, files created in that directory are
analyzed as if they had been picked.

Examples:
  pcapview tui
  pcapview tui --drop-dir ~/captures/inbox`,
		Args: cobra.NoArgs,
		RunE: runTUI,
	}

	cmd.Flags().StringVar(&tuiDropDir, "drop-dir", "", "directory to watch for dropped captures (overrides config)")

	return cmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	// The screen belongs to bubbletea, so logs go to a file or nowhere
	log := newLogger("tui")
	logFile, err := openLogFile(cfg.Output.LogFile)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
		log.SetOutput(logFile)
	} else {
		log.SetOutput(io.Discard)
	}

	opts := ui.Options{
		Config:    cfg,
		Submitter: client.New(cfg, log),
		Logger:    log,
	}

	dir := tuiDropDir
	if dir == "" {
		dir = cfg.DropZone.Dir
	}
	if dir != "" {
		zone, err := dropzone.Watch(dir, cfg.DropZone.Settle, log)
		if err != nil {
			return err
		}
		defer func() { _ = zone.Close() }()
		opts.DropZone = zone
	}

	log.InfoWithFields("starting tui", []logger.Field{
		logger.F("server", cfg.Server.BaseURL),
		logger.F("drop_dir", dir),
	})
	return ui.Run(opts)
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	// #nosec G304 - path comes from the user's own configuration
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
