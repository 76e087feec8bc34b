package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/yildizm/PcapView/internal/client"
	"github.com/yildizm/PcapView/internal/formatter"
)

var (
	analyzeDetail     bool
	analyzeOutputFile string
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Upload one capture and print the analysis",
		Long: `Validate a capture, upload it to the analysis backend and print the result.

The summary shows the backend's summary field and the unique source and
destination addresses. Use --detail for the full report. The command exits
non-zero when validation or the analysis fails.

Examples:
  pcapview analyze capture.pcap
  pcapview analyze --detail -o json capture.pcap
  pcapview analyze --server http://analyzer:8000 --output-file report.md -o markdown capture.pcap`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().BoolVar(&analyzeDetail, "detail", false, "print the full report instead of the summary")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	log := newLogger("analyze")

	ctx, stop := withInterrupt(cmd.Context())
	defer stop()

	if analyzeOutputFile != "" {
		if err := validateOutputFilePath(analyzeOutputFile); err != nil {
			return fmt.Errorf("invalid output file path: %w", err)
		}
	}

	var out io.Writer = cmd.OutOrStdout()
	var buffer bytes.Buffer
	if analyzeOutputFile != "" {
		out = &buffer
	}

	format, err := formatter.New(getOutputFormat(), useColor(cfg.Output.ColorMode, asFile(out)), cfg.Messages)
	if err != nil {
		return err
	}

	surface := &streamSurface{
		out:    out,
		status: statusWriter(cmd),
		format: format,
		detail: analyzeDetail,
		log:    log,
	}
	c := newCycle(cfg, client.New(cfg, log), surface, analyzeDetail, log)

	cycleErr := c.run(ctx, args[0])

	if analyzeOutputFile != "" {
		if err := writeOutputBytesToFile(buffer.Bytes(), analyzeOutputFile); err != nil {
			return fmt.Errorf("failed to write output to file: %w", err)
		}
		if isVerbose() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Output saved to: %s\n", analyzeOutputFile)
		}
	}

	return cycleErr
}

// statusWriter returns where loading frames go: stderr when someone is watching it
func statusWriter(cmd *cobra.Command) io.Writer {
	if isVerbose() {
		return cmd.ErrOrStderr()
	}
	if f := asFile(cmd.ErrOrStderr()); f != nil && isatty.IsTerminal(f.Fd()) {
		return f
	}
	return nil
}

func asFile(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}

func validateOutputFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}
	if info, err := os.Stat(filepath.Clean(path)); err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	// Create or truncate the file
	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// Sync to ensure data is written
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}

// withInterrupt derives a context cancelled by Ctrl+C
func withInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
