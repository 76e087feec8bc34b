package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yildizm/PcapView/internal/client"
	"github.com/yildizm/PcapView/internal/dropzone"
	"github.com/yildizm/PcapView/internal/emoji"
	"github.com/yildizm/PcapView/internal/formatter"
	"github.com/yildizm/PcapView/internal/logger"
	"github.com/yildizm/PcapView/internal/monitor"
	"github.com/yildizm/PcapView/internal/ui"
)

var watchDetail bool

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Analyze captures as they are dropped into a directory",
		Long: `Watch a directory and analyze every capture created or moved into it.

A file is picked up once it has stopped changing for the configured settle
period (drop_zone.settle). Captures are analyzed one at a time in arrival
order; a failed capture is reported and watching continues. Press Ctrl+C to
stop watching.

Examples:
  pcapview watch ./inbox
  pcapview watch --detail -o json ./inbox`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().BoolVar(&watchDetail, "detail", false, "print the full report instead of the summary")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	log := newLogger("watch")

	dir := cfg.DropZone.Dir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no directory to watch: pass one or set drop_zone.dir")
	}

	format, err := formatter.New(getOutputFormat(), useColor(cfg.Output.ColorMode, asFile(cmd.OutOrStdout())), cfg.Messages)
	if err != nil {
		return err
	}

	zone, err := dropzone.Watch(dir, cfg.DropZone.Settle, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := zone.Close(); err != nil && isVerbose() {
			log.Warn("failed to close watcher: %v", err)
		}
	}()

	ctx, stop := withInterrupt(cmd.Context())
	defer stop()

	status := statusWriter(cmd)
	if status != nil {
		fmt.Fprintf(status, "%s Watching %s\n", emoji.GetEmoji("drop"), zone.Dir())
		fmt.Fprintf(status, "Press Ctrl+C to stop...\n\n")
	}

	surface := &streamSurface{
		out:    cmd.OutOrStdout(),
		status: status,
		format: format,
		detail: watchDetail,
		log:    log,
	}
	c := newCycle(cfg, client.New(cfg, log), surface, watchDetail, log)

	err = watchLoop(ctx, zone, c, status, log)

	if status != nil {
		snapshot := c.stats.Snapshot()
		if report, ferr := monitor.FormatReport(&snapshot, monitor.ReportFormatText); ferr == nil {
			fmt.Fprintf(status, "\n%s", report)
		}
	}
	return err
}

// watchLoop runs one cycle per drop until ctx is cancelled or the source
// closes. Drops that arrive during a cycle wait in the source's buffer.
func watchLoop(ctx context.Context, source ui.DropSource, c *cycle, status io.Writer, log *logger.Logger) error {
	drops := source.Drops()
	errs := source.Errors()
	processed, failed := 0, 0

	defer func() {
		log.InfoWithFields("watch stopped", []logger.Field{
			logger.Count(processed),
			logger.F("failed", failed),
		})
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-drops:
			if !ok {
				return nil
			}
			if status != nil {
				fmt.Fprintf(status, "%s New capture: %s\n", emoji.GetEmoji("capture"), path)
			}
			processed++
			if err := c.run(ctx, path); err != nil {
				failed++
				log.DebugWithFields("capture failed", []logger.Field{
					logger.F("path", path),
					logger.Error(err),
				})
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warn("watcher error: %v", err)
		}
	}
}
