package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/yildizm/PcapView/internal/client"
	"github.com/yildizm/PcapView/internal/config"
	"github.com/yildizm/PcapView/internal/emoji"
	"github.com/yildizm/PcapView/internal/formatter"
	"github.com/yildizm/PcapView/internal/intake"
	"github.com/yildizm/PcapView/internal/logger"
	"github.com/yildizm/PcapView/internal/monitor"
	"github.com/yildizm/PcapView/internal/presenter"
	"github.com/yildizm/PcapView/internal/ui"
)

// streamSurface writes finished frames to out and loading frames to status.
// Success frames in the other view mode are skipped, so a cycle that ends
// in detail view prints the report once.
type streamSurface struct {
	out    io.Writer
	status io.Writer
	format formatter.Formatter
	detail bool
	log    *logger.Logger
}

func (s *streamSurface) Render(frame presenter.Frame) {
	if !frame.Visible {
		return
	}

	switch frame.State {
	case presenter.StateLoading:
		if s.status == nil {
			return
		}
		line := emoji.GetEmoji("loading") + " " + frame.Message
		if frame.Note != "" {
			line += " (" + frame.Note + ")"
		}
		fmt.Fprintln(s.status, line)
		return
	case presenter.StateSuccess:
		if frame.Detail != s.detail {
			return
		}
	}

	data, err := s.format.Format(frame)
	if err != nil {
		s.log.Error("failed to format result: %v", err)
		return
	}
	if _, err := s.out.Write(data); err != nil {
		s.log.Error("failed to write result: %v", err)
		return
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, _ = io.WriteString(s.out, "\n")
	}
}

// cycle runs upload cycles one at a time against a single presenter
type cycle struct {
	cfg       *config.Config
	validator *intake.Validator
	submitter ui.Submitter
	presenter *presenter.Presenter
	stats     *monitor.Session
	detail    bool
	log       *logger.Logger
}

func newCycle(cfg *config.Config, submitter ui.Submitter, surface presenter.Surface, detail bool, log *logger.Logger) *cycle {
	return &cycle{
		cfg:       cfg,
		validator: intake.NewValidator(cfg, log),
		submitter: submitter,
		presenter: presenter.New(surface, cfg.Messages),
		stats:     monitor.NewSession(),
		detail:    detail,
		log:       log,
	}
}

// run validates path, uploads it and presents the outcome. The returned
// error is the same one the panel shows.
func (c *cycle) run(ctx context.Context, path string) error {
	var file *intake.SelectedFile
	err := c.stats.TrackOperation(monitor.OperationValidate, func() error {
		var err error
		file, err = c.validator.ValidatePath(path)
		return err
	})
	if err != nil {
		c.presenter.EnterError(c.presenter.ErrorMessage(err))
		return err
	}

	token := c.presenter.Begin()
	if c.cfg.Intake.InspectHeader {
		var info *intake.HeaderInfo
		err := c.stats.TrackOperation(monitor.OperationInspect, func() error {
			var err error
			info, err = intake.Inspect(file)
			return err
		})
		if err != nil {
			c.log.Debug("header preview unavailable: %v", err)
		} else {
			c.presenter.Annotate(token, info.String())
		}
	}

	var result *client.Result
	err = c.stats.TrackOperation(monitor.OperationUpload, func() error {
		var err error
		result, err = c.submitter.Submit(ctx, file)
		return err
	})
	if !c.presenter.Resolve(token, result, err) {
		return fmt.Errorf("upload of %s was superseded", file.Name())
	}
	if err != nil {
		return err
	}
	c.stats.RecordCapture(file.Size())

	if c.detail {
		c.presenter.ToggleDetail()
	}
	if result != nil {
		upload := c.stats.Snapshot().Operation(monitor.OperationUpload)
		c.log.DebugWithFields("cycle complete", []logger.Field{
			logger.F("file", file.Name()),
			logger.F("request_id", result.RequestID()),
			logger.Count(int(upload.Count)),
		})
	}
	return nil
}
