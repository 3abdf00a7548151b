package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/oklog/run"
	"github.com/spf13/cobra"

	"github.com/codebeauty/loadingsse/internal/log"
	"github.com/codebeauty/loadingsse/internal/output"
	"github.com/codebeauty/loadingsse/internal/schedule"
	"github.com/codebeauty/loadingsse/internal/sequencer"
	"github.com/codebeauty/loadingsse/internal/ui"
)

func newPlayCmd(opts *rootOptions) *cobra.Command {
	var (
		scriptFlag string
		localeFlag string
		outputDir  string
		jsonOut    bool
		record     bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the stage sequence once without the interactive screen",
		Long:  "Starts a run, prints every snapshot as it is emitted and exits when the sequence completes or a termination signal arrives.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(scriptFlag, localeFlag)
			if err != nil {
				return err
			}
			if outputDir != "" {
				s.cfg.Defaults.OutputDir = outputDir
			}

			logger, closeLog, err := getLogger(opts, s.cfg, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer closeLog()

			res, err := play(cmd.Context(), playParams{
				session: s,
				out:     cmd.OutOrStdout(),
				logger:  logger,
				jsonOut: jsonOut,
				record:  record,
				signals: true,
			})
			if err != nil {
				return err
			}
			if res.Outcome != output.OutcomeCompleted {
				fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted.")
			}
			if res.Dir != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Recording: %s\n", res.Dir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptFlag, "script", "", "Stage script YAML file (default: built-in stages)")
	cmd.Flags().StringVar(&localeFlag, "locale", "", "Message locale: en or ja (default: from config)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Recording directory (default: from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print snapshots as JSON lines")
	cmd.Flags().BoolVar(&record, "record", false, "Write a run.json recording of the timeline")

	return cmd
}

type playParams struct {
	session   *session
	out       io.Writer
	scheduler schedule.Scheduler
	logger    log.Logger
	jsonOut   bool
	record    bool
	signals   bool
}

type playResult struct {
	Outcome  output.Outcome
	Manifest *output.Manifest
	Dir      string
}

// play runs one sequence to completion, or until ctx is cancelled or a
// termination signal arrives.
func play(ctx context.Context, p playParams) (*playResult, error) {
	if p.scheduler == nil {
		p.scheduler = schedule.Real{}
	}
	if p.logger == nil {
		p.logger = log.Noop
	}

	seq, err := sequencer.New(sequencer.Config{
		Script:     p.session.script,
		Scheduler:  p.scheduler,
		ResetDelay: p.session.cfg.Defaults.ResetDelayDuration(),
		Logger:     p.logger,
	})
	if err != nil {
		return nil, err
	}

	progress := ui.NewProgress(p.out, p.session.locale, p.jsonOut)
	recorder := output.NewRecorder()
	seq.Subscribe(progress.Listener())
	seq.Subscribe(recorder.Listener())

	done := make(chan struct{})
	var once sync.Once
	seq.Subscribe(func(st sequencer.State) {
		if st.Completed() {
			once.Do(func() { close(done) })
		}
	})

	startedAt := p.scheduler.Now()
	var g run.Group

	// OS signals.
	if p.signals {
		signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				p.logger.Debugf("Termination signal received")
				return context.Canceled
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Playback.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				seq.Start()
				select {
				case <-done:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
			func(_ error) {
				cancel()
				seq.Stop()
			},
		)
	}

	err = g.Run()
	progress.Finish()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	res := &playResult{Outcome: recorder.Outcome()}
	res.Manifest = output.BuildManifest(p.session.script.Name, p.session.locale, startedAt, p.scheduler.Now(), recorder.Snapshots(), res.Outcome)
	if !p.record {
		return res, nil
	}

	dir, err := output.RunDir(p.session.cfg.Defaults.OutputDir, p.session.script.Name, startedAt)
	if err != nil {
		return nil, err
	}
	if err := output.WriteManifest(dir, res.Manifest); err != nil {
		return nil, fmt.Errorf("writing recording: %w", err)
	}
	if err := output.WriteSummary(dir, output.BuildSummary(res.Manifest)); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}
	p.logger.WithValues(log.Kv{"dir": dir}).Infof("recording written")
	res.Dir = dir
	return res, nil
}
