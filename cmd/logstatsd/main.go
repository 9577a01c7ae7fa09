// Command logstatsd is the process bootstrap for the log statistics
// engine: it loads CoreConfig, wires the host facade, starts an
// fsnotify-backed producer watching the configured directory, and traps
// SIGINT/SIGTERM to run an orderly shutdown. Grounded on the
// signal-trapping main() shape common across the retrieved corpus's
// standalone commands (e.g. runZeroInc-sockstats/cmd/get/main.go), using
// github.com/sirupsen/logrus for startup/shutdown diagnostics the way
// that command does.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/corburn/logstatsd/internal/config"
	"github.com/corburn/logstatsd/internal/event"
	"github.com/corburn/logstatsd/internal/host"
	"github.com/corburn/logstatsd/internal/obs"
	fsproducer "github.com/corburn/logstatsd/internal/producer/fsnotify"
	"github.com/corburn/logstatsd/internal/sink"
)

// producerAdapter bridges internal/producer/fsnotify.Producer's named
// Callback parameter type to the plain func(event.Event) host.Producer
// expects.
type producerAdapter struct {
	p *fsproducer.Producer
}

func (a producerAdapter) Start(cb func(event.Event)) { a.p.Start(cb) }
func (a producerAdapter) Stop()                      { a.p.Stop() }

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "logstatsd:", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("logstatsd", pflag.ExitOnError)
	v := viper.New()
	config.BindFlags(flags, v)
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfgFile, _ := flags.GetString("config")
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	log := obs.NewLogger(cfg.LogLevel)

	errSink := func(err error) {
		log.WithError(err).Warn("producer error")
	}
	producer, err := fsproducer.New(cfg.WatchPath, errSink)
	if err != nil {
		return fmt.Errorf("starting producer: %w", err)
	}

	reportSink := sink.NewReportWriter(os.Stdout)
	diagnostics := sink.NewDiagnosticWriter(log)

	h := host.New(host.Config{
		QueueCapacity:  cfg.QueueCapacity,
		Workers:        cfg.Workers,
		ChunkSize:      0,
		TopK:           cfg.TopK,
		ReportInterval: secondsToDuration(cfg.ReportIntervalSeconds),
		AckTimeout:     cfg.AckTimeout,
	}, producerAdapter{producer}, reportSink, diagnostics)

	log.WithField("watch_path", cfg.WatchPath).
		WithField("workers", cfg.Workers).
		Info("starting logstatsd")
	h.Start()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	stopped := make(chan struct{})
	go func() {
		h.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-sigCh:
		log.Warn("second signal received, forcing immediate exit")
		os.Exit(1)
	}
	return nil
}
