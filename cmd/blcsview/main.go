package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"blcsview/internal/bus"
	"blcsview/internal/cloud"
	"blcsview/internal/config"
	"blcsview/internal/dropwatch"
	"blcsview/internal/feed"
	"blcsview/internal/ingest"
	"blcsview/internal/logging"
	"blcsview/internal/pane"
	"blcsview/internal/receiver"
	"blcsview/internal/telemetry"
	"blcsview/internal/ui"
)

var version = "dev"

// options holds the parsed CLI flags. Everything else comes from the
// config file.
type options struct {
	configPath string
	dropDir    string
	noBus      bool
	cloud      bool
	reactive   bool
	version    bool
	files      []string
}

// parseArgs parses the command line. Usage goes to out.
func parseArgs(args []string, out io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("blcsview", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&o.configPath, "config", "", "path to config.toml (default $"+config.EnvConfig+" or "+config.DefaultPath()+")")
	fs.StringVar(&o.dropDir, "drop-dir", "", "watch this directory for dropped frame files (csv, json, yaml, msgpack; overrides drop.dir)")
	fs.BoolVar(&o.noBus, "no-bus", false, "do not connect to the MQTT broker even if enabled in config")
	fs.BoolVar(&o.cloud, "cloud", false, "load frames from cloud storage at startup")
	fs.BoolVar(&o.reactive, "reactive", false, "repaint on a fixed interval instead of on input")
	fs.BoolVar(&o.version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: blcsview [flags] [file ...]\n\n")
		fmt.Fprintf(out, "blcsview plots sensor frame files (csv, json, yaml, msgpack) and live\n")
		fmt.Fprintf(out, "sensor streams in the terminal.\n")
		fmt.Fprintf(out, "Files given as arguments are loaded as if dropped on the window.\n\n")
		fmt.Fprintf(out, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.files = fs.Args()
	return o, nil
}

func run(o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.dropDir != "" {
		cfg.Drop.Dir = o.dropDir
	}
	if o.reactive {
		cfg.UI.Reactive = true
	}
	layout, err := pane.ParseLayout(cfg.UI.Layout)
	if err != nil {
		return err
	}
	exportFormat, err := cfg.UI.Export()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := logging.NewRecorder(64, slog.LevelWarn)
	logger, closeLog, err := logging.Init(ctx, cfg.Log, logging.InitOptions{
		App:      "blcsview",
		Version:  version,
		Recorder: recorder,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	prov, err := telemetry.New(ctx, version)
	if err != nil {
		return err
	}
	defer func() {
		if err := prov.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	notify, ready := feed.Signal()
	ch := feed.New(feed.Options{Capacity: cfg.Feed.Capacity, Notify: notify})
	defer ch.Close()

	pipeline := ingest.New(ch,
		ingest.WithLogger(logger),
		ingest.WithTracer(prov.Tracer("blcsview/ingest")),
		ingest.WithLiveWindow(cfg.UI.LiveWindow),
	)

	if cfg.MQTT.Enabled && !o.noBus {
		topics, err := cfg.MQTT.KindTopics()
		if err != nil {
			return err
		}
		sub := bus.NewSubscriber(bus.Config{
			Broker:         cfg.MQTT.Broker,
			ClientID:       cfg.MQTT.ClientID,
			Username:       cfg.MQTT.Username,
			Password:       cfg.MQTT.Password,
			QoS:            byte(cfg.MQTT.QoS),
			ConnectTimeout: cfg.MQTT.ConnectTimeout,
			Topics:         topics,
		}, ch.Sender(), logger)
		if err := sub.Start(ctx); err != nil {
			// The viewer is still useful for files without a broker.
			logger.Error("mqtt unavailable", "error", err)
		} else {
			defer sub.Stop()
		}
	}

	if cfg.Receiver.Enabled {
		srv := receiver.NewServer(cfg.Receiver.Addr, ch.Sender(), logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			if err := srv.Stop(context.Background()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("receiver shutdown", "error", err)
			}
		}()
	}

	var cloudLoad func()
	if cfg.Cloud.BaseURL != "" {
		loader := cloud.NewLoader(cloud.Config{
			BaseURL: cfg.Cloud.BaseURL,
			Index:   cfg.Cloud.Index,
			Token:   cfg.Cloud.Token,
			Timeout: cfg.Cloud.Timeout,
		}, &http.Client{Timeout: cfg.Cloud.Timeout}, ch.Sender(), logger)
		cloudLoad = func() { loader.Spawn(ctx) }
		if o.cloud {
			loader.Spawn(ctx)
		}
	} else if o.cloud {
		return errors.New("-cloud: cloud.base_url is not configured")
	}

	model := ui.NewAppModel(ui.Options{
		Context:      ctx,
		Pipeline:     pipeline,
		Recorder:     recorder,
		Logger:       logger,
		Reactive:     cfg.UI.Reactive,
		TickInterval: cfg.UI.TickInterval,
		FeedReady:    ready,
		CloudLoad:    cloudLoad,
		Initial:      dropwatch.ReadFiles(o.files),
		Layout:       layout,
		ExportDir:    cfg.UI.ExportDir,
		ExportFormat: exportFormat,
	})
	p := tea.NewProgram(model.AsTeaModel(), tea.WithAltScreen(), tea.WithMouseCellMotion())

	if cfg.Drop.Dir != "" {
		w := dropwatch.New(cfg.Drop.Dir, cfg.Drop.Debounce, func(files []ingest.DroppedFile) {
			p.Send(ui.FilesDroppedMsg{Files: files})
		}, logger)
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("drop watcher stopped", "error", err)
			}
		}()
	}

	logger.Info("starting", "layout", layout.String(), "reactive", cfg.UI.Reactive, "telemetry", prov.Enabled())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func main() {
	o, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}
	if o.version {
		fmt.Println("blcsview", version)
		return
	}
	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "blcsview: %v\n", err)
		os.Exit(1)
	}
}
