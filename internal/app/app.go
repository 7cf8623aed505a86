package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"golang.org/x/term"

	"github.com/five82/helios/internal/config"
	"github.com/five82/helios/internal/controller"
	"github.com/five82/helios/internal/prefs"
	"github.com/five82/helios/internal/runloop"
	"github.com/five82/helios/internal/transport"
	"github.com/five82/helios/internal/ui"
)

const loopBuffer = 256

// Options configure the Helios client.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/helios/prefs.toml
	HostAddr    string // overrides host_addr from the config
	Plain       bool   // force line output even on a terminal
	StartOffset int32
	Debug       bool

	// Fs and Stdout default to the OS filesystem and os.Stdout.
	Fs     afero.Fs
	Stdout io.Writer
}

// Run boots the Helios client until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	cfg, err := config.Load(fs, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.HostAddr != "" {
		cfg.HostAddr = opts.HostAddr
	}

	userPrefs := prefs.Load(fs, opts.PrefsPath)

	logFile, err := openLog(fs, cfg.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))

	client, err := transport.NewClient(cfg.HostAddr, logger.With(slog.String("component", "transport")))
	if err != nil {
		return fmt.Errorf("init transport: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := runloop.New(loopBuffer)
	nav := newLoopNavigator(loop)

	plain := opts.Plain || !isTerminal(stdout)
	var (
		sink    controller.Sink
		program *tea.Program
	)
	if plain {
		sink = ui.NewPlainSink(stdout)
	} else {
		program = ui.NewProgram(ui.Options{
			Navigator:   nav,
			StartOffset: opts.StartOffset,
			Location:    cfg.Location,
			HostAddr:    cfg.HostAddr,
			ThemeName:   userPrefs.Theme,
			PrefsPath:   opts.PrefsPath,
			LogPath:     cfg.LogPath(),
			Fs:          fs,
			Logger:      logger,
		})
		sink = ui.NewProgramSink(program)
	}

	ctrl := controller.New(client, sink, loopScheduler{loop: loop}, logger.With(slog.String("component", "controller")))
	nav.ctrl = ctrl

	logger.Info("helios client starting",
		slog.String("host", client.URL()),
		slog.Bool("plain", plain),
	)

	// The loop outlives ctx so the controller can be closed on it after the
	// transport and UI have stopped.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		nav.run(ctx)
	}()
	go func() {
		defer wg.Done()
		err := client.Run(ctx, loopHandler{loop: loop, ctrl: ctrl})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("transport stopped", slog.String("error", err.Error()))
		}
	}()

	loop.Post(func() {
		if opts.StartOffset != 0 {
			ctrl.NavigateTo(opts.StartOffset)
		}
		ctrl.OnConnectivityChanged(client.Connected())
	})

	var runErr error
	if program != nil {
		go func() {
			<-ctx.Done()
			program.Quit()
		}()
		if _, err := program.Run(); err != nil {
			runErr = fmt.Errorf("run ui: %w", err)
		}
	} else {
		<-ctx.Done()
	}

	cancel()
	wg.Wait()
	stopController(loop, ctrl, stopLoop)
	logger.Info("helios client stopped")
	return runErr
}

// stopController runs ctrl.Close on the loop, then stops the loop and waits
// for it to return.
func stopController(loop *runloop.Loop, ctrl *controller.Controller, stopLoop context.CancelFunc) {
	closed := make(chan struct{})
	if loop.Post(func() {
		ctrl.Close()
		close(closed)
	}) {
		<-closed
	}
	stopLoop()
	<-loop.Done()
}

func openLog(fs afero.Fs, path string) (afero.File, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
