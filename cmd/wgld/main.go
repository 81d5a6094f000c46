//go:build !js

// Command wgld runs one of the demos in a window, or headless into a PNG.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/paperboard/example/demo"
	"github.com/paperboard/example/gfx"
	"github.com/paperboard/example/gfx/desktop"
	"github.com/paperboard/example/internal/app"
	"github.com/paperboard/example/internal/config"
	"github.com/paperboard/example/internal/logging"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	opt, err := app.ParseCLIOpts(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		return 2
	}
	if opt.List {
		if err := app.ListDemos(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Couldn't list demos: %v\n", err)
			return 1
		}
		return 0
	}

	conf, err := config.Load(opt.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	conf = opt.Merge(conf)
	if err := conf.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	log, err := logging.New(conf.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if opt.Headless {
		if _, err := app.RunHeadless(ctx, conf, log); err != nil {
			log.Error("headless run failed", zap.Error(err))
			return 1
		}
		return 0
	}
	if err := runWindow(ctx, conf, log); err != nil {
		log.Error("demo failed", zap.Error(err))
		return 1
	}
	return 0
}

func runWindow(ctx context.Context, conf config.Config, log *zap.Logger) error {
	d, err := demo.New(conf.Demo)
	if err != nil {
		return err
	}
	opts, err := app.SessionOptions(conf, d.Name())
	if err != nil {
		return err
	}

	host, err := desktop.NewHost(desktop.Options{
		Width:     conf.Width,
		Height:    conf.Height,
		Title:     fmt.Sprintf("%s: %s", d.Name(), d.Describe()),
		Resizable: true,
		Refresh:   conf.Refresh || d.Pacing() == demo.Refresh,
	}, log)
	if err != nil {
		return err
	}
	defer host.Close()

	// retina displays hand out more pixels than the window size
	width, height := host.FramebufferSize()
	r := gfx.NewRenderer(host.Context(), log, width, height)
	s, err := demo.Start(d, r, host.Scheduler(), log, opts)
	if err != nil {
		r.Release()
		return err
	}
	defer s.Release()

	host.OnResize(s.Resize)
	host.OnRefresh(s.Redraw)

	if conf.Shaders != "" {
		w, err := app.WatchShaders(ctx, conf, s, host.Scheduler(), log)
		if err != nil {
			log.Warn("shader hot reload disabled", zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	if err := host.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
