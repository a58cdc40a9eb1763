// SPDX-License-Identifier: EPL-2.0

// Command mixplay plays audio files at the same time through the mixing
// core.
//
//	mixplay [flags] file...
//
// Every file gets its own Input. mixplay exits when all of them have
// finished, or after -seconds, or on the first interrupt (a second
// interrupt skips the fade-out).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/mixcore"
	"github.com/ik5/mixcore/bus"
	"github.com/ik5/mixcore/driver"
	"github.com/ik5/mixcore/internal/config"
	"github.com/ik5/mixcore/mixer"
	"github.com/ik5/mixcore/sched"
	"github.com/samber/do/v2"
)

type flags struct {
	loop    bool
	stereo  bool
	step    int
	fadeIn  float64
	fadeOut float64
	driver  string
	out     string
	seconds float64
}

func parseFlags() (flags, []string) {
	var f flags

	flag.BoolVar(&f.loop, "loop", false, "Loop every file")
	flag.BoolVar(&f.stereo, "stereo", false, "Simulate stereo on mono files")
	flag.IntVar(&f.step, "step", mixer.UnityStep, "Resample step in hundredths (100 = normal speed)")
	flag.Float64Var(&f.fadeIn, "fade-in", 0, "Fade-in length in seconds")
	flag.Float64Var(&f.fadeOut, "fade-out", 0, "Fade-out length in seconds when stopping early")
	flag.StringVar(&f.driver, "driver", "", "Output driver (oto or null), overrides MIXCORE_DRIVER")
	flag.StringVar(&f.out, "out", "", "Record the mix to this WAV file (uses the null driver)")
	flag.Float64Var(&f.seconds, "seconds", 0, "Stop after this many seconds (0 = play to the end)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	return f, flag.Args()
}

func main() {
	opts, files := parseFlags()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := mustLoadConfig()
	if opts.driver != "" {
		cfg.Driver = opts.driver
	}
	if opts.out != "" {
		cfg.Driver = driver.NameNull
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	initLogger(cfg)

	if err := run(cfg, opts, files); err != nil {
		slog.Error("mixplay failed", "error", err)
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
}

func run(cfg *config.Config, opts flags, files []string) error {
	var sinkOpts []driver.Option
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("creating capture file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Error("closing capture file", "error", err)
			}
		}()
		sinkOpts = append(sinkOpts, driver.WithCapture(f))
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	mixcore.RegisterDI(injector, sinkOpts...)

	p := &player{cfg: cfg, opts: opts}
	// Buses are closed after the pool has finished any refill.
	defer p.close()

	pool := do.MustInvoke[*sched.Pool](injector)
	defer pool.Shutdown()

	queue := do.MustInvoke[*sched.TaskQueue](injector)
	p.engine = do.MustInvoke[*mixer.Engine](injector)
	loader := do.MustInvoke[*mixcore.Loader](injector)

	sink, err := do.Invoke[driver.Sink](injector)
	if err != nil {
		return fmt.Errorf("creating %s sink: %w", cfg.Driver, err)
	}

	for _, path := range files {
		if err := p.add(loader, path); err != nil {
			return err
		}
	}

	if err := sink.Initialize(); err != nil {
		return fmt.Errorf("initializing %s sink: %w", cfg.Driver, err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			slog.Error("closing sink", "error", err)
		}
	}()

	p.start()
	p.wait(queue)

	st := p.engine.Stats()
	slog.Info("playback finished",
		"periods", st.Rendered,
		"underruns", st.Underruns,
		"retired", st.Retired)

	return nil
}

type track struct {
	path string
	bus  bus.Bus
	in   *mixer.Input
}

type player struct {
	cfg       *config.Config
	opts      flags
	engine    *mixer.Engine
	tracks    []track
	remaining int
}

func (p *player) add(loader *mixcore.Loader, path string) error {
	b, err := loader.Load(path)
	if err != nil {
		return err
	}

	in := mixer.NewInput()
	in.SetLoop(p.opts.loop)
	in.SetSimulateStereo(p.opts.stereo)
	in.SetResampleStep(p.opts.step)
	in.SetEndCallback(func() {
		p.remaining--
		slog.Info("finished", "path", path, "remaining", p.remaining)
	})

	p.tracks = append(p.tracks, track{path: path, bus: b, in: in})
	p.remaining++

	slog.Info("loaded", "path", path,
		"channels", b.Channels(),
		"streaming", b.IsStreaming())

	return nil
}

func (p *player) close() {
	for _, t := range p.tracks {
		c, ok := t.bus.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			slog.Error("closing bus", "path", t.path, "error", err)
		}
	}
}

// perFrame converts a fade length in seconds to a per-frame amplitude step.
func (p *player) perFrame(seconds float64) float32 {
	return float32(1 / (seconds * float64(p.cfg.SampleRate)))
}

func (p *player) start() {
	for _, t := range p.tracks {
		amp := float32(1)
		if p.opts.fadeIn > 0 {
			amp = 0
			t.in.SetAmplitudeInc(p.perFrame(p.opts.fadeIn))
		}
		t.in.Play(p.engine, t.bus, amp, true)
	}
}

// stop fades every track out, or stops it outright when fade is false or no
// fade-out was requested.
func (p *player) stop(fade bool) {
	for _, t := range p.tracks {
		if fade && p.opts.fadeOut > 0 {
			t.in.SetAmplitudeInc(-p.perFrame(p.opts.fadeOut))
			continue
		}
		t.in.Stop()
	}
}

// wait runs the control loop until every end callback has fired.
func (p *player) wait(queue *sched.TaskQueue) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var limit <-chan time.Time
	if p.opts.seconds > 0 {
		timer := time.NewTimer(time.Duration(p.opts.seconds * float64(time.Second)))
		defer timer.Stop()
		limit = timer.C
	}

	ticker := time.NewTicker(p.cfg.ControlTick)
	defer ticker.Stop()

	interrupted := ctx.Done()
	var force chan os.Signal

	for p.remaining > 0 {
		select {
		case <-interrupted:
			slog.Info("interrupted, stopping")
			interrupted = nil
			cancel()
			force = make(chan os.Signal, 1)
			signal.Notify(force, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(force)
			p.stop(true)
		case <-force:
			p.stop(false)
		case <-limit:
			slog.Info("time limit reached", "seconds", p.opts.seconds)
			limit = nil
			p.stop(true)
		case <-ticker.C:
			queue.RunPendingTasks()
		}
	}
}
