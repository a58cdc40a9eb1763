// SPDX-License-Identifier: EPL-2.0

package mixcore

import (
	"github.com/ik5/mixcore/audio"
	"github.com/ik5/mixcore/driver"
	"github.com/ik5/mixcore/internal/config"
	"github.com/ik5/mixcore/mixer"
	"github.com/ik5/mixcore/sched"
	"github.com/samber/do/v2"
)

// RegisterDI provides the registry, pool, control queue, engine, sink and
// loader. A *config.Config must already be provided. sinkOpts are passed to
// driver.New after the configured period.
//
// The pool and sink are not shut down by the injector; callers close the
// sink and shut the pool down themselves, in that order.
func RegisterDI(injector do.Injector, sinkOpts ...driver.Option) {
	do.Provide(injector, func(i do.Injector) (*audio.Registry, error) {
		return NewDefaultRegistry(), nil
	})

	do.Provide(injector, func(i do.Injector) (*sched.Pool, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return sched.NewPool(cfg.Workers), nil
	})

	do.Provide(injector, func(i do.Injector) (*sched.TaskQueue, error) {
		return sched.NewTaskQueue(), nil
	})

	do.Provide(injector, func(i do.Injector) (*mixer.Engine, error) {
		pool := do.MustInvoke[*sched.Pool](i)
		queue := do.MustInvoke[*sched.TaskQueue](i)
		return mixer.NewEngine(pool, queue), nil
	})

	do.Provide(injector, func(i do.Injector) (driver.Sink, error) {
		cfg := do.MustInvoke[*config.Config](i)
		eng := do.MustInvoke[*mixer.Engine](i)

		opts := append([]driver.Option{driver.WithPeriodFrames(cfg.PeriodFrames)}, sinkOpts...)
		return driver.New(cfg.Driver, driver.RenderFunc(eng.Render), cfg.SampleRate, opts...)
	})

	do.Provide(injector, func(i do.Injector) (*Loader, error) {
		cfg := do.MustInvoke[*config.Config](i)
		reg := do.MustInvoke[*audio.Registry](i)
		return NewLoader(reg, cfg.SampleRate,
			WithStreamThreshold(cfg.StreamThresholdBytes),
			WithChunkFrames(cfg.StreamChunkFrames)), nil
	})
}
