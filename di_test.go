// SPDX-License-Identifier: EPL-2.0

package mixcore

import (
	"testing"

	"github.com/ik5/mixcore/audio"
	"github.com/ik5/mixcore/driver"
	"github.com/ik5/mixcore/internal/config"
	"github.com/ik5/mixcore/mixer"
	"github.com/ik5/mixcore/sched"
	"github.com/samber/do/v2"
)

func TestRegisterDI(t *testing.T) {
	injector := do.New()
	do.ProvideValue(injector, &config.Config{
		Driver:               "null",
		SampleRate:           48000,
		PeriodFrames:         256,
		Workers:              1,
		StreamThresholdBytes: 1 << 20,
		StreamChunkFrames:    4096,
	})
	RegisterDI(injector, driver.WithLogger(quiet))

	if _, err := do.Invoke[*audio.Registry](injector); err != nil {
		t.Errorf("Invoke registry: %v", err)
	}
	if _, err := do.Invoke[*Loader](injector); err != nil {
		t.Errorf("Invoke loader: %v", err)
	}

	pool, err := do.Invoke[*sched.Pool](injector)
	if err != nil {
		t.Fatalf("Invoke pool: %v", err)
	}
	defer pool.Shutdown()
	if pool.Workers() != 1 {
		t.Errorf("Workers() = %d, want 1", pool.Workers())
	}

	eng, err := do.Invoke[*mixer.Engine](injector)
	if err != nil {
		t.Fatalf("Invoke engine: %v", err)
	}
	again := do.MustInvoke[*mixer.Engine](injector)
	if eng != again {
		t.Error("engine is not a singleton")
	}

	sink, err := do.Invoke[driver.Sink](injector)
	if err != nil {
		t.Fatalf("Invoke sink: %v", err)
	}
	null, ok := sink.(*driver.Null)
	if !ok {
		t.Fatalf("sink = %T, want *driver.Null", sink)
	}
	if err := null.RenderPeriods(2); err != nil {
		t.Fatalf("RenderPeriods() error = %v", err)
	}
	if null.Frames() != 512 {
		t.Errorf("Frames() = %d, want 512", null.Frames())
	}
	if eng.Stats().Rendered != 2 {
		t.Errorf("engine rendered %d periods, want 2", eng.Stats().Rendered)
	}
}
