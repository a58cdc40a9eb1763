// SPDX-License-Identifier: EPL-2.0

// Package mixer is the real-time mixing core.
//
// An Engine sums every active Input into an interleaved stereo float32
// buffer once per driver period. Three goroutines are involved:
//
//   - the control goroutine owns Inputs, calls Play and Stop, and drains
//     the reply queue given to NewEngine;
//   - the driver goroutine calls Render;
//   - pool workers refill streaming buses.
//
// Render takes no lock it could wait on. Cross-goroutine Input settings are
// atomics, newly played Inputs are picked up with a TryLock, and a refill
// that is late replays stale samples instead of blocking.
//
// When an Input stops, fades to zero or reaches the end of a non-looping
// bus, it is moved to a retirement list. Once no refill is in flight for
// it, its end callback is posted to the control goroutine, exactly once:
//
//	pool := sched.NewPool(0)
//	queue := sched.NewTaskQueue()
//	eng := mixer.NewEngine(pool, queue)
//
//	in := mixer.NewInput()
//	in.SetEndCallback(func() { fmt.Println("done") })
//	in.Play(eng, b, 1, false)
//
//	for range time.Tick(16 * time.Millisecond) {
//	    queue.RunPendingTasks()
//	}
//
// Resampling is a 1/100 fixed-point step applied to the cursor. It is meant
// for small pitch changes; buses are expected to already be at the device
// rate.
package mixer
