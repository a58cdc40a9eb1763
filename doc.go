// SPDX-License-Identifier: EPL-2.0

// Package mixcore wires the mixing core into an application.
//
// The work is split across subpackages:
//
//   - mixer: the Engine that sums playing Inputs once per driver period
//   - bus: decoded sample storage, in memory (Static) or double-buffered
//     (Streaming)
//   - sched: the worker pool that refills streams and the control-goroutine
//     TaskQueue that receives end-of-playback notifications
//   - driver: output sinks, oto for real devices and a null sink for
//     headless or offline runs
//   - audio and formats/*: decoding WAV, MP3, Ogg Vorbis and AIFF
//
// This package adds a Loader that turns a file into a bus, choosing
// streaming for large files, and RegisterDI for github.com/samber/do.
//
// # Quick Start
//
//	loader := mixcore.NewLoader(mixcore.NewDefaultRegistry(), 48000)
//	b, err := loader.Load("door.ogg")
//	if err != nil {
//	    return err
//	}
//
//	in := mixer.NewInput()
//	in.SetEndCallback(func() { log.Println("finished") })
//	in.Play(engine, b, 1, false)
//
// The control goroutine must keep draining the engine's TaskQueue, or end
// callbacks never run.
package mixcore
