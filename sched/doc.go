// SPDX-License-Identifier: EPL-2.0

// Package sched provides the background worker pool and the
// owning-goroutine task queue.
//
// A Pool executes work on any worker. SubmitWithReply additionally posts a
// reply to a TaskRunner, normally a TaskQueue drained by the goroutine that
// owns it:
//
//	pool := sched.NewPool(0)
//	defer pool.Shutdown()
//	queue := sched.NewTaskQueue()
//
//	pool.SubmitWithReply(decodeNext, func() { log.Println("done") }, queue)
//
//	for range ticker.C {
//	    queue.RunPendingTasks()
//	}
//
// Panics in submitted work are recovered and logged; the worker keeps running.
package sched
