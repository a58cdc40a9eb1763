// SPDX-License-Identifier: EPL-2.0

package sched

import "sync"

// TaskRunner accepts tasks to be run on the goroutine that owns it.
type TaskRunner interface {
	PostTask(task func())
}

// TaskQueue is an owning-goroutine task queue. Any goroutine may post; only
// the owner runs tasks, by calling RunPendingTasks.
type TaskQueue struct {
	mtx   sync.Mutex
	tasks []func()
	// spare is a drained batch handed back for reuse. It is only set once
	// nothing iterates it any more.
	spare []func()
}

func NewTaskQueue() *TaskQueue {
	return &TaskQueue{}
}

// PostTask appends task. A nil task is ignored.
func (q *TaskQueue) PostTask(task func()) {
	if task == nil {
		return
	}

	q.mtx.Lock()
	q.tasks = append(q.tasks, task)
	q.mtx.Unlock()
}

// RunPendingTasks runs every task queued before the call, in post order,
// and returns how many ran. Tasks posted while running wait for the next call.
func (q *TaskQueue) RunPendingTasks() int {
	q.mtx.Lock()
	batch := q.tasks
	q.tasks, q.spare = q.spare, nil
	q.mtx.Unlock()

	for _, task := range batch {
		task()
	}

	n := len(batch)
	clear(batch)

	q.mtx.Lock()
	if q.spare == nil {
		q.spare = batch[:0]
	}
	q.mtx.Unlock()

	return n
}

// Len returns the number of queued tasks.
func (q *TaskQueue) Len() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return len(q.tasks)
}
