// Package tasks runs a single cancellable background goroutine at a time:
// starting a new task stops the previous one and waits for it to
// acknowledge. The bg builtin uses this for its post-resume polling loop,
// so consecutive `bg` invocations never stack pollers.
package tasks

import "sync"

// TaskManager owns at most one live Task.
type TaskManager struct {
	currentTask *Task
	mutex       sync.Mutex
}

// Task is a handle on a running background function.
type Task struct {
	stop          chan struct{}
	notifyStopped chan struct{}
}

// NewTaskManager returns a TaskManager with no task running.
func NewTaskManager() *TaskManager {
	return &TaskManager{}
}

// NewTask stops the current task (if any) and starts f in its place. f must
// return promptly once stop is readable.
func (t *TaskManager) NewTask(f func(stop chan struct{})) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.currentTask != nil {
		t.currentTask.Stop()
	}

	// Buffered so Stop doesn't block when f already returned on its own.
	stop := make(chan struct{}, 1)
	notifyStopped := make(chan struct{})

	t.currentTask = &Task{
		stop:          stop,
		notifyStopped: notifyStopped,
	}

	go func() {
		f(stop)
		notifyStopped <- struct{}{}
	}()

	return nil
}

// Stop signals the task's function and blocks until it has returned.
func (t *Task) Stop() {
	t.stop <- struct{}{}
	<-t.notifyStopped
}
