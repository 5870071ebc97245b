package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/splitio/go-toolkit/v5/logging"
)

// AsyncTask is a struct that wraps tasks that should run periodically and can be remotely stopped & started,
// as well as making it's status (running/stopped) available. The period can be changed while the task runs.
type AsyncTask struct {
	task    func(l logging.LoggerInterface) error
	name    string
	onStop  func(l logging.LoggerInterface)
	logger  logging.LoggerInterface
	mutex   sync.Mutex
	running bool
	period  time.Duration
	stop    chan struct{}
	reset   chan time.Duration
	done    chan struct{}
}

// Start initiates the task. Each execution is guarded by a call to recover() in order
// to prevent the main application from crashing if something goes wrong while the sdk interacts with the backend.
func (t *AsyncTask) Start() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.running {
		t.logger.Warning(fmt.Sprintf("Task %s is already running. Aborting new execution.", t.name))
		return
	}

	t.running = true
	t.stop = make(chan struct{})
	t.reset = make(chan time.Duration, 1)
	t.done = make(chan struct{})
	go t.run(t.period, t.stop, t.reset, t.done)
}

func (t *AsyncTask) run(period time.Duration, stop <-chan struct{}, reset <-chan time.Duration, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			if t.onStop != nil {
				t.onStop(t.logger)
			}
			return
		case newPeriod := <-reset:
			ticker.Reset(newPeriod)
		case <-ticker.C:
			t.execute()
		}
	}
}

func (t *AsyncTask) execute() {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error(fmt.Sprintf("AsyncTask %s is panicking! %v", t.name, r))
		}
	}()
	if err := t.task(t.logger); err != nil {
		t.logger.Error(fmt.Sprintf("AsyncTask %s: %s", t.name, err.Error()))
	}
}

// Stop prevents future executions of the task. When blocking is true it waits for the
// current execution and the onStop hook to finish.
func (t *AsyncTask) Stop(blocking bool) {
	t.mutex.Lock()
	if !t.running {
		t.mutex.Unlock()
		return
	}
	t.running = false
	close(t.stop)
	done := t.done
	t.mutex.Unlock()

	if blocking {
		<-done
	}
}

// IsRunning returns true if the task is currently running
func (t *AsyncTask) IsRunning() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.running
}

// Period returns the current execution period
func (t *AsyncTask) Period() time.Duration {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.period
}

// SetPeriod re-arms the task with a new period. The running ticker is reset, no second timer is
// created. Non-positive periods are ignored.
func (t *AsyncTask) SetPeriod(period time.Duration) {
	if period <= 0 {
		return
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.period = period
	if !t.running {
		return
	}
	// only the latest period matters
	select {
	case <-t.reset:
	default:
	}
	t.reset <- period
}

// NewAsyncTask creates a new task and returns a pointer to it
func NewAsyncTask(
	name string,
	task func(l logging.LoggerInterface) error,
	period time.Duration,
	onStop func(l logging.LoggerInterface),
	logger logging.LoggerInterface,
) *AsyncTask {
	if period <= 0 {
		period = time.Second
	}
	return &AsyncTask{
		name:   name,
		task:   task,
		period: period,
		onStop: onStop,
		logger: logger,
	}
}
