package scheduler

import (
	"context"
	"sync"
)

// Job is the contract every scheduled job fulfils.
type Job interface {
	Execute(ctx context.Context) error
	GetName() string
	GetSchedule() string
}

// BaseJob carries name, schedule and an overlap guard. Concrete jobs
// embed *BaseJob and register their run function via
// SetExecuteCallback; if a run is still in flight when the next tick
// fires, the tick is skipped.
type BaseJob struct {
	name      string
	schedule  string
	mu        sync.Mutex
	isRunning bool
	execute   func(ctx context.Context) error
}

func NewBaseJob(name, schedule string) *BaseJob {
	return &BaseJob{name: name, schedule: schedule}
}

func (j *BaseJob) GetName() string     { return j.name }
func (j *BaseJob) GetSchedule() string { return j.schedule }

// SetExecuteCallback installs the concrete job's run function.
func (j *BaseJob) SetExecuteCallback(fn func(ctx context.Context) error) {
	j.execute = fn
}

func (j *BaseJob) Execute(ctx context.Context) error {
	j.mu.Lock()
	if j.isRunning {
		j.mu.Unlock()
		return nil
	}
	j.isRunning = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.isRunning = false
		j.mu.Unlock()
	}()

	if j.execute == nil {
		return nil
	}
	return j.execute(ctx)
}
