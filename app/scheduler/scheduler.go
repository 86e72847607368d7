/*
Package scheduler manages periodic jobs on top of robfig/cron.
Jobs implement the Job interface and are registered by name; a panic
inside a job is recovered and logged so one bad run cannot take down
the whole process.
*/
package scheduler

import (
	"context"
	"runtime"
	"sync"

	"github.com/robfig/cron/v3"

	"bridge_cao/utility/logger"
)

// Scheduler wraps a cron instance and keeps a name -> entry mapping so
// jobs can be replaced or removed by name.
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]cron.EntryID
	mu   sync.RWMutex
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		jobs: make(map[string]cron.EntryID),
	}
}

// Start begins executing registered jobs. Jobs may still be added
// while the scheduler is running.
func (s *Scheduler) Start() {
	log := logger.GetLogger("scheduler")
	s.mu.RLock()
	for name := range s.jobs {
		log.WithField("job", name).Info("job registered")
	}
	count := len(s.jobs)
	s.mu.RUnlock()

	s.cron.Start()
	log.WithField("jobs", count).Info("scheduler started")
}

// Stop stops the scheduler. The returned context is done once all
// running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// AddJob registers a raw function under the given name and cron spec.
// An existing job with the same name is replaced.
func (s *Scheduler) AddJob(name string, spec string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.jobs[name]; exists {
		s.cron.Remove(id)
		delete(s.jobs, name)
	}

	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return err
	}
	s.jobs[name] = id
	return nil
}

// AddJobObject registers a Job, wrapping Execute with panic recovery
// and outcome logging.
func (s *Scheduler) AddJobObject(job Job) error {
	name := job.GetName()
	log := logger.GetLogger("scheduler")

	wrapped := func() {
		defer func() {
			if r := recover(); r != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				log.WithField("job", name).Errorf("panic in job: %v\n%s", r, buf[:n])
			}
		}()

		if err := job.Execute(context.Background()); err != nil {
			log.WithField("job", name).WithError(err).Error("job failed")
			return
		}
		log.WithField("job", name).Debug("job completed")
	}

	return s.AddJob(name, job.GetSchedule(), wrapped)
}

// RemoveJob unregisters the named job. Unknown names are ignored.
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.jobs[name]; exists {
		s.cron.Remove(id)
		delete(s.jobs, name)
	}
}

// GetJobs returns a copy of the registered job map.
func (s *Scheduler) GetJobs() map[string]cron.EntryID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make(map[string]cron.EntryID, len(s.jobs))
	for k, v := range s.jobs {
		jobs[k] = v
	}
	return jobs
}
