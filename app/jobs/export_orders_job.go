/*
Package jobs contains the scheduled jobs of the bridge. The only job
shipped by default is the incremental order export, which periodically
pulls orders changed since its previous run and archives them as
CAO-Faktura XML in the export directory.
*/
package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bridge_cao/app/caoxml"
	"bridge_cao/app/scheduler"
	"bridge_cao/app/services"
	"bridge_cao/utility/logger"
)

// ExportOrdersSinceJob writes a CAO order export of everything that
// changed since the last successful run. The first run covers the
// past 24 hours.
type ExportOrdersSinceJob struct {
	*scheduler.BaseJob

	svc       *services.Services
	exportDir string

	mu      sync.Mutex
	lastRun time.Time
}

func NewExportOrdersSinceJob(name, schedule string, svc *services.Services, exportDir string) *ExportOrdersSinceJob {
	job := &ExportOrdersSinceJob{
		BaseJob:   scheduler.NewBaseJob(name, schedule),
		svc:       svc,
		exportDir: exportDir,
	}
	job.BaseJob.SetExecuteCallback(job.run)
	return job
}

func (j *ExportOrdersSinceJob) run(ctx context.Context) error {
	log := logger.GetLogger("jobs")
	start := time.Now()

	j.mu.Lock()
	since := j.lastRun
	j.mu.Unlock()
	if since.IsZero() {
		since = start.Add(-24 * time.Hour)
	}

	sinceV3 := since.Format("2006-01-02T15:04:05")
	sinceV2 := strings.Replace(sinceV3, "T", " ", 1)

	orders, err := j.svc.FetchOrdersSince(sinceV3, sinceV2)
	if err != nil {
		log.WithError(err).WithField("since", sinceV3).Error("order export job failed")
		return err
	}

	if len(orders) == 0 {
		log.WithField("since", sinceV3).Debug("no orders changed, nothing to export")
		j.markRun(start)
		return nil
	}

	xml, err := caoxml.Serialize(caoxml.BuildOrders(orders))
	if err != nil {
		return err
	}
	if err := j.writeExport(xml, start); err != nil {
		return err
	}

	log.WithField("orders", len(orders)).
		WithField("duration", time.Since(start).String()).
		Info("order export job finished")
	j.markRun(start)
	return nil
}

func (j *ExportOrdersSinceJob) writeExport(xml string, ts time.Time) error {
	if err := os.MkdirAll(j.exportDir, 0o775); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	name := fmt.Sprintf("orders_export_%s.xml", ts.Format("20060102_150405"))
	return os.WriteFile(filepath.Join(j.exportDir, name), []byte(xml), 0o664)
}

func (j *ExportOrdersSinceJob) markRun(t time.Time) {
	j.mu.Lock()
	j.lastRun = t
	j.mu.Unlock()
}
