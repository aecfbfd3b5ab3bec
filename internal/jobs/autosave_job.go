// Package jobs holds the background schedules of the server.
package jobs

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/padrino-pos/api/internal/service"
)

// AutosaveJob periodically flushes unsaved order edits to the store, so an
// unexpected shutdown loses at most one interval of work.
type AutosaveJob struct {
	svc  *service.OrderService
	cron *cron.Cron
	spec string
}

// NewAutosaveJob creates the autosave job. spec is a cron expression or a
// descriptor like "@every 30s".
func NewAutosaveJob(svc *service.OrderService, spec string) *AutosaveJob {
	return &AutosaveJob{
		svc:  svc,
		cron: cron.New(),
		spec: spec,
	}
}

// Start begins the autosave schedule.
func (j *AutosaveJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		if err := j.svc.FlushDirty(context.Background()); err != nil {
			log.Printf("autosave failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	log.Printf("autosave job started (%s)", j.spec)
	return nil
}

// Stop halts the schedule and runs one final flush.
func (j *AutosaveJob) Stop() {
	j.cron.Stop()
	if err := j.svc.FlushDirty(context.Background()); err != nil {
		log.Printf("final autosave flush failed: %v", err)
	}
	log.Println("autosave job stopped")
}
