package services

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// OverdueSweeper runs the task overdue sweep on a schedule. The sweep is
// optional; deployments that prefer purely lazy detection leave it off.
type OverdueSweeper struct {
	tasks    *TaskService
	schedule string
	log      *logrus.Logger
	cron     *cron.Cron
}

func NewOverdueSweeper(tasks *TaskService, schedule string, log *logrus.Logger) *OverdueSweeper {
	return &OverdueSweeper{
		tasks:    tasks,
		schedule: schedule,
		log:      log,
		cron:     cron.New(),
	}
}

func (s *OverdueSweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.tasks.RunOverdueSweep(ctx); err != nil {
			s.log.WithError(err).Error("overdue sweep failed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.WithField("schedule", s.schedule).Info("overdue sweeper started")
	return nil
}

func (s *OverdueSweeper) Stop() {
	<-s.cron.Stop().Done()
}
