package sweep

import (
	"context"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/common/config"
	"github.com/RentalDesk/RentalDesk/internal/common/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler 按配置的 cron 表达式驱动扫描任务。
// 任务失败只记日志，不影响后续周期。
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	log     logger.Logger
}

func NewScheduler(sweeper *Sweeper, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		log:     log,
	}
}

// Start 注册三个扫描任务并启动调度。
func (s *Scheduler) Start(cfg config.CronConfig) error {
	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context, now time.Time) (int, error)
	}{
		{"overdue", cfg.OverdueSpec, s.sweeper.SweepOverdue},
		{"pickup_due", cfg.PickupDueSpec, s.sweeper.SweepPickupDue},
		{"maintenance_due", cfg.MaintenanceDueSpec, s.sweeper.SweepMaintenanceDue},
	}
	for _, j := range jobs {
		job := j
		_, err := s.cron.AddFunc(job.spec, func() {
			n, err := job.run(context.Background(), time.Now())
			if err != nil {
				s.log.Errorf("sweep %s failed after %d rows: %v", job.name, n, err)
				return
			}
			s.log.Infof("sweep %s done, %d rows", job.name, n)
		})
		if err != nil {
			return err
		}
	}
	s.cron.Start()
	return nil
}

// Stop 停止调度并等待在跑的任务结束。
func (s *Scheduler) Stop() {
	if s == nil || s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
