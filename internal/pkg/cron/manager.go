package cron

import (
	"Lumen/internal/job"
	"context"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine    *cron.Cron
	spec      string
	rollupJob *job.AnalyticsRollupJob
}

func NewCronManager(spec string, rollupJob *job.AnalyticsRollupJob) *Manager {
	return &Manager{
		engine:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		spec:      spec,
		rollupJob: rollupJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.spec, s.rollupJob); err != nil {
		return err
	}
	return nil
}

// Run 注册并启动汇总任务，阻塞到 ctx 结束后停止引擎，周期表达式非法时立即返回错误
func (s *Manager) Run(ctx context.Context) error {
	if err := s.RegisterJobs(); err != nil {
		log.Error("Failed to register cron jobs", "rollup_spec", s.spec, "err", err)
		return err
	}
	s.Start()
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动", "rollup_spec", s.spec)
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
