package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"bridge_cao/app/integrations"
	"bridge_cao/app/jobs"
	"bridge_cao/app/scheduler"
	"bridge_cao/app/server"
	"bridge_cao/app/services"
	"bridge_cao/config"
	"bridge_cao/global"
	"bridge_cao/utility/logger"
)

func main() {
	// Read .env before anything else.
	global.GlobalConfig = config.NewConfig()
	cfg := global.GlobalConfig

	if err := logger.InitLogger(config.LogConfig()); err != nil {
		panic(fmt.Sprintf("cannot initialize logger: %v", err))
	}
	appLog := logger.GetAppLogger()
	appLog.WithFields(logrus.Fields{
		"shop":        cfg.ShopBaseURL,
		"api_version": cfg.APIVersion,
		"listen":      cfg.ListenAddr,
	}).Info("configuration loaded")

	api := integrations.NewGambioClient(cfg)
	svc := services.New(api, cfg)

	if cfg.ExportSchedule != "" {
		s := scheduler.NewScheduler()
		job := jobs.NewExportOrdersSinceJob("export-orders-since", cfg.ExportSchedule, svc, cfg.ExportDir)
		if err := s.AddJobObject(job); err != nil {
			appLog.WithError(err).Fatal("cannot register order export job")
		}
		s.Start()
		appLog.WithFields(logrus.Fields{
			"job":      job.GetName(),
			"schedule": job.GetSchedule(),
		}).Info("scheduled order export enabled")
	}

	srv := server.NewServer(cfg, svc)
	appLog.WithField("addr", cfg.ListenAddr).Info("starting HTTP server")
	if err := srv.ListenAndServe(); err != nil {
		appLog.WithError(err).Fatal("HTTP server stopped")
	}
}
