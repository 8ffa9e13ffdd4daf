package main

import (
	"context"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"SignalBench/internal/calculator"
	"SignalBench/internal/collector"
	"SignalBench/internal/config"
	"SignalBench/internal/estimator"
	"SignalBench/internal/metrics"
	"SignalBench/internal/notifier"
	"SignalBench/internal/pipeline"
	"SignalBench/internal/recorder"
	"SignalBench/internal/scheduler"
)

// app is the wired set of components shared by the commands.
type app struct {
	cfg        *config.Config
	sched      *scheduler.Scheduler
	recorder   recorder.Recorder
	telegram   *notifier.TelegramNotifier
	metricsSrv *metrics.Server
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if csvPath != "" {
		cfg.DataSource.Type = "csv"
		cfg.DataSource.CSVPath = csvPath
	}
	if symbol != "" {
		cfg.DataSource.Symbol = symbol
	}
	if outPath != "" {
		cfg.Output.CSVPath = outPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	fetcher := newFetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Days)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)
	health := metrics.NewHealthStatus()

	opts := pipelineOptions(cfg)
	opts.Observe = m.ObserveStage
	runner, err := pipeline.NewRunner(opts)
	if err != nil {
		return nil, err
	}

	var recs recorder.Multi
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, runs will not be stored: %v", err)
		} else {
			recs = append(recs, sr)
			health.DB = sr
		}
	}
	if cfg.Output.CSVPath != "" {
		recs = append(recs, recorder.NewCSVRecorder(cfg.Output.CSVPath))
	}

	a := &app{cfg: cfg, recorder: recs}
	a.sched = scheduler.NewScheduler(context.Background(), col, cfg.DataSource.Symbol, runner, recs)
	a.sched.Metrics = m
	a.sched.Health = health

	if cfg.TelegramEnabled() {
		a.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		a.sched.Notifier = a.telegram
	}
	if cfg.Metrics.Addr != "" {
		a.metricsSrv = metrics.NewServer(cfg.Metrics.Addr, reg, health)
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Printf("[WARN] close recorder: %v", err)
	}
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Type {
	case "csv":
		return collector.NewCSVFetcher(cfg.DataSource.CSVPath)
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: 5000}
	default:
		return collector.NewYahooFetcher(cfg.Proxy)
	}
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	est := cfg.Estimator
	weightings := make([]estimator.Weighting, len(est.Classifier.Weightings))
	for i, w := range est.Classifier.Weightings {
		weightings[i] = estimator.Weighting(w)
	}
	return pipeline.Options{
		Indicators: calculator.Params{
			MAShort: cfg.Indicators.MAShort,
			MALong:  cfg.Indicators.MALong,
			RSICom:  cfg.Indicators.RSICom,
		},
		TrainRatio:       est.TrainRatio,
		ClassifierSearch: estimator.GridSearch{Folds: est.Folds, Workers: est.Workers, Score: estimator.Accuracy},
		Classifiers:      estimator.KNNCandidates(est.Classifier.Neighbors, weightings),
		RegressorSearch:  estimator.GridSearch{Folds: est.Folds, Workers: est.Workers, Score: estimator.NegRMSE},
		Regressors:       estimator.RidgeCandidates(est.Regressor.Alphas),
	}
}
