package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-fleet-api/internal/service"
	"github.com/noah-isme/campus-fleet-api/pkg/config"
	"github.com/noah-isme/campus-fleet-api/pkg/jobs"
)

// startHistoryRetryQueue wires the audit retry queue into historySvc. The
// workers run until Stop so appends failing during the HTTP drain are still
// retried. Returns nil when retries are disabled.
func startHistoryRetryQueue(retry config.AuditRetryConfig, historySvc *service.LocationHistoryService, metrics *service.MetricsService, logr *zap.Logger) *jobs.Queue {
	if !retry.Enabled {
		return nil
	}
	queue := jobs.NewQueue("location-history", historySvc.RetryAppend, jobs.QueueConfig{
		Workers:    retry.Workers,
		BufferSize: retry.BufferSize,
		MaxRetries: retry.MaxRetries,
		RetryDelay: retry.RetryDelay,
		Logger:     logr,
		OnRetry:    func(jobs.Job) { metrics.AuditRetry("retried") },
		OnDrop:     historySvc.HandleDropped,
	})
	queue.Start(context.Background())
	historySvc.UseRetryQueue(queue)
	return queue
}
