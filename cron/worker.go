package cron

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"fitbuds/config"
	"fitbuds/services/identity"
)

// StartBridgeWorker runs the background worker that delivers queued
// identity-bridge credentials to the host platform. Delivery failures are
// retried by the queue and logged; they never reach the wizard.
func StartBridgeWorker(cfg config.Config, bridge *identity.AjaxBridge, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		},
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(identity.TypeBridgeStore, handleBridgeStore(bridge, logger))

	go func() {
		logger.Info("starting bridge worker")
		if err := srv.Run(mux); err != nil {
			logger.Error("bridge worker stopped", zap.Error(err))
		}
	}()
	return srv
}

func handleBridgeStore(bridge *identity.AjaxBridge, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var req identity.StoreRequest
		if err := json.Unmarshal(task.Payload(), &req); err != nil {
			logger.Error("invalid bridge task payload", zap.Error(err))
			return err
		}
		if err := bridge.StoreRemoteIdentity(ctx, req); err != nil {
			logger.Warn("bridge delivery failed", zap.Int("userId", req.UserID), zap.Error(err))
			return err
		}
		logger.Info("stored remote identity on host platform", zap.Int("userId", req.UserID))
		return nil
	}
}
