package main

import (
	"time"

	"github.com/matrix-org/postguard/api"
	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/keywords"
	"github.com/matrix-org/postguard/queue"
	"github.com/matrix-org/postguard/session"
)

func setupApi(instanceConfig *config.InstanceConfig, pool *queue.Pool, sessions session.Store, manager *keywords.Manager) (*api.Api, error) {
	apiConfig := &api.Config{
		ApiKey:       instanceConfig.ApiKey,
		CheckTimeout: time.Duration(instanceConfig.CheckTimeoutSeconds) * time.Second,
	}
	return api.NewApi(apiConfig, pool, sessions, manager)
}
