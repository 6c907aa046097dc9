package main

import (
	"github.com/matrix-org/postguard/audit"
	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/enhance"
	"github.com/matrix-org/postguard/keywords"
	"github.com/matrix-org/postguard/pubsub"
	"github.com/matrix-org/postguard/queue"
	"github.com/matrix-org/postguard/session"
)

func setupQueue(instanceConfig *config.InstanceConfig, manager *keywords.Manager, sessions session.Store, pubsubClient pubsub.Client, auditPublisher *audit.Publisher) (*queue.Pool, error) {
	poolConfig := &queue.PoolConfig{
		ConcurrentPools: instanceConfig.ProcessingPools,
		SizePerPool:     instanceConfig.ProcessingPoolSize,
		MaxTextLength:   instanceConfig.MaxTextLength,
	}
	return queue.NewPool(poolConfig, manager, enhance.NewDefault(instanceConfig.LinkDenyList), sessions, pubsubClient, auditPublisher)
}
