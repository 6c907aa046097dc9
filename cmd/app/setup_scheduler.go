package main

import (
	"crypto/rand"
	"log"
	"math/big"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/keywords"
	"github.com/matrix-org/postguard/session"
	"github.com/matrix-org/postguard/tasks"
)

func setupScheduler(scheduler gocron.Scheduler, sessions session.Store, manager *keywords.Manager, instanceConfig *config.InstanceConfig) error {
	if err := scheduleSessionPurgeTask(scheduler, sessions, instanceConfig); err != nil {
		return err
	}
	if err := scheduleKeywordReloadTask(scheduler, manager, instanceConfig); err != nil {
		return err
	}
	return nil
}

func scheduleSessionPurgeTask(scheduler gocron.Scheduler, sessions session.Store, instanceConfig *config.InstanceConfig) error {
	if instanceConfig.SessionBackend == config.SessionBackendRedis {
		log.Println("Sessions are stored in redis, which expires them itself. Not scheduling purge task.")
		return nil
	}
	if instanceConfig.SessionPurgeMinutes <= 0 {
		log.Printf("PG_SESSION_PURGE_MINUTES must be greater than 0. Using default of 5 minutes.")
		instanceConfig.SessionPurgeMinutes = 5
	}

	interval := time.Duration(instanceConfig.SessionPurgeMinutes) * time.Minute
	purgeTask, err := scheduler.NewJob(gocron.DurationJob(interval), gocron.NewTask(tasks.PurgeExpiredSessions, sessions), gocron.WithName("PurgeExpiredSessions"))
	if err != nil {
		return err
	}

	log.Printf("Scheduled session purge task every %d minutes: %s", instanceConfig.SessionPurgeMinutes, purgeTask.ID())
	return nil
}

func scheduleKeywordReloadTask(scheduler gocron.Scheduler, manager *keywords.Manager, instanceConfig *config.InstanceConfig) error {
	if instanceConfig.KeywordReloadMinutes <= 0 {
		log.Println("Scheduled keyword reloads are disabled")
		return nil
	}

	// We do the math in seconds to get a slightly more accurate number (10% of 1 minute is 6 seconds, but if we did our
	// math in minutes then we'd end up with a range of 1 minute). The jitter keeps replicas from reading at once.
	variance := time.Duration(float64(instanceConfig.KeywordReloadMinutes*60)*0.1) * time.Second
	minMinutes := (time.Duration(instanceConfig.KeywordReloadMinutes) * time.Minute) - variance
	maxMinutes := (time.Duration(instanceConfig.KeywordReloadMinutes) * time.Minute) + variance

	// "should never happen" clauses
	if minMinutes < 0 {
		minMinutes = 1 * time.Minute
	}
	if maxMinutes < minMinutes {
		maxMinutes = minMinutes + time.Minute
	}

	reloadTask, err := scheduler.NewJob(gocron.DurationRandomJob(minMinutes, maxMinutes), gocron.NewTask(tasks.ReloadKeywords, manager), gocron.WithName("ReloadKeywords"))
	if err != nil {
		return err
	}

	log.Printf("Scheduled keyword reload task every ~%d minutes: %s", instanceConfig.KeywordReloadMinutes, reloadTask.ID())
	runTaskNowish(reloadTask)

	return nil
}

// runTaskNowish - Runs a gocron task as quickly as possible, with a small delay to avoid overlapping calls. The task will
// wait asynchronously to run, so this will return immediately regardless of whether the task is running.
func runTaskNowish(task gocron.Job) {
	go func() {
		// we don't *need* a cryptographic random number here, but security audits might complain if we don't
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			log.Printf("Non-fatal error generating jitter for task %s: %v", task.ID(), err)
			n = big.NewInt(4) // https://xkcd.com/221
		}
		<-time.After(time.Duration(n.Int64()) * time.Second)
		if err = task.RunNow(); err != nil {
			log.Printf("Non-fatal error trying to run task %s immediately: %v", task.ID(), err)
		}
	}()
}
