package tasks

import (
	"context"
	"log"
	"time"

	"github.com/matrix-org/postguard/session"
)

func PurgeExpiredSessions(store session.Store) {
	log.Println("Running session purge task...")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	if err := store.PurgeExpired(ctx); err != nil {
		log.Printf("Non-fatal error purging expired sessions: %v", err)
		return
	}

	log.Println("Finished session purge task")
}
