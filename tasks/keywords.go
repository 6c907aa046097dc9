package tasks

import (
	"context"
	"log"
	"time"
)

// KeywordReloader - Implemented by keywords.Manager.
type KeywordReloader interface {
	ReloadNow(ctx context.Context) error
}

func ReloadKeywords(reloader KeywordReloader) {
	log.Println("Running keyword reload task...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := reloader.ReloadNow(ctx); err != nil {
		// The previous keywords stay in place
		log.Printf("Non-fatal error reloading keywords: %v", err)
		return
	}

	log.Println("Finished keyword reload task")
}
