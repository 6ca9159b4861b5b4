package session

import (
	"context"
	"log"
	"time"
)

// Purger is implemented by stores that can expire sessions.
type Purger interface {
	PurgeExpired(ttl time.Duration) (int, error)
}

// Sweeper periodically drops sessions older than the configured TTL.
type Sweeper struct {
	Store    Purger
	TTL      time.Duration
	Interval time.Duration
}

func NewSweeper(store Purger, ttl time.Duration) *Sweeper {
	return &Sweeper{
		Store:    store,
		TTL:      ttl,
		Interval: 15 * time.Minute,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Println("Session sweeper started...")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Store.PurgeExpired(s.TTL)
			if err != nil {
				log.Printf("Error purging expired sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Purged %d expired session(s)", n)
			}
		}
	}
}
