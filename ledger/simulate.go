package ledger

import (
	"context"
	"math/rand"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
)

// SimConfig drives Simulate. Each tick is one simulated day.
type SimConfig struct {
	Tick time.Duration
	Seed int64
	// PostsPerDay transactions are posted to every open account per day,
	// each a uniform amount in [-MaxPostMinor, MaxPostMinor].
	PostsPerDay  int
	MaxPostMinor int64
}

// Simulate posts random transactions to the book until ctx is done, standing in for
// the real payment flows that would move balances.
func Simulate(ctx context.Context, book *Book, cfg SimConfig) {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	for range channerics.NewTicker(ctx.Done(), cfg.Tick) {
		simulateDay(book, rng, cfg)
	}
}

func simulateDay(book *Book, rng *rand.Rand, cfg SimConfig) {
	if cfg.MaxPostMinor > 0 {
		for _, acct := range book.Snapshot().Accounts {
			for i := 0; i < cfg.PostsPerDay; i++ {
				amount := rng.Int63n(2*cfg.MaxPostMinor+1) - cfg.MaxPostMinor
				// The account may close between snapshot and post; that post is simply lost.
				_ = book.Post(acct.ID, amount)
			}
		}
	}
	book.AdvanceDay()
}
