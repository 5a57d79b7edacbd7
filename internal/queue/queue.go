// Package queue hands processing jobs from the upload request to a worker
// pool. Jobs are track record ids; a record is enqueued exactly once, which
// keeps at most one worker on any given record. With redis configured the
// queue is a redis list shared across instances; without it jobs stay on an
// in-process channel.
package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const queueKey = "tracks:process:queue"

// Handler processes one record id. It owns writing the terminal state; the
// queue never retries, matching the run-to-completion contract.
type Handler func(ctx context.Context, recordID string)

type Queue struct {
	redis *redis.Client
	local chan string
}

func New(redisClient *redis.Client) *Queue {
	return &Queue{
		redis: redisClient,
		local: make(chan string, 1024),
	}
}

func (q *Queue) Enqueue(ctx context.Context, recordID string) error {
	if q.redis != nil {
		return q.redis.LPush(ctx, queueKey, recordID).Err()
	}
	select {
	case q.local <- recordID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the worker pool and blocks until ctx is cancelled. A job
// already picked up runs to completion even after cancellation.
func (q *Queue) Run(ctx context.Context, workers int, handle Handler) {
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.workerLoop(ctx, handle)
		}()
	}
	wg.Wait()
}

func (q *Queue) workerLoop(ctx context.Context, handle Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		id, ok := q.next(ctx)
		if !ok {
			continue
		}
		handle(context.Background(), id)
	}
}

// next blocks briefly for the next job so cancellation is noticed between
// polls.
func (q *Queue) next(ctx context.Context) (string, bool) {
	if q.redis != nil {
		res, err := q.redis.BRPop(ctx, time.Second, queueKey).Result()
		if err != nil {
			if err != redis.Nil && ctx.Err() == nil {
				log.Printf("queue pop error: %v", err)
				time.Sleep(time.Second)
			}
			return "", false
		}
		// BRPOP returns [key, value]
		if len(res) != 2 {
			return "", false
		}
		return res[1], true
	}

	select {
	case id := <-q.local:
		return id, true
	case <-ctx.Done():
		return "", false
	case <-time.After(time.Second):
		return "", false
	}
}
