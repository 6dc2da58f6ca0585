package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"newsdesk/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	importQueueKey = "queue:import"
	jobTTL         = 7 * 24 * time.Hour
	popTimeout     = time.Second
)

var ErrJobNotFound = errors.New("import job not found")

// RedisQueue holds pending import jobs in a Redis list and their records in plain keys.
type RedisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue connects to the Redis server at addr.
func NewRedisQueue(addr string) (*RedisQueue, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisQueue{rdb: rdb}, nil
}

func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}

func jobKey(id uuid.UUID) string {
	return fmt.Sprintf("import:%s", id)
}

// Enqueue stores the job record and pushes it onto the queue.
func (q *RedisQueue) Enqueue(ctx context.Context, job *model.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	pipe := q.rdb.TxPipeline()
	pipe.Set(ctx, jobKey(job.ID), data, jobTTL)
	pipe.LPush(ctx, importQueueKey, job.ID.String())
	_, err = pipe.Exec(ctx)
	return err
}

// Save overwrites the job record.
func (q *RedisQueue) Save(ctx context.Context, job *model.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.Set(ctx, jobKey(job.ID), data, jobTTL).Err()
}

// Get loads a job record.
func (q *RedisQueue) Get(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	val, err := q.rdb.Get(ctx, jobKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrJobNotFound
	} else if err != nil {
		return nil, err
	}

	var job model.ImportJob
	if err := json.Unmarshal(val, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Pop blocks until a job is queued or ctx is done.
func (q *RedisQueue) Pop(ctx context.Context) (*model.ImportJob, error) {
	var result []string
	for {
		// Short blocking waits so cancellation is noticed between them.
		var err error
		result, err = q.rdb.BRPop(ctx, popTimeout, importQueueKey).Result()
		if err == redis.Nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	id, err := uuid.Parse(result[1])
	if err != nil {
		return nil, fmt.Errorf("bad job id %q: %w", result[1], err)
	}
	return q.Get(ctx, id)
}
