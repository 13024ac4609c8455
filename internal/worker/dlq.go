package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Jobs that exhaust their attempts land in "dlq:<queue>" and stay there
// until someone inspects them; nothing consumes the dead letter lists.
const DLQPrefix = "dlq:"

func dlqKey(queue string) string { return DLQPrefix + queue }

// DeadLetter is what is stored for a job that could not be processed.
type DeadLetter struct {
	Queue     string          `json:"queue"`
	JobType   string          `json:"job_type"`
	Payload   json.RawMessage `json:"payload"`
	Motivo    string          `json:"motivo"`
	Intentos  int             `json:"intentos"`
	FallidoEn time.Time       `json:"fallido_en"`
}

func newDeadLetter(queue string, job Job, motivo string) DeadLetter {
	return DeadLetter{
		Queue:     queue,
		JobType:   job.Type,
		Payload:   job.Payload,
		Motivo:    motivo,
		Intentos:  job.Attempts,
		FallidoEn: time.Now().UTC(),
	}
}

// SendToDLQ parks a failed job. The caller has nothing left to do with the
// job, so failures are only logged.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, motivo string) {
	data, err := json.Marshal(newDeadLetter(queue, job, motivo))
	if err == nil {
		err = rdb.LPush(ctx, dlqKey(queue), data).Err()
	}
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Str("job_type", job.Type).Msg("dlq: job lost")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("motivo", motivo).
		Int("intentos", job.Attempts).
		Msg("dlq: job parked")
}

// DLQLength is reported by /health.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, dlqKey(queue)).Result()
}

// PeekDLQ returns up to n of the most recent dead letters of queue.
func PeekDLQ(ctx context.Context, rdb *redis.Client, queue string, n int64) ([]DeadLetter, error) {
	raws, err := rdb.LRange(ctx, dlqKey(queue), 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadLetter, 0, len(raws))
	for _, raw := range raws {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(raw), &dl); err != nil {
			return nil, fmt.Errorf("dlq: decode entry: %w", err)
		}
		out = append(out, dl)
	}
	return out, nil
}
