package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// TaskRunner executes a fire-and-forget task without the caller waiting
// for (or observing the failure of) completion. This is the background
// memory-persistence path: the conversational turn returns to the
// caller immediately and the fact-extraction write happens after.
type TaskRunner interface {
	Go(task func(ctx context.Context))
}

// InProcessRunner runs each task on its own goroutine. This is the
// default runner: adequate for a single-process deployment and for the
// synchronous-in-tests code path, which simply calls the task function
// directly instead of going through a runner at all.
type InProcessRunner struct{}

func (InProcessRunner) Go(task func(ctx context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("memory_task_panic")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		task(ctx)
	}()
}

// KafkaRunner publishes a marker message to a topic and runs the task
// locally; it exists so a future worker tier can instead consume the
// topic and run the task out-of-process without changing the call site
// in the orchestrator. Today it runs in-process like InProcessRunner but
// also emits the durable marker, matching the teacher's
// internal/orchestrator dedupe/kafka split between "do the work" and
// "record that the work was requested".
type KafkaRunner struct {
	Writer *kafka.Writer
	Topic  string
}

// memoryTaskMarker is the durable record written to Kafka before the
// task itself runs in-process.
type memoryTaskMarker struct {
	Kind      string `json:"kind"`
	UserID    string `json:"user_id"`
	QueuedAt  int64  `json:"queued_at_unix"`
}

func (k KafkaRunner) Go(task func(ctx context.Context)) {
	if k.Writer != nil {
		marker, _ := json.Marshal(memoryTaskMarker{Kind: "process_conversation", QueuedAt: time.Now().Unix()})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		msg := kafka.Message{Value: marker}
		if k.Writer.Topic == "" {
			msg.Topic = k.Topic
		}
		if err := k.Writer.WriteMessages(ctx, msg); err != nil {
			log.Warn().Err(err).Msg("memory_task_marker_publish_failed")
		}
		cancel()
	}
	InProcessRunner{}.Go(task)
}
