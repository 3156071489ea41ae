package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Swordfish189/github-events-tracker/internal/config"
	"github.com/Swordfish189/github-events-tracker/internal/model"
	"github.com/Swordfish189/github-events-tracker/internal/storage"
)

type kafkaEvent struct {
	Repo      string `json:"repo"`
	ID        string `json:"id"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

// StartKafka consumes event records from a topic and inserts them through the
// same idempotent store path the HTTP poller uses. Messages that overlap with
// polled events are absorbed by the unique event id.
func StartKafka(ctx context.Context, cfg config.KafkaConfig, store storage.Store, logger *slog.Logger) {
	if !cfg.Enabled {
		if logger != nil {
			logger.Info("kafka ingest disabled")
		}
		return
	}
	if logger != nil {
		logger.Info("kafka ingest enabled", "brokers", cfg.Brokers, "topic", cfg.Topic, "group_id", cfg.GroupID)
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	go func() {
		defer reader.Close()
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if logger != nil {
					logger.Warn("kafka read error", "err", err)
				}
				continue
			}
			ev, err := decodeMessage(m.Value)
			if err != nil {
				if logger != nil {
					logger.Warn("kafka message skipped", "err", err)
				}
				continue
			}
			if err := store.InsertEvent(ctx, ev); err != nil {
				if logger != nil {
					logger.Error("insert failed, event dropped", "repo", ev.Repo, "event_id", ev.ID, "err", err)
				}
			}
		}
	}()
}

func decodeMessage(value []byte) (model.Event, error) {
	var ke kafkaEvent
	if err := json.Unmarshal(value, &ke); err != nil {
		return model.Event{}, err
	}
	if ke.ID == "" || ke.Repo == "" {
		return model.Event{}, errors.New("event record needs id and repo")
	}
	ts, err := time.Parse(time.RFC3339, ke.CreatedAt)
	if err != nil {
		return model.Event{}, fmt.Errorf("event %s: bad created_at: %w", ke.ID, err)
	}
	return model.Event{
		ID:        ke.ID,
		Repo:      ke.Repo,
		Type:      ke.Type,
		CreatedAt: ts.UTC(),
		Raw:       string(value),
	}, nil
}
