package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"VolumeScope/internal/domain/models"
	"VolumeScope/internal/domain/repository"
	appkafka "VolumeScope/pkg/kafka"
)

// KafkaSignalJournal publishes emitted signals to a Kafka topic, keyed by
// symbol so one symbol's signals stay ordered within a partition.
type KafkaSignalJournal struct {
	producer *appkafka.Producer
	topic    string
}

// NewKafkaSignalJournal creates a Kafka-backed signal journal.
func NewKafkaSignalJournal(producer *appkafka.Producer, topic string) repository.SignalJournal {
	return &KafkaSignalJournal{producer: producer, topic: topic}
}

type journalEntry struct {
	Symbol string        `json:"symbol"`
	Signal models.Signal `json:"signal"`
}

func (j *KafkaSignalJournal) Record(ctx context.Context, symbol string, signals []models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	msgs := make([]appkafka.Message, 0, len(signals))
	for _, s := range signals {
		msgs = append(msgs, appkafka.Message{
			Key:   []byte(symbol),
			Value: journalEntry{Symbol: symbol, Signal: s},
		})
	}
	if err := j.producer.PublishBatch(ctx, j.topic, msgs); err != nil {
		return fmt.Errorf("publish signals: %w", err)
	}
	return nil
}

func (j *KafkaSignalJournal) Close() error {
	return j.producer.Close()
}

// ClickHouseSignalJournal appends emitted signals to a ClickHouse table.
type ClickHouseSignalJournal struct {
	db    *sql.DB
	table string
}

// NewClickHouseSignalJournal creates a ClickHouse-backed signal journal.
func NewClickHouseSignalJournal(db *sql.DB, table string) repository.SignalJournal {
	return &ClickHouseSignalJournal{db: db, table: table}
}

func (j *ClickHouseSignalJournal) Record(ctx context.Context, symbol string, signals []models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	values := make([]string, 0, len(signals))
	args := make([]interface{}, 0, len(signals)*10)
	for _, s := range signals {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			s.ID,
			symbol,
			string(s.Category),
			s.Subtype,
			string(s.Direction),
			string(s.Strength),
			s.Price,
			s.Target,
			s.Stop,
			s.SourceTimestamp,
		)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (id, symbol, category, subtype, direction, strength, price, target, stop, ts) VALUES %s",
		j.table, strings.Join(values, ","),
	)
	if _, err := j.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("signal journal insert: %w", err)
	}
	return nil
}

func (j *ClickHouseSignalJournal) Close() error {
	return nil // Managed by pkg
}

// NopSignalJournal discards signals; used when journaling is disabled.
type NopSignalJournal struct{}

func (NopSignalJournal) Record(ctx context.Context, symbol string, signals []models.Signal) error {
	return nil
}

func (NopSignalJournal) Close() error { return nil }

var (
	_ repository.SignalJournal = (*KafkaSignalJournal)(nil)
	_ repository.SignalJournal = (*ClickHouseSignalJournal)(nil)
	_ repository.SignalJournal = NopSignalJournal{}
)
