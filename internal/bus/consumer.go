package bus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message je doručená zpráva očištěná od typů kafka-go.
type Message struct {
	Topic     string
	Key       string
	Partition int
	Offset    int64
	Payload   []byte
	Time      time.Time
}

// Handler zpracuje jednu zprávu. Chyby si řeší sám (loguje), consumer
// po návratu offset vždy commitne - žádné redelivery.
type Handler func(ctx context.Context, msg Message)

// messageReader je podmnožina kafka.Reader (FetchMessage + ruční commit).
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig drží nastavení consumer group.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	// Concurrency = počet readerů ve stejné group. Kafka mezi ně rozdělí
	// partitions, takže různé partitions se zpracovávají paralelně.
	Concurrency int
}

// Consumer spouští jednu čtecí smyčku na každý reader.
type Consumer struct {
	readers []messageReader
	handler Handler
	logger  *slog.Logger

	maxBackoff time.Duration
	wg         sync.WaitGroup
}

// NewKafkaConsumer připraví readery, ale nic nečte, dokud se nezavolá Run.
func NewKafkaConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	n := cfg.Concurrency
	if n < 1 {
		n = 1
	}
	readers := make([]messageReader, 0, n)
	for i := 0; i < n; i++ {
		readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			GroupID:     cfg.GroupID,
			GroupTopics: []string{cfg.Topic},
			StartOffset: kafka.FirstOffset,
			MinBytes:    1,
			MaxBytes:    10e6,
		}))
	}
	return newConsumer(readers, handler, logger)
}

func newConsumer(readers []messageReader, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		readers:    readers,
		handler:    handler,
		logger:     logger,
		maxBackoff: 10 * time.Second,
	}
}

// Run spustí smyčky na pozadí a hned se vrátí. Skončí se zrušením ctx.
func (c *Consumer) Run(ctx context.Context) {
	for i, r := range c.readers {
		c.wg.Add(1)
		go func(worker int, r messageReader) {
			defer c.wg.Done()
			c.loop(ctx, worker, r)
		}(i, r)
	}
}

// Wait blokuje, dokud všechny smyčky neskončí a readery nejsou zavřené.
func (c *Consumer) Wait() {
	c.wg.Wait()
}

func (c *Consumer) loop(ctx context.Context, worker int, r messageReader) {
	log := c.logger.With("worker", worker)
	defer func() {
		if err := r.Close(); err != nil {
			log.Error("kafka reader close failed", "error", err)
		}
	}()
	log.Info("consumer loop started")

	backoff := min(initialBackoff, c.maxBackoff)
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				log.Info("consumer loop stopped")
				return
			}
			log.Error("kafka fetch failed", "error", err, "retry_in", backoff)
			select {
			case <-time.After(backoff):
				backoff = nextBackoff(backoff, c.maxBackoff)
				continue
			case <-ctx.Done():
				log.Info("consumer loop stopped")
				return
			}
		}
		backoff = min(initialBackoff, c.maxBackoff)

		c.handler(ctx, Message{
			Topic:     m.Topic,
			Key:       string(m.Key),
			Partition: m.Partition,
			Offset:    m.Offset,
			Payload:   m.Value,
			Time:      m.Time,
		})

		// Commit i po neúspěchu handleru: zpráva je tím zahozena (fail-open).
		if err := r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			log.Error("kafka commit failed", "partition", m.Partition, "offset", m.Offset, "error", err)
		}
	}
}

const initialBackoff = 500 * time.Millisecond

// nextBackoff zdvojnásobí čekání, nikdy ale nad limit.
func nextBackoff(cur, limit time.Duration) time.Duration {
	return min(cur*2, limit)
}
