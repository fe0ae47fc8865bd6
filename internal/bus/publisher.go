// Package bus je tenká vrstva nad Kafkou (segmentio/kafka-go).
// Producer posílá JSON readings, consumer je čte přes consumer group.
package bus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// AckFunc se zavolá jednou, až broker zprávu potvrdí (err == nil) nebo odmítne.
// Volá se z jiné goroutiny než Publish.
type AckFunc func(err error)

// Publisher je "Publisher Channel": publish(topic, key, payload) -> budoucí ack.
// Publish nesmí blokovat volajícího čekáním na potvrzení.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte, ack AckFunc)
}

// messageWriter je podmnožina kafka.Writer, kterou potřebujeme (kvůli testům).
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher posílá každou zprávu ve vlastní goroutině a výsledek hlásí přes AckFunc.
type KafkaPublisher struct {
	w       messageWriter
	logger  *slog.Logger
	timeout time.Duration

	// inflight drží rozpracované zápisy, aby Close počkal na jejich potvrzení.
	inflight sync.WaitGroup
}

// NewKafkaPublisher vytvoří writer bez pevného topicu (topic nese každá zpráva).
// Hash balancer drží stejný klíč (sensorId) ve stejné partition.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		// Default je 1s; pro simulaci chceme ack hned po odeslání.
		BatchTimeout: 10 * time.Millisecond,
	}
	return newKafkaPublisher(w, logger)
}

func newKafkaPublisher(w messageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{w: w, logger: logger, timeout: 5 * time.Second}
}

// Publish vrací okamžitě. Zápis běží s vlastním timeoutem odvozeným z ctx,
// takže zrušení ctx přeruší i rozpracovaný zápis.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload []byte, ack AckFunc) {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	}

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		err := p.w.WriteMessages(writeCtx, msg)
		if err != nil {
			p.logger.Debug("kafka write failed", "topic", topic, "key", key, "error", err)
		}
		if ack != nil {
			ack(err)
		}
	}()
}

// Close počká na rozpracované zápisy a zavře writer.
func (p *KafkaPublisher) Close() error {
	p.inflight.Wait()
	return p.w.Close()
}
