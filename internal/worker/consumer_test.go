package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/commexhq/comms-api/internal/config"
	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/pkg/metrics"
)

type scriptedBroker struct {
	mu         sync.Mutex
	subscribes int
	msgs       chan []byte
}

func (b *scriptedBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	return nil
}

func (b *scriptedBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribes++
	return b.msgs, nil
}

func (b *scriptedBroker) Close() error { return nil }

type recordingHandler struct {
	mu          sync.Mutex
	seen        [][]byte
	disposition model.Disposition
}

func (h *recordingHandler) Handle(ctx context.Context, raw []byte) model.Disposition {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, raw)
	return h.disposition
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

type recordingRepublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	keys     []string
}

func (r *recordingRepublisher) PublishRaw(ctx context.Context, routingKey string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, routingKey)
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingRepublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func testConsumerConfig() config.ConsumerConfig {
	return config.ConsumerConfig{
		Binding:      model.RoutingKeyAll,
		RequeueDelay: 10 * time.Millisecond,
		MinBackoff:   10 * time.Millisecond,
		MaxBackoff:   50 * time.Millisecond,
	}
}

func TestConsumerDeliversMessagesToHandler(t *testing.T) {
	broker := &scriptedBroker{msgs: make(chan []byte, 2)}
	handler := &recordingHandler{disposition: model.DispositionAck}
	repub := &recordingRepublisher{}
	c := NewConsumer(broker, handler, repub, testConsumerConfig(), metrics.NewForTesting(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	broker.msgs <- []byte(`{"eventType":"CommunicationStatusChanged"}`)
	broker.msgs <- []byte(`{"eventType":"CommunicationCreated"}`)

	assert.Eventually(t, func() bool { return handler.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, repub.count(), "acked messages are not redelivered")
}

func TestConsumerRetryRepublishesAfterDelay(t *testing.T) {
	broker := &scriptedBroker{msgs: make(chan []byte, 1)}
	handler := &recordingHandler{disposition: model.DispositionRetry}
	repub := &recordingRepublisher{}
	c := NewConsumer(broker, handler, repub, testConsumerConfig(), metrics.NewForTesting(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	payload := []byte(`{"eventType":"CommunicationStatusChanged","communicationId":"42"}`)
	broker.msgs <- payload

	assert.Eventually(t, func() bool { return repub.count() == 1 }, time.Second, 5*time.Millisecond)

	repub.mu.Lock()
	defer repub.mu.Unlock()
	assert.Equal(t, model.RoutingKeyStatusChanged, repub.keys[0])
	assert.Equal(t, payload, repub.payloads[0])
}

func TestConsumerResubscribesWhenChannelCloses(t *testing.T) {
	broker := &scriptedBroker{msgs: make(chan []byte)}
	handler := &recordingHandler{disposition: model.DispositionAck}
	repub := &recordingRepublisher{}
	c := NewConsumer(broker, handler, repub, testConsumerConfig(), metrics.NewForTesting(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	assert.Eventually(t, func() bool {
		broker.mu.Lock()
		defer broker.mu.Unlock()
		return broker.subscribes >= 1
	}, time.Second, 5*time.Millisecond)

	// Simulate transport failure.
	broker.mu.Lock()
	oldMsgs := broker.msgs
	broker.msgs = make(chan []byte, 1)
	broker.mu.Unlock()
	close(oldMsgs)

	assert.Eventually(t, func() bool {
		broker.mu.Lock()
		defer broker.mu.Unlock()
		return broker.subscribes >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestConsumerStopsOnContextCancel(t *testing.T) {
	broker := &scriptedBroker{msgs: make(chan []byte)}
	handler := &recordingHandler{disposition: model.DispositionAck}
	c := NewConsumer(broker, handler, &recordingRepublisher{}, testConsumerConfig(), metrics.NewForTesting(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after context cancel")
	}
}
