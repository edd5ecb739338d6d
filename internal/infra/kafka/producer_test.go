package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"go.uber.org/zap/zaptest"

	"github.com/pukpuklouis/auth-service/internal/infra/config"
)

func newMockProducer(t *testing.T) *Producer {
	t.Helper()

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Errors = true

	p := &Producer{
		producer: mocks.NewAsyncProducer(t, saramaConfig),
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{TopicPrefix: "auth"},
		errChan:  make(chan error, 256),
		done:     make(chan struct{}),
	}
	go p.handleErrors()

	return p
}

func TestProducerCloseStopsErrorDrain(t *testing.T) {
	p := newMockProducer(t)

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The error channel is closed once the drain goroutine has stopped.
	select {
	case _, open := <-p.Errors():
		if open {
			t.Fatal("expected error channel closed after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("error channel not closed after Close")
	}
}

func TestTopicNameAppliesPrefixOnce(t *testing.T) {
	p := &Producer{cfg: config.KafkaSettings{TopicPrefix: "auth"}}

	if got := p.TopicName("user.created"); got != "auth.user.created" {
		t.Fatalf("unexpected topic %s", got)
	}
	if got := p.TopicName("auth.user.created"); got != "auth.user.created" {
		t.Fatalf("prefix must not be applied twice, got %s", got)
	}
}
