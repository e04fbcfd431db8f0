//go:build integration

package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"slfcert/internal/platform/kafka"
	"slfcert/pkg/testutil/containers"
)

type ProducerSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestProducerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerSuite))
}

func (s *ProducerSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
}

func (s *ProducerSuite) newProducer(topic string) *kafka.Producer {
	p, err := kafka.NewProducer(s.redpanda.Brokers, topic)
	s.Require().NoError(err)
	s.T().Cleanup(p.Close)
	return p
}

func (s *ProducerSuite) TestEnsureTopicIsIdempotent() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	p := s.newProducer("slf.notifications." + uuid.NewString())

	s.Require().NoError(p.EnsureTopic(ctx, 1, 1))
	s.Require().NoError(p.EnsureTopic(ctx, 1, 1), "existing topic is not an error")
	s.Require().NoError(p.Health(ctx))
}

func (s *ProducerSuite) TestPublishIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	topic := "slf.notifications." + uuid.NewString()
	p := s.newProducer(topic)
	s.Require().NoError(p.EnsureTopic(ctx, 1, 1))

	key := []byte(uuid.NewString())
	s.Require().NoError(p.Publish(ctx, key, []byte(`{"event_type":"notification.created"}`)))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal(key, records[0].Key)
	s.JSONEq(`{"event_type":"notification.created"}`, string(records[0].Value))
}
