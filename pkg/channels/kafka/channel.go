// Package kafka provides the Kafka-backed watermill channel.
package kafka

import (
	"errors"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
)

// kafkaVersion pins the protocol version so brokers older than what we test
// against fail loudly at connect time instead of misbehaving mid-stream.
var kafkaVersion = sarama.V3_6_0_0

// CreateChannel builds the Kafka publisher/subscriber pair used by the event
// bus. Subscribers of the same service join one consumer group, named
// "<service>.executions", so instances share the partition load.
func CreateChannel(logger watermill.LoggerAdapter, brokerList, serviceName string) (*kafka.Publisher, *kafka.Subscriber, error) {
	brokers := parseBrokers(brokerList)
	if len(brokers) == 0 {
		return nil, nil, errors.New("kafka broker list is empty")
	}

	subscriberConfig := kafka.DefaultSaramaSubscriberConfig()
	subscriberConfig.Version = kafkaVersion
	subscriberConfig.ClientID = serviceName
	subscriberConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:               brokers,
			Unmarshaler:           kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: subscriberConfig,
			ConsumerGroup:         fmt.Sprintf("%s.executions", serviceName),
			OTELEnabled:           true,
		},
		logger,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create kafka subscriber: %w", err)
	}

	publisherConfig := sarama.NewConfig()
	publisherConfig.Version = kafkaVersion
	publisherConfig.ClientID = serviceName
	publisherConfig.Producer.Return.Successes = true
	publisherConfig.Producer.RequiredAcks = sarama.WaitForAll
	publisherConfig.Producer.Retry.Max = 5

	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:               brokers,
			Marshaler:             kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: publisherConfig,
			OTELEnabled:           true,
		},
		logger,
	)
	if err != nil {
		if closeErr := subscriber.Close(); closeErr != nil {
			logger.Error("failed to close kafka subscriber", closeErr, nil)
		}

		return nil, nil, fmt.Errorf("create kafka publisher: %w", err)
	}

	return publisher, subscriber, nil
}

// parseBrokers splits a comma-separated broker list, dropping empty and
// whitespace-only entries.
func parseBrokers(brokerList string) []string {
	var brokers []string

	for _, broker := range strings.Split(brokerList, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}

	return brokers
}
