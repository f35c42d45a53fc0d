package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThreeDotsLabs/watermill"
)

func TestCreateChannelRejectsEmptyBrokerList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		brokerList string
	}{
		{name: "empty string", brokerList: ""},
		{name: "only commas", brokerList: ",,"},
		{name: "only whitespace", brokerList: " , "},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			publisher, subscriber, err := CreateChannel(watermill.NopLogger{}, test.brokerList, "cascade")
			require.Error(t, err)
			assert.Nil(t, publisher)
			assert.Nil(t, subscriber)
		})
	}
}

func TestParseBrokers(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"broker-1:9092", "broker-2:9092"},
		parseBrokers(" broker-1:9092, broker-2:9092 ,"))
	assert.Nil(t, parseBrokers(""))
}
