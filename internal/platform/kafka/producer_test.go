package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	p, err := NewProducer(nil, "slf.notifications")
	require.Error(t, err)
	require.Nil(t, p)
}
