package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNewProducer(t *testing.T) {
	_, err := NewProducer(" , ")
	assert.Error(t, err)

	p, err := NewProducer("k1:9092, k2:9092")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestProducer_PublishKeyed(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w)

	require.NoError(t, p.PublishKeyed(context.Background(), "bus.location.updated", "B1", []byte(`{}`)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "bus.location.updated", w.msgs[0].Topic)
	assert.Equal(t, "B1", string(w.msgs[0].Key))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishError(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{err: errors.New("leader not available")})

	err := p.Publish(context.Background(), "bus.sharing.stopped", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish message")
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2"}, splitBrokers("a:1,, b:2 "))
	assert.Empty(t, splitBrokers(""))
}
