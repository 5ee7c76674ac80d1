package nsq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProducer(t *testing.T) {
	t.Run("unreachable daemon", func(t *testing.T) {
		producer, err := NewProducer("127.0.0.1:1")
		assert.Error(t, err)
		assert.Nil(t, producer)
		assert.Contains(t, err.Error(), "failed to ping NSQ daemon")
	})

	t.Run("empty address", func(t *testing.T) {
		producer, err := NewProducer("")
		assert.Error(t, err)
		assert.Nil(t, producer)
	})
}
