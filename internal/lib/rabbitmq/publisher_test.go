package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ChannelMock struct {
	mock.Mock
}

func (m *ChannelMock) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable).Error(0)
}

func (m *ChannelMock) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func (m *ChannelMock) Close() error {
	return m.Called().Error(0)
}

func TestNewPublisher_DeclaresExchange(t *testing.T) {
	ch := new(ChannelMock)
	ch.On("ExchangeDeclare", "licence.events", "topic", true).Return(nil).Once()

	p, err := NewPublisher(ch, "licence.events")
	require.NoError(t, err)
	assert.NotNil(t, p)
	ch.AssertExpectations(t)
}

func TestNewPublisher_DeclareError(t *testing.T) {
	ch := new(ChannelMock)
	ch.On("ExchangeDeclare", "licence.events", "topic", true).Return(errors.New("channel closed")).Once()

	p, err := NewPublisher(ch, "licence.events")
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "rabbitmq.NewPublisher")
}

func TestPublish(t *testing.T) {
	type event struct {
		Flow  string `json:"flow"`
		Email string `json:"email"`
	}

	t.Run("success", func(t *testing.T) {
		ch := new(ChannelMock)
		ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		ch.On("Publish", "licence.events", KeyLicenceActivated, mock.MatchedBy(func(msg amqp.Publishing) bool {
			var got event
			if err := json.Unmarshal(msg.Body, &got); err != nil {
				return false
			}
			return msg.ContentType == "application/json" &&
				msg.DeliveryMode == amqp.Persistent &&
				got == event{Flow: "token", Email: "demo@example.com"}
		})).Return(nil).Once()

		p, err := NewPublisher(ch, "licence.events")
		require.NoError(t, err)

		err = p.Publish(context.Background(), KeyLicenceActivated, event{Flow: "token", Email: "demo@example.com"})
		require.NoError(t, err)
		ch.AssertExpectations(t)
	})

	t.Run("marshal error", func(t *testing.T) {
		ch := new(ChannelMock)
		ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		p, err := NewPublisher(ch, "licence.events")
		require.NoError(t, err)

		err = p.Publish(context.Background(), KeyLicenceActivated, struct {
			Ch chan int `json:"ch"`
		}{Ch: make(chan int)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq.Publish")
		ch.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ch := new(ChannelMock)
		ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		p, err := NewPublisher(ch, "licence.events")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = p.Publish(ctx, KeyPaymentInitiated, "x")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), KeyPaymentInitiated, nil))
}
