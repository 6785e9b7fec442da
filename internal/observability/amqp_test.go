package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
)

func TestPublishEventNoPublisher(t *testing.T) {
	SetPublisher(nil)
	require.NoError(t, PublishEvent(context.Background(), RoutingKeyWS, "event", nil))
}

func TestPublishEventForwardsToPublisher(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	SetPublisher(publisher)
	defer SetPublisher(nil)

	envelope := EventEnvelope{EventType: "ws", EventName: "ws_connect"}
	headers := BuildHeaders("req-1", "")
	publisher.On("PublishJSON", mock.Anything, RoutingKeyWS, envelope, headers).Return(nil).Once()

	require.NoError(t, PublishEvent(context.Background(), RoutingKeyWS, envelope, headers))
	publisher.AssertExpectations(t)
}

func TestPublishEventPropagatesError(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	SetPublisher(publisher)
	defer SetPublisher(nil)

	publisher.On("PublishJSON", mock.Anything, RoutingKeyWS, mock.Anything, mock.Anything).
		Return(assert.AnError).Once()

	require.ErrorIs(t, PublishEvent(context.Background(), RoutingKeyWS, "event", nil), assert.AnError)
}

func TestBuildHeaders(t *testing.T) {
	require.Empty(t, BuildHeaders("", ""))
	require.Equal(t, map[string]string{"x-request-id": "req-1"}, BuildHeaders("req-1", ""))
	require.Equal(t, map[string]string{"x-request-id": "req-1", "trace_id": "trace-1"}, BuildHeaders("req-1", "trace-1"))
}
