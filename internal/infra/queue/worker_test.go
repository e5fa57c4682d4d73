package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/consult-intake/internal/entity"
	"go.uber.org/zap"
)

type MockRedeliverer struct {
	mock.Mock
}

func (m *MockRedeliverer) Execute(ctx context.Context, msg RedeliveryMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func encode(t *testing.T, msg RedeliveryMessage) []byte {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func TestWorkerHandle(t *testing.T) {
	msg := RedeliveryMessage{
		SubmissionID: "sub_1_abc",
		Attempt:      2,
		Payload:      entity.WebhookPayload{SubmissionID: "sub_1_abc", Services: []string{"VAT"}},
	}

	t.Run("acks settled message", func(t *testing.T) {
		h := new(MockRedeliverer)
		h.On("Execute", mock.Anything, mock.MatchedBy(func(m RedeliveryMessage) bool {
			return m.SubmissionID == "sub_1_abc" && m.Attempt == 2
		})).Return(nil)

		w := NewWorker(nil, h, zap.NewNop())
		assert.True(t, w.handle(context.Background(), encode(t, msg)))
		h.AssertExpectations(t)
	})

	t.Run("dead-letters handler error", func(t *testing.T) {
		h := new(MockRedeliverer)
		h.On("Execute", mock.Anything, mock.Anything).Return(errors.New("exhausted"))

		w := NewWorker(nil, h, zap.NewNop())
		assert.False(t, w.handle(context.Background(), encode(t, msg)))
	})

	t.Run("dead-letters malformed json", func(t *testing.T) {
		h := new(MockRedeliverer)

		w := NewWorker(nil, h, zap.NewNop())
		assert.False(t, w.handle(context.Background(), []byte("{not json")))
		h.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("dead-letters message without id", func(t *testing.T) {
		h := new(MockRedeliverer)

		w := NewWorker(nil, h, zap.NewNop())
		assert.False(t, w.handle(context.Background(), []byte(`{"attempt":1}`)))
		h.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})
}

func TestRedeliveryMessageCarriesPayloadVerbatim(t *testing.T) {
	msg := RedeliveryMessage{
		SubmissionID: "sub_1_abc",
		Attempt:      1,
		Payload:      entity.WebhookPayload{SubmissionID: "sub_1_abc", IsDuplicate: false},
	}

	var doc map[string]any
	require.NoError(t, json.Unmarshal(encode(t, msg), &doc))

	payload, ok := doc["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, payload["is_duplicate"])
	assert.Equal(t, "sub_1_abc", payload["submission_id"])
}
