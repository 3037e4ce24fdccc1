package listnotifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"agri-marketplace/internal/common/clock"
	apperrors "agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/ledger"
	"agri-marketplace/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventStore struct{ mock.Mock }

func (m *MockEventStore) Insert(ctx context.Context, e *models.NotificationEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEventStore) ListRecent(ctx context.Context, limit int) ([]models.NotificationEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NotificationEvent), args.Error(1)
}

func (m *MockEventStore) MarkRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "admin-dashboard",
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func newTestHandler(t *testing.T, store *MockEventStore) *Handler {
	h, err := NewHandler(HandlerOptions{
		Ledger: ledger.New(store, clock.NewSystem()),
		Logger: logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, new(MockEventStore))

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{"limit": 20}))
	require.NoError(t, err)
	assert.Equal(t, 20, input.Limit)

	input, err = h.parseInput(createMockJob(2, map[string]interface{}{}))
	require.NoError(t, err)
	assert.Equal(t, 0, input.Limit)

	_, err = h.parseInput(createMockJob(3, map[string]interface{}{"limit": -4}))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
}

func TestHandler_Execute(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := new(MockEventStore)
	store.On("ListRecent", mock.Anything, ledger.DefaultListLimit).Return([]models.NotificationEvent{
		{ID: "b", Message: "New order ORD-2", Type: "order", CreatedAt: now},
		{ID: "a", Message: "New order ORD-1", Type: "order", Read: true, CreatedAt: now.Add(-time.Hour)},
	}, nil)
	h := newTestHandler(t, store)

	output, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, 1, output.Unread)
	assert.Equal(t, "b", output.Notifications[0].ID)
}

func TestHandler_Execute_CapsLimit(t *testing.T) {
	store := new(MockEventStore)
	store.On("ListRecent", mock.Anything, ledger.MaxListLimit).Return(nil, nil)
	h := newTestHandler(t, store)

	output, err := h.Execute(context.Background(), &Input{Limit: 5000})

	require.NoError(t, err)
	assert.NotNil(t, output.Notifications)
	assert.Equal(t, 0, output.Count)
}

func TestHandler_Execute_StoreError(t *testing.T) {
	store := new(MockEventStore)
	store.On("ListRecent", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	h := newTestHandler(t, store)

	_, err := h.Execute(context.Background(), &Input{Limit: 10})

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeQueryExecutionFailed))
}
