package verifycode

import (
	"context"
	"encoding/json"
	"testing"

	"agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVerifier struct{ mock.Mock }

func (m *MockVerifier) Verify(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "signup",
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func TestHandler_ParseInput(t *testing.T) {
	h, err := NewHandler(HandlerOptions{Verifier: new(MockVerifier), Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
	}{
		{"valid", map[string]interface{}{"email": "farmer@example.com", "code": "042917"}, false},
		{"short code", map[string]interface{}{"email": "farmer@example.com", "code": "4291"}, true},
		{"letters", map[string]interface{}{"email": "farmer@example.com", "code": "abcdef"}, true},
		{"missing email", map[string]interface{}{"code": "042917"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.parseInput(createMockJob(1, tt.variables))
			if tt.wantErr {
				assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHandler_Execute(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "farmer@example.com", "042917").Return(nil)
	verifier.On("Verify", mock.Anything, "farmer@example.com", "111111").Return(errors.NewCodeInvalidError("farmer@example.com"))
	h, err := NewHandler(HandlerOptions{Verifier: verifier, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	output, err := h.Execute(context.Background(), &Input{Email: "farmer@example.com", Code: "042917"})
	require.NoError(t, err)
	assert.True(t, output.Verified)

	_, err = h.Execute(context.Background(), &Input{Email: "farmer@example.com", Code: "111111"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeCodeInvalid))
	assert.Equal(t, "CODE_INVALID", errors.ConvertToBPMNError(errors.Normalize(err)).Code)
}
