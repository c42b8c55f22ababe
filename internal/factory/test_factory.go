package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/eventgames/internal/dependencies/mocks"
	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage/memory"
)

// TestAdminSecret is the admin secret every TestApp accepts
const TestAdminSecret = "test-admin-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithPolicy(model.PolicyFirst)
}

// NewTestAppWithPolicy is NewTestApp with a chosen result policy
func NewTestAppWithPolicy(policy model.ResultPolicy) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(store, mockClock, mockRandom, mockRandom, Config{
		ResultPolicy: policy,
		AdminSecret:  TestAdminSecret,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}
