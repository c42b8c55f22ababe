package mocks

import (
	"sync"

	"github.com/mcoot/eventgames/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// It is safe to queue results while a server goroutine consumes them.
type MockRandom struct {
	mu sync.Mutex

	// intnResults is a queue of results to return from Intn
	intnResults []int
	intnIndex   int

	// stringResults is a queue of results to return from String
	stringResults []string
	stringIndex   int
}

// Ensure MockRandom implements Random
var (
	_ random.Random = (*MockRandom)(nil)
	_ random.Seeder = (*MockRandom)(nil)
)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intnIndex >= len(r.intnResults) {
		return 0
	}
	result := r.intnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// String returns the next queued result, or empty string if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stringIndex >= len(r.stringResults) {
		return ""
	}
	result := r.stringResults[r.stringIndex]
	r.stringIndex++
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = append(r.intnResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stringResults = append(r.stringResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = nil
	r.intnIndex = 0
	r.stringResults = nil
	r.stringIndex = 0
}

// ForKey returns r itself, so keyed draws come from the same queues
func (r *MockRandom) ForKey(string) random.Random {
	return r
}
