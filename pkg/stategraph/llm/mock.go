package llm

import (
	"context"
	"sync"
)

// MockClient is a Client implementation for tests. It records every
// request and replays canned responses.
type MockClient struct {
	mu sync.Mutex

	responses    []CompletionResponse
	next         int
	err          error
	completeFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	calls []CompletionRequest
}

// MockOption configures a MockClient.
type MockOption func(*MockClient)

// NewMockClient creates a mock that returns the given content for every
// completion call.
func NewMockClient(content string, opts ...MockOption) *MockClient {
	m := &MockClient{
		responses: []CompletionResponse{{Content: content, FinishReason: "stop"}},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithResponses sets a sequence of responses. Calls cycle through the
// sequence, wrapping back to the first after the last.
func WithResponses(responses ...CompletionResponse) MockOption {
	return func(m *MockClient) { m.responses = responses }
}

// WithMockError makes every completion call fail with err.
func WithMockError(err error) MockOption {
	return func(m *MockClient) { m.err = err }
}

// WithCompleteFunc replaces the canned behavior entirely.
func WithCompleteFunc(fn func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)) MockOption {
	return func(m *MockClient) { m.completeFunc = fn }
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	fn := m.completeFunc
	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return nil, err
	}
	if fn != nil {
		m.mu.Unlock()
		return fn(ctx, req)
	}

	resp := m.responses[m.next%len(m.responses)]
	m.next++
	m.mu.Unlock()

	// Rough token accounting so usage is never zero in tests.
	resp.Usage = TokenUsage{
		InputTokens:  approxTokens(req),
		OutputTokens: len(resp.Content)/4 + 1,
	}
	resp.Usage.TotalTokens = resp.Usage.InputTokens + resp.Usage.OutputTokens

	return &resp, nil
}

// CallCount returns the number of completion calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded requests.
func (m *MockClient) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastCall returns the most recent request, or a zero request if no
// calls were made.
func (m *MockClient) LastCall() CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return CompletionRequest{}
	}
	return m.calls[len(m.calls)-1]
}

// Reset clears recorded calls and rewinds the response sequence.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.next = 0
}

func approxTokens(req CompletionRequest) int {
	n := len(req.SystemPrompt)
	for _, msg := range req.Messages {
		n += len(msg.Content)
	}
	return n/4 + 1
}
