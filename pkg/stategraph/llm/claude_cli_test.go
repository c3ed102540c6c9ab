package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/stategraph/pkg/stategraph/llm"
)

func TestNewClaudeCLI_Defaults(t *testing.T) {
	c := llm.NewClaudeCLI()
	require.NotNil(t, c)
}

func TestNewClaudeCLI_Options(t *testing.T) {
	c := llm.NewClaudeCLI(
		llm.WithClaudePath("/usr/local/bin/claude"),
		llm.WithModel("claude-sonnet-4"),
		llm.WithWorkdir("/tmp"),
		llm.WithTimeout(30*time.Second),
		llm.WithAllowedTools([]string{"Bash", "Read"}),
	)
	require.NotNil(t, c)
}

func TestClaudeCLI_CompleteMissingBinary(t *testing.T) {
	c := llm.NewClaudeCLI(llm.WithClaudePath("/nonexistent/claude-binary"))

	_, err := c.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{llm.NewUserMessage("hello")},
	})
	require.Error(t, err)

	var llmErr *llm.Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, "complete", llmErr.Op)
	assert.False(t, llmErr.Retryable())
}

func TestClaudeCLI_CompleteCancelledContext(t *testing.T) {
	c := llm.NewClaudeCLI(llm.WithClaudePath("/nonexistent/claude-binary"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{llm.NewUserMessage("hello")},
	})
	require.Error(t, err)

	var llmErr *llm.Error
	require.True(t, errors.As(err, &llmErr))
	assert.False(t, llmErr.Retryable())
}

func TestError_Wrapping(t *testing.T) {
	err := llm.NewError("complete", llm.ErrRateLimited, true)

	assert.Equal(t, "llm complete: llm rate limited", err.Error())
	assert.True(t, errors.Is(err, llm.ErrRateLimited))
	assert.True(t, err.Retryable())
}

func TestMessageHelpers(t *testing.T) {
	user := llm.NewUserMessage("question")
	assert.Equal(t, llm.RoleUser, user.Role)
	assert.Equal(t, "question", user.Content)

	asst := llm.NewAssistantMessage("answer")
	assert.Equal(t, llm.RoleAssistant, asst.Role)

	tool := llm.NewToolResultMessage("call-7", "search", "results")
	assert.Equal(t, llm.RoleTool, tool.Role)
	assert.Equal(t, "call-7", tool.ToolCallID)
	assert.Equal(t, "search", tool.Name)
	assert.Equal(t, "results", tool.Content)
}

func TestTokenUsage_Add(t *testing.T) {
	u := llm.TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}
	u.Add(llm.TokenUsage{InputTokens: 5, OutputTokens: 15, TotalTokens: 20})

	assert.Equal(t, 15, u.InputTokens)
	assert.Equal(t, 35, u.OutputTokens)
	assert.Equal(t, 50, u.TotalTokens)
}
