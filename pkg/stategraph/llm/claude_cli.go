package llm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ClaudeCLI implements Client using the Claude CLI binary.
type ClaudeCLI struct {
	path         string
	model        string
	workdir      string
	timeout      time.Duration
	allowedTools []string
}

// ClaudeOption configures ClaudeCLI.
type ClaudeOption func(*ClaudeCLI)

// NewClaudeCLI creates a new Claude CLI client.
// Assumes "claude" is available in PATH unless overridden with WithClaudePath.
func NewClaudeCLI(opts ...ClaudeOption) *ClaudeCLI {
	c := &ClaudeCLI{
		path:    "claude",
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithClaudePath sets the path to the claude binary.
func WithClaudePath(path string) ClaudeOption {
	return func(c *ClaudeCLI) { c.path = path }
}

// WithModel sets the default model.
func WithModel(model string) ClaudeOption {
	return func(c *ClaudeCLI) { c.model = model }
}

// WithWorkdir sets the working directory for claude commands.
func WithWorkdir(dir string) ClaudeOption {
	return func(c *ClaudeCLI) { c.workdir = dir }
}

// WithTimeout sets the default timeout for commands.
func WithTimeout(d time.Duration) ClaudeOption {
	return func(c *ClaudeCLI) { c.timeout = d }
}

// WithAllowedTools sets the allowed tools for claude.
func WithAllowedTools(tools []string) ClaudeOption {
	return func(c *ClaudeCLI) { c.allowedTools = tools }
}

// Complete implements Client.
func (c *ClaudeCLI) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	// Apply the client timeout unless the caller already set a deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := c.buildArgs(req)
	cmd := exec.CommandContext(ctx, c.path, args...)

	if c.workdir != "" {
		cmd.Dir = c.workdir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Check for context cancellation first
		if ctx.Err() != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, NewError("complete", ErrTimeout, true)
			}
			return nil, NewError("complete", ctx.Err(), false)
		}

		errMsg := stderr.String()
		retryable := isRetryableError(errMsg)
		return nil, NewError("complete", fmt.Errorf("%w: %s", err, errMsg), retryable)
	}

	resp := c.parseResponse(stdout.Bytes())
	resp.Duration = time.Since(start)

	return resp, nil
}

// buildArgs constructs CLI arguments from a request.
func (c *ClaudeCLI) buildArgs(req CompletionRequest) []string {
	args := []string{"--print"}

	if req.SystemPrompt != "" {
		args = append(args, "--system-prompt", req.SystemPrompt)
	}

	// Model priority: request > client default
	model := c.model
	if req.Model != "" {
		model = req.Model
	}
	if model != "" {
		args = append(args, "--model", model)
	}

	if req.MaxTokens > 0 {
		args = append(args, "--max-tokens", fmt.Sprintf("%d", req.MaxTokens))
	}

	// Allowed tools
	for _, tool := range c.allowedTools {
		args = append(args, "--allowedTools", tool)
	}

	// Build prompt from messages
	// Claude CLI expects a single prompt, so concatenate user messages
	var prompt strings.Builder
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleUser:
			prompt.WriteString(msg.Content)
			prompt.WriteString("\n")
		case RoleAssistant:
			// For conversation history, format as context
			if prompt.Len() > 0 {
				prompt.WriteString("\nAssistant: ")
				prompt.WriteString(msg.Content)
				prompt.WriteString("\n\nUser: ")
			}
		case RoleTool:
			prompt.WriteString(fmt.Sprintf("\nTool result (%s): %s\n", msg.Name, msg.Content))
		}
	}

	// Use -p flag for prompt
	promptStr := strings.TrimSpace(prompt.String())
	if promptStr != "" {
		args = append(args, "-p", promptStr)
	}

	return args
}

// parseResponse extracts response data from CLI output.
func (c *ClaudeCLI) parseResponse(data []byte) *CompletionResponse {
	content := strings.TrimSpace(string(data))

	return &CompletionResponse{
		Content:      content,
		FinishReason: "stop",
		Model:        c.model,
		Usage: TokenUsage{
			// Token counts not available from basic CLI output
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
		},
	}
}

// isRetryableError checks if an error message indicates a transient error.
func isRetryableError(errMsg string) bool {
	errLower := strings.ToLower(errMsg)
	return strings.Contains(errLower, "rate limit") ||
		strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "overloaded") ||
		strings.Contains(errLower, "503") ||
		strings.Contains(errLower, "529")
}
