package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	xerrors "github.com/randalmurphal/stategraph/pkg/stategraph/errors"
)

// CompleteStructured performs a completion call and decodes the response
// content into T.
//
// The decoder is tolerant of common LLM output quirks: markdown code
// fences are stripped, and malformed JSON is repaired before the decode
// is retried. A response that still cannot be decoded yields a
// JSONParseError, which categorizes as escalatable.
func CompleteStructured[T any](ctx context.Context, client Client, req CompletionRequest) (T, error) {
	var result T

	resp, err := client.Complete(ctx, req)
	if err != nil {
		return result, err
	}

	return DecodeStructured[T](resp.Content)
}

// DecodeStructured decodes LLM output into T, repairing malformed JSON
// when a strict decode fails.
func DecodeStructured[T any](content string) (T, error) {
	var result T

	cleaned := stripCodeFences(content)

	if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(cleaned)
	if repairErr != nil {
		return result, &xerrors.JSONParseError{
			Input:   content,
			Message: "repair failed: " + repairErr.Error(),
		}
	}

	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return result, &xerrors.JSONParseError{
			Input:   content,
			Message: err.Error(),
		}
	}

	return result, nil
}

// stripCodeFences removes a surrounding markdown code fence, with or
// without a language tag, and trims to the outermost JSON value.
func stripCodeFences(content string) string {
	s := strings.TrimSpace(content)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop a language tag like "json" on the opening fence line.
		if idx := strings.Index(s, "\n"); idx >= 0 {
			firstLine := strings.TrimSpace(s[:idx])
			if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{}[]\"") {
				s = s[idx+1:]
			}
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	// Trim prose before/after the outermost JSON value.
	start := strings.IndexAny(s, "{[")
	if start > 0 {
		end := strings.LastIndexAny(s, "}]")
		if end > start {
			s = s[start : end+1]
		}
	}

	return s
}
