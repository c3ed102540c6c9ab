package template

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// bracePattern matches ${name}.
	bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

	// dollarPattern matches $name up to a word boundary, so $style
	// never matches inside $styleGuide.
	dollarPattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)(?:\b|$)`)
)

// Expander substitutes ${var} and $var placeholders in strings.
// Safe for concurrent use after construction.
type Expander struct {
	missing MissingAction
}

// NewExpander creates an Expander. Without options, unresolved
// placeholders are kept as-is (MissingKeep).
func NewExpander(opts ...Option) *Expander {
	e := &Expander{missing: MissingKeep}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand substitutes placeholders in s from vars. Values are formatted
// with %v, so numeric state fields slot into prompts directly.
//
// An error is only returned under MissingError, and it names every
// unresolved variable, not just the first.
func (e *Expander) Expand(s string, vars map[string]any) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	substitute := func(name, placeholder string) string {
		if val, ok := vars[name]; ok {
			return fmt.Sprintf("%v", val)
		}
		switch e.missing {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = append(missing, name)
		}
		return placeholder
	}

	// Braced placeholders first: ${x} must not be re-matched as $x.
	result := bracePattern.ReplaceAllStringFunc(s, func(match string) string {
		return substitute(match[2:len(match)-1], match)
	})
	result = dollarPattern.ReplaceAllStringFunc(result, func(match string) string {
		return substitute(match[1:], match)
	})

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// ExpandMap substitutes placeholders in every string value of m,
// recursing into nested map[string]any values. Non-string values are
// copied unchanged. Under MissingError the first failure aborts.
func (e *Expander) ExpandMap(m map[string]any, vars map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}

	result := make(map[string]any, len(m))
	for k, v := range m {
		expanded, err := e.expandValue(v, vars)
		if err != nil {
			return nil, err
		}
		result[k] = expanded
	}
	return result, nil
}

func (e *Expander) expandValue(v any, vars map[string]any) (any, error) {
	switch val := v.(type) {
	case string:
		return e.Expand(val, vars)
	case map[string]any:
		return e.ExpandMap(val, vars)
	default:
		return v, nil
	}
}

// UndefinedVariableError lists the variables an Expand call could not
// resolve under MissingError.
type UndefinedVariableError struct {
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

var defaultExpander = NewExpander()

// Expand substitutes placeholders in s, keeping unresolved ones as-is.
//
//	prompt := template.Expand("Summarize ${topic}", map[string]any{"topic": "routing"})
func Expand(s string, vars map[string]any) string {
	// MissingKeep never errors.
	result, _ := defaultExpander.Expand(s, vars)
	return result
}
