/*
Package template expands ${var} and $var placeholders in strings.

Workflow nodes use it to build prompts from state, and the config
package uses it to substitute environment variables into loaded
configuration values.

# Basic Usage

Expand placeholders with the package-level function:

	prompt := template.Expand("Write a ${style} summary about ${topic}", map[string]any{
	    "style": "concise",
	    "topic": "superstep execution",
	})
	// prompt: "Write a concise summary about superstep execution"

Both ${var} and $var forms are recognized. The bare form stops at word
boundaries, so $style never matches inside $styleGuide.

# Missing Variables

The package-level Expand keeps unresolved placeholders as-is, which
makes partially-filled prompts visible instead of silently blank. An
Expander can be configured to drop them or to fail:

	exp := template.NewExpander(template.WithMissingAction(template.MissingError))
	_, err := exp.Expand("Summarize ${topic}", nil)
	// err: "undefined variable: topic"

# Expanding Configuration

ExpandMap walks every string value of a map, recursing into nested
maps, which is how config substitutes environment variables:

	exp := template.NewExpander(template.WithMissingAction(template.MissingEmpty))
	out, _ := exp.ExpandMap(map[string]any{
	    "model":   "${MODEL_NAME}",
	    "backend": map[string]any{"workdir": "$HOME/runs"},
	}, vars)

An Expander is safe for concurrent use after construction.
*/
package template
