package template

// MissingAction controls what happens to a placeholder whose variable
// is absent from the map.
type MissingAction int

const (
	// MissingKeep leaves the placeholder untouched. The default:
	// an unfilled prompt slot stays visible in the output.
	MissingKeep MissingAction = iota

	// MissingEmpty replaces the placeholder with an empty string.
	MissingEmpty

	// MissingError makes Expand return an UndefinedVariableError
	// naming every unresolved variable.
	MissingError
)

// Option configures an Expander.
type Option func(*Expander)

// WithMissingAction sets how unresolved placeholders are handled.
func WithMissingAction(action MissingAction) Option {
	return func(e *Expander) {
		e.missing = action
	}
}
