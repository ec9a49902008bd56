package render

import (
	"errors"
	"fmt"
)

// ErrUnknownRenderer is returned when no math renderer is registered under
// the requested name.
var ErrUnknownRenderer = errors.New("unknown math renderer")

// MathFactory creates a MathRenderer instance.
type MathFactory func() MathRenderer

var mathRenderers = make(map[string]MathFactory)

// RegisterMath registers a math renderer factory by name.
func RegisterMath(name string, factory MathFactory) {
	mathRenderers[name] = factory
}

// NewMath creates a math renderer by name.
func NewMath(name string) (MathRenderer, error) { //nolint:ireturn
	factory, ok := mathRenderers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRenderer, name)
	}

	return factory(), nil
}

// RegisteredMath returns the names of all registered math renderers.
func RegisteredMath() []string {
	names := make([]string, 0, len(mathRenderers))
	for name := range mathRenderers {
		names = append(names, name)
	}

	return names
}

func init() {
	RegisterMath("html", func() MathRenderer { return KatexMarkup{} })
	RegisterMath("unicode", func() MathRenderer { return UnicodeMath{} })
}
