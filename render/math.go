package render

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// ErrInvalidMath is returned by math renderers for source they cannot
// typeset. The message wrapped around it names the concrete problem.
var ErrInvalidMath = errors.New("invalid math")

// MathRenderer typesets one math expression into target markup.
//
// Implementations return an error on invalid input instead of panicking;
// the renderer degrades the failed span to an inline error marker and
// keeps going.
type MathRenderer interface {
	// Name returns the renderer identifier (e.g., "html", "unicode").
	Name() string

	// Render typesets src. display selects block layout.
	Render(src string, display bool) (string, error)
}

// checkMath applies the validation shared by all renderers: the source
// must not be blank and brace groups must balance. Escaped braces do not
// count.
func checkMath(src string) error {
	if strings.TrimSpace(src) == "" {
		return fmt.Errorf("%w: empty expression", ErrInvalidMath)
	}

	depth := 0

	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unbalanced braces", ErrInvalidMath)
			}
		}
	}

	if depth != 0 {
		return fmt.Errorf("%w: unbalanced braces", ErrInvalidMath)
	}

	return nil
}

// KatexMarkup prepares math for client-side typesetting. The server
// validates the source and emits a tagged span whose text the page script
// hands to KaTeX; glyph layout happens in the browser.
type KatexMarkup struct{}

// Name implements MathRenderer.
func (KatexMarkup) Name() string { return "html" }

// Render implements MathRenderer.
func (KatexMarkup) Render(src string, display bool) (string, error) {
	if err := checkMath(src); err != nil {
		return "", err
	}

	var b strings.Builder

	b.WriteString(`<span class="katex-src"`)
	if display {
		b.WriteString(` data-display="true"`)
	}
	b.WriteString(`>`)
	b.WriteString(html.EscapeString(src))
	b.WriteString(`</span>`)

	return b.String(), nil
}

// UnicodeMath renders math as plain unicode text for terminal previews.
// Known commands map to their glyphs, fractions flatten to a/b, and
// single-token scripts use the unicode super- and subscript ranges. An
// unknown command is an error so typos surface instead of vanishing.
type UnicodeMath struct{}

// Name implements MathRenderer.
func (UnicodeMath) Name() string { return "unicode" }

// Render implements MathRenderer.
func (UnicodeMath) Render(src string, display bool) (string, error) {
	if err := checkMath(src); err != nil {
		return "", err
	}

	out, err := unicodeize(stripEnvironment(src))
	if err != nil {
		return "", err
	}

	if display {
		out = strings.TrimSpace(out)
	}

	return out, nil
}

var mathSymbols = map[string]string{
	"alpha":   "α",
	"beta":    "β",
	"gamma":   "γ",
	"delta":   "δ",
	"epsilon": "ε",
	"theta":   "θ",
	"lambda":  "λ",
	"mu":      "μ",
	"pi":      "π",
	"sigma":   "σ",
	"tau":     "τ",
	"phi":     "φ",
	"omega":   "ω",
	"Gamma":   "Γ",
	"Delta":   "Δ",
	"Sigma":   "Σ",
	"Omega":   "Ω",
	"infty":   "∞",
	"sum":     "Σ",
	"prod":    "Π",
	"int":     "∫",
	"partial": "∂",
	"nabla":   "∇",
	"forall":  "∀",
	"exists":  "∃",
	"in":      "∈",
	"subset":  "⊂",
	"cup":     "∪",
	"cap":     "∩",
	"pm":      "±",
	"times":   "×",
	"cdot":    "·",
	"div":     "÷",
	"leq":     "≤",
	"geq":     "≥",
	"neq":     "≠",
	"approx":  "≈",
	"equiv":   "≡",
	"to":      "→",
	"mapsto":  "↦",
	"sqrt":    "√",
	"ldots":   "…",
	"cdots":   "⋯",
	"quad":    "  ",
	" ":       " ",
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', 'n': 'ⁿ', 'i': 'ⁱ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋',
}

// stripEnvironment drops a \begin{...}...\end{...} wrapper and rewrites
// the alignment markers it implies: row breaks become newlines, cell
// separators become spaces.
func stripEnvironment(src string) string {
	trimmed := strings.TrimSpace(src)

	if !strings.HasPrefix(trimmed, `\begin{`) {
		return src
	}

	if close := strings.Index(trimmed, "}"); close >= 0 {
		trimmed = trimmed[close+1:]
	}

	if end := strings.LastIndex(trimmed, `\end{`); end >= 0 {
		trimmed = trimmed[:end]
	}

	trimmed = strings.ReplaceAll(trimmed, `\\`, "\n")
	trimmed = strings.ReplaceAll(trimmed, "&", " ")

	return strings.TrimSpace(trimmed)
}

func unicodeize(src string) (string, error) {
	var b strings.Builder

	for i := 0; i < len(src); {
		switch c := src[i]; c {
		case '\\':
			next, err := translateCommand(&b, src, i)
			if err != nil {
				return "", err
			}
			i = next

		case '{', '}':
			i++

		case '^':
			i = translateScript(&b, src, i+1, superscripts, "^")

		case '_':
			i = translateScript(&b, src, i+1, subscripts, "_")

		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), nil
}

// translateCommand resolves the control sequence starting at the backslash
// at offset i and returns the offset after it.
func translateCommand(b *strings.Builder, src string, i int) (int, error) {
	j := i + 1
	for j < len(src) && isCommandLetter(src[j]) {
		j++
	}

	// A backslash followed by a non-letter escapes that character.
	if j == i+1 {
		if j < len(src) {
			b.WriteByte(src[j])

			return j + 1, nil
		}

		return j, nil
	}

	name := src[i+1 : j]

	if name == "frac" {
		return translateFraction(b, src, j)
	}

	glyph, ok := mathSymbols[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown command \\%s", ErrInvalidMath, name)
	}

	b.WriteString(glyph)

	return j, nil
}

// translateFraction flattens \frac{a}{b} into a/b, parenthesizing
// multi-token halves.
func translateFraction(b *strings.Builder, src string, i int) (int, error) {
	num, i, err := braceGroup(src, i)
	if err != nil {
		return 0, err
	}

	den, i, err := braceGroup(src, i)
	if err != nil {
		return 0, err
	}

	numOut, err := unicodeize(num)
	if err != nil {
		return 0, err
	}

	denOut, err := unicodeize(den)
	if err != nil {
		return 0, err
	}

	b.WriteString(parenthesize(numOut))
	b.WriteString("/")
	b.WriteString(parenthesize(denOut))

	return i, nil
}

func parenthesize(s string) string {
	if len([]rune(s)) > 1 {
		return "(" + s + ")"
	}

	return s
}

// braceGroup reads a {…} group starting at or after offset i and returns
// its content plus the offset after the closing brace.
func braceGroup(src string, i int) (string, int, error) {
	for i < len(src) && src[i] == ' ' {
		i++
	}

	if i >= len(src) || src[i] != '{' {
		return "", 0, fmt.Errorf("%w: missing brace group", ErrInvalidMath)
	}

	depth := 0

	for j := i; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[i+1 : j], j + 1, nil
			}
		}
	}

	return "", 0, fmt.Errorf("%w: missing brace group", ErrInvalidMath)
}

// translateScript renders the token after ^ or _ with the given glyph
// table, falling back to the literal marker when a rune has no glyph.
func translateScript(b *strings.Builder, src string, i int, glyphs map[rune]rune, marker string) int {
	token := ""
	next := i

	if i < len(src) && src[i] == '{' {
		if end := strings.IndexByte(src[i:], '}'); end >= 0 {
			token = src[i+1 : i+end]
			next = i + end + 1
		}
	} else if i < len(src) {
		token = src[i : i+1]
		next = i + 1
	}

	if token == "" {
		b.WriteString(marker)

		return next
	}

	var mapped strings.Builder

	for _, r := range token {
		glyph, ok := glyphs[r]
		if !ok {
			b.WriteString(marker)
			b.WriteString(token)

			return next
		}
		mapped.WriteRune(glyph)
	}

	b.WriteString(mapped.String())

	return next
}

func isCommandLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
