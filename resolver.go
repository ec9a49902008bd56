package texlet

import "strings"

// CompletionKind identifies which context matcher produced a completion.
type CompletionKind string

const (
	CompletionKindNone           CompletionKind = "none"
	CompletionKindStyleOption    CompletionKind = "style_option"
	CompletionKindStyleSubOption CompletionKind = "style_sub_option"
	CompletionKindClassOption    CompletionKind = "class_option"
	CompletionKindPackageOption  CompletionKind = "package_option"
	CompletionKindClassName      CompletionKind = "class_name"
	CompletionKindPackageName    CompletionKind = "package_name"
	CompletionKindCommand        CompletionKind = "command"
)

// CompletionContext describes the context matched at the cursor position.
type CompletionContext struct {
	Kind CompletionKind

	// Prefix is the already-typed text the candidates were filtered by.
	Prefix string

	// From and To bound the replacement span as byte columns on the line.
	// Inserting a candidate replaces line[From:To].
	From int
	To   int

	// UsedKeys holds the identity keys already consumed by completed
	// tokens in the surrounding bracket group. Option contexts only.
	UsedKeys map[string]struct{}
}

// Candidate is one completion suggestion.
type Candidate struct {
	// Label is the text shown in the suggestion menu.
	Label string

	// Insert is the text placed at the replacement span.
	Insert string

	// Cursor is the byte offset into Insert where the cursor lands after
	// insertion, or -1 for the end of the inserted text.
	Cursor int

	// OpensSub requests a follow-up completion at the new cursor position
	// after insertion. Set for options that own a sub-vocabulary.
	OpensSub bool
}

// contextMatcher inspects the line up to the cursor and, when its textual
// predicate matches, produces the completion context and its candidates.
type contextMatcher func(r *Resolver, doc, line string, col int) (CompletionContext, []Candidate, bool)

// Resolver answers completion requests with a deterministic, ordered chain
// of context matchers. The first matcher whose predicate accepts the
// position wins; the rest are not evaluated.
type Resolver struct {
	matchers []contextMatcher
}

// NewResolver returns a resolver with the full matcher chain installed.
func NewResolver() *Resolver {
	return &Resolver{
		matchers: []contextMatcher{
			(*Resolver).resolveStyleOption,
			(*Resolver).resolveClassOption,
			(*Resolver).resolvePackageOption,
			(*Resolver).resolveClassName,
			(*Resolver).resolvePackageName,
			(*Resolver).resolveCommand,
		},
	}
}

// Resolve matches the line up to col against the chain. doc is the full
// document text, consulted only for document-wide package dedup. A nil
// candidate slice with a non-none kind means the context matched but has
// nothing to offer.
func (r *Resolver) Resolve(doc, line string, col int) (CompletionContext, []Candidate) {
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}

	for _, match := range r.matchers {
		if ctx, cands, ok := match(r, doc, line, col); ok {
			return ctx, cands
		}
	}

	return CompletionContext{Kind: CompletionKindNone, From: col, To: col}, nil
}

const (
	cmdDocumentclass = "documentclass"
	cmdUsepackage    = "usepackage"
)

func (r *Resolver) resolveStyleOption(doc, line string, col int) (CompletionContext, []Candidate, bool) {
	contentStart, command, ok := openBracket(line, col)
	if !ok || !IsStyleCommand(command) {
		return CompletionContext{}, nil, false
	}

	ctx := bracketContext(line, contentStart, col)

	// A token like "densely d" switches to the base keyword's own
	// vocabulary, replacing only the sub-token.
	if base, sub, split := splitSubToken(ctx.Prefix); split {
		if vocab, has := SubOptions(base); has {
			subCtx := CompletionContext{
				Kind:     CompletionKindStyleSubOption,
				Prefix:   sub,
				From:     col - len(sub),
				To:       col,
				UsedKeys: ctx.UsedKeys,
			}

			return subCtx, optionCandidates(vocab, sub, nil), true
		}
	}

	ctx.Kind = CompletionKindStyleOption

	return ctx, optionCandidates(StyleOptions(), ctx.Prefix, ctx.UsedKeys), true
}

func (r *Resolver) resolveClassOption(doc, line string, col int) (CompletionContext, []Candidate, bool) {
	contentStart, command, ok := openBracket(line, col)
	if !ok || command != cmdDocumentclass {
		return CompletionContext{}, nil, false
	}

	ctx := bracketContext(line, contentStart, col)
	ctx.Kind = CompletionKindClassOption

	name := braceValueAfter(line, `\`+cmdDocumentclass)

	return ctx, optionCandidates(ClassOptions(name), ctx.Prefix, ctx.UsedKeys), true
}

func (r *Resolver) resolvePackageOption(doc, line string, col int) (CompletionContext, []Candidate, bool) {
	contentStart, command, ok := openBracket(line, col)
	if !ok || command != cmdUsepackage {
		return CompletionContext{}, nil, false
	}

	ctx := bracketContext(line, contentStart, col)
	ctx.Kind = CompletionKindPackageOption

	name := braceValueAfter(line, `\`+cmdUsepackage)

	vocab, known := PackageOptions(name)
	if !known {
		// The context still matched; an unknown package just has nothing
		// to offer.
		return ctx, nil, true
	}

	return ctx, optionCandidates(vocab, ctx.Prefix, ctx.UsedKeys), true
}

func (r *Resolver) resolveClassName(doc, line string, col int) (CompletionContext, []Candidate, bool) {
	contentStart, command, ok := openBrace(line, col)
	if !ok || command != cmdDocumentclass {
		return CompletionContext{}, nil, false
	}

	ctx := braceNameContext(line, contentStart, col, CompletionKindClassName)

	return ctx, nameCandidates(Classes(), ctx.Prefix, nil), true
}

func (r *Resolver) resolvePackageName(doc, line string, col int) (CompletionContext, []Candidate, bool) {
	contentStart, command, ok := openBrace(line, col)
	if !ok || command != cmdUsepackage {
		return CompletionContext{}, nil, false
	}

	ctx := braceNameContext(line, contentStart, col, CompletionKindPackageName)

	used := includedPackages(doc)

	// Names already committed earlier in this same brace group count as
	// included too.
	content := line[contentStart:col]
	if i := strings.LastIndex(content, ","); i >= 0 {
		for _, name := range strings.Split(content[:i], ",") {
			if name = strings.TrimSpace(name); name != "" {
				used[name] = struct{}{}
			}
		}
	}

	return ctx, nameCandidates(Packages(), ctx.Prefix, used), true
}

func (r *Resolver) resolveCommand(doc, line string, col int) (CompletionContext, []Candidate, bool) {
	j := col
	for j > 0 && isEnvLetter(line[j-1]) {
		j--
	}

	if j == 0 || line[j-1] != '\\' {
		return CompletionContext{}, nil, false
	}

	// An escaped backslash does not start a command.
	if j >= 2 && line[j-2] == '\\' {
		return CompletionContext{}, nil, false
	}

	prefix := line[j:col]

	ctx := CompletionContext{
		Kind:   CompletionKindCommand,
		Prefix: prefix,
		From:   j - 1,
		To:     col,
	}

	var out []Candidate
	for _, sk := range Skeletons() {
		if !strings.HasPrefix(sk.Name, prefix) {
			continue
		}
		out = append(out, Candidate{Label: `\` + sk.Name, Insert: sk.Insert, Cursor: sk.Cursor})
	}

	return ctx, out, true
}

// openBracket finds the innermost unclosed '[' before col and the command
// it is attached to. It returns the byte offset of the bracket content.
func openBracket(line string, col int) (int, string, bool) {
	depth := 0

	for i := col - 1; i >= 0; i-- {
		switch line[i] {
		case ']':
			depth++
		case '[':
			if depth == 0 {
				command, ok := commandBefore(line, i)
				if !ok {
					return 0, "", false
				}

				return i + 1, command, true
			}
			depth--
		}
	}

	return 0, "", false
}

// openBrace is the '{' counterpart of openBracket. An optional bracket
// group between the command and the brace is skipped, so the cursor inside
// \usepackage[utf8]{...} still resolves to usepackage.
func openBrace(line string, col int) (int, string, bool) {
	depth := 0

	for i := col - 1; i >= 0; i-- {
		switch line[i] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				command, ok := commandBeforeGroup(line, i)
				if !ok {
					return 0, "", false
				}

				return i + 1, command, true
			}
			depth--
		}
	}

	return 0, "", false
}

// commandBefore returns the command name whose control word ends just
// before byte i, allowing whitespace between the name and the group opener.
func commandBefore(line string, i int) (string, bool) {
	j := i
	for j > 0 && (line[j-1] == ' ' || line[j-1] == '\t') {
		j--
	}

	end := j
	for j > 0 && isEnvLetter(line[j-1]) {
		j--
	}

	if j == end || j == 0 || line[j-1] != '\\' {
		return "", false
	}

	return line[j:end], true
}

// commandBeforeGroup resolves the command owning a brace group at i,
// stepping over one completed bracket group if present.
func commandBeforeGroup(line string, i int) (string, bool) {
	j := i

	if j > 0 && line[j-1] == ']' {
		open := strings.LastIndex(line[:j-1], "[")
		if open < 0 {
			return "", false
		}
		j = open
	}

	return commandBefore(line, j)
}

// bracketContext tokenizes the in-progress bracket content before the
// cursor. The text after the last comma is the active token; the completed
// tokens before it contribute identity keys for dedup.
func bracketContext(line string, contentStart, col int) CompletionContext {
	content := line[contentStart:col]

	tokens := strings.Split(content, ",")
	active := strings.TrimLeft(tokens[len(tokens)-1], " \t")

	used := make(map[string]struct{})
	for _, tok := range tokens[:len(tokens)-1] {
		if key := OptionKey(tok); key != "" {
			used[key] = struct{}{}
		}
	}

	return CompletionContext{
		Prefix:   active,
		From:     col - len(active),
		To:       col,
		UsedKeys: used,
	}
}

// braceNameContext builds the context for a name completion inside a brace
// group. Only the text after the last comma is the active name.
func braceNameContext(line string, contentStart, col int, kind CompletionKind) CompletionContext {
	content := line[contentStart:col]

	active := content
	if i := strings.LastIndex(content, ","); i >= 0 {
		active = content[i+1:]
	}
	active = strings.TrimLeft(active, " \t")

	return CompletionContext{
		Kind:   kind,
		Prefix: active,
		From:   col - len(active),
		To:     col,
	}
}

// splitSubToken decomposes an active token into a base keyword and the
// sub-token after the first assignment or whitespace separator.
func splitSubToken(token string) (string, string, bool) {
	i := strings.IndexAny(token, "= \t")
	if i < 0 {
		return "", "", false
	}

	return token[:i], strings.TrimLeft(token[i:], "= \t"), true
}

// braceValueAfter returns the content of the first completed brace group
// following command on the line, skipping one optional bracket group in
// between. It returns "" when the group is absent or unterminated.
func braceValueAfter(line, command string) string {
	i := strings.Index(line, command)
	if i < 0 {
		return ""
	}

	rest := line[i+len(command):]

	if strings.HasPrefix(rest, "[") {
		close := strings.Index(rest, "]")
		if close < 0 {
			return ""
		}
		rest = rest[close+1:]
	}

	if !strings.HasPrefix(rest, "{") {
		return ""
	}

	end := strings.Index(rest, "}")
	if end < 0 {
		return ""
	}

	return strings.TrimSpace(rest[1:end])
}

// includedPackages collects every package name pulled in by a completed
// inclusion command anywhere in the document.
func includedPackages(doc string) map[string]struct{} {
	used := make(map[string]struct{})

	rest := doc
	for {
		i := strings.Index(rest, `\`+cmdUsepackage)
		if i < 0 {
			break
		}
		rest = rest[i+len(cmdUsepackage)+1:]

		arg := rest
		if strings.HasPrefix(arg, "[") {
			close := strings.Index(arg, "]")
			if close < 0 {
				continue
			}
			arg = arg[close+1:]
		}

		if !strings.HasPrefix(arg, "{") {
			continue
		}

		end := strings.Index(arg, "}")
		if end < 0 {
			continue
		}

		for _, name := range strings.Split(arg[1:end], ",") {
			if name = strings.TrimSpace(name); name != "" {
				used[name] = struct{}{}
			}
		}
	}

	return used
}

// optionCandidates filters a vocabulary by prefix and drops options whose
// identity key is already taken. An option that owns a sub-vocabulary
// inserts its base plus a separator and requests a follow-up completion.
func optionCandidates(vocab []string, prefix string, used map[string]struct{}) []Candidate {
	var out []Candidate

	for _, opt := range vocab {
		if !strings.HasPrefix(opt, prefix) {
			continue
		}
		if used != nil {
			if _, taken := used[OptionKey(opt)]; taken {
				continue
			}
		}

		cand := Candidate{Label: opt, Insert: opt, Cursor: -1}
		if _, has := SubOptions(opt); has {
			cand.Insert = opt + " "
			cand.OpensSub = true
		}

		out = append(out, cand)
	}

	return out
}

// nameCandidates filters a name catalog by prefix, excluding names already
// present in the surrounding document or group.
func nameCandidates(names []string, prefix string, exclude map[string]struct{}) []Candidate {
	var out []Candidate

	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if exclude != nil {
			if _, taken := exclude[name]; taken {
				continue
			}
		}

		out = append(out, Candidate{Label: name, Insert: name, Cursor: -1})
	}

	return out
}
