package texlet

import "strings"

// The completion catalogs below are process-wide read-only lookup data.
// They are loaded once at init and never written afterwards; the exported
// accessors hand out copies so callers cannot mutate the tables.

// Skeleton is a full command template offered for bare-command completion.
type Skeleton struct {
	// Name is the command name without its leading backslash.
	Name string

	// Insert is the full text placed at the replacement span.
	Insert string

	// Cursor is the byte offset into Insert where the cursor lands after
	// insertion, or -1 for the end of the inserted text.
	Cursor int
}

var classCatalog = []string{
	"article",
	"beamer",
	"book",
	"letter",
	"minimal",
	"report",
	"slides",
}

// Options accepted by every document class.
var commonClassOptions = []string{
	"10pt",
	"11pt",
	"12pt",
	"a4paper",
	"letterpaper",
	"landscape",
	"draft",
	"final",
	"oneside",
	"twoside",
	"onecolumn",
	"twocolumn",
}

var classOptions = map[string][]string{
	"article": {"titlepage", "notitlepage", "fleqn", "leqno"},
	"report":  {"openany", "openright", "titlepage", "notitlepage"},
	"book":    {"openany", "openright"},
	"beamer":  {"aspectratio=169", "aspectratio=43", "handout", "notes"},
	"slides":  {"clock", "onlynotes"},
}

// Classes whose option set folds into another class's vocabulary. A book
// accepts everything articles and reports do.
var classOptionUnions = map[string][]string{
	"book": {"article", "report"},
}

var packageCatalog = []string{
	"amsmath",
	"amssymb",
	"babel",
	"biblatex",
	"booktabs",
	"enumitem",
	"fontenc",
	"fontspec",
	"geometry",
	"graphicx",
	"hyperref",
	"inputenc",
	"listings",
	"siunitx",
	"tikz",
	"xcolor",
}

var packageOptions = map[string][]string{
	"amsmath":  {"fleqn", "leqno", "centertags", "tbtags", "sumlimits", "intlimits"},
	"babel":    {"english", "french", "german", "ngerman", "spanish"},
	"biblatex": {"backend=", "style=", "citestyle=", "sorting=", "natbib"},
	"fontenc":  {"T1", "OT1"},
	"fontspec": {"no-math", "quiet", "silent"},
	"geometry": {"a4paper", "landscape", "portrait", "margin=", "top=", "bottom=", "left=", "right="},
	"graphicx": {"draft", "final", "demo"},
	"hyperref": {"colorlinks", "hidelinks", "breaklinks", "linkcolor=", "urlcolor=", "citecolor="},
	"inputenc": {"utf8", "latin1"},
	"xcolor":   {"dvipsnames", "svgnames", "x11names", "table"},
}

// Drawing commands whose square-bracket argument takes styling options.
var styleCommands = map[string]struct{}{
	"clip":       {},
	"coordinate": {},
	"draw":       {},
	"fill":       {},
	"filldraw":   {},
	"node":       {},
	"path":       {},
	"shade":      {},
}

var styleOptions = []string{
	"red",
	"green",
	"blue",
	"black",
	"gray",
	"orange",
	"violet",
	"thick",
	"thin",
	"very thick",
	"ultra thick",
	"solid",
	"dashed",
	"dotted",
	"densely",
	"loosely",
	"rounded corners",
	"line width=",
	"opacity=",
	"scale=",
	"rotate=",
	"fill=",
	"draw=",
}

var dashPatterns = []string{"dashed", "dotted", "dash dot"}

// Bases that open a second completion step with their own vocabulary.
var subOptions = map[string][]string{
	"densely": dashPatterns,
	"loosely": dashPatterns,
}

var commandSkeletons = []Skeleton{
	{Name: "begin", Insert: `\begin{}`, Cursor: 7},
	{Name: "caption", Insert: `\caption{}`, Cursor: 9},
	{Name: "documentclass", Insert: `\documentclass{}`, Cursor: 15},
	{Name: "frac", Insert: `\frac{}{}`, Cursor: 6},
	{Name: "hline", Insert: `\hline`, Cursor: -1},
	{Name: "includegraphics", Insert: `\includegraphics{}`, Cursor: 17},
	{Name: "int", Insert: `\int_{}^{}`, Cursor: 6},
	{Name: "item", Insert: `\item `, Cursor: -1},
	{Name: "label", Insert: `\label{}`, Cursor: 7},
	{Name: "section", Insert: `\section{}`, Cursor: 9},
	{Name: "sqrt", Insert: `\sqrt{}`, Cursor: 6},
	{Name: "subsection", Insert: `\subsection{}`, Cursor: 12},
	{Name: "sum", Insert: `\sum_{}^{}`, Cursor: 6},
	{Name: "textbf", Insert: `\textbf{}`, Cursor: 8},
	{Name: "textit", Insert: `\textit{}`, Cursor: 8},
	{Name: "underline", Insert: `\underline{}`, Cursor: 11},
	{Name: "usepackage", Insert: `\usepackage{}`, Cursor: 12},
}

// Classes returns the known document class names.
func Classes() []string {
	return append([]string(nil), classCatalog...)
}

// ClassOptions returns the option vocabulary for a class: the common set
// unioned with the class's own options and, where registered, with the
// option sets it folds in from other classes. An unknown or empty name
// yields only the common set.
func ClassOptions(name string) []string {
	opts := append([]string(nil), commonClassOptions...)

	seen := make(map[string]struct{}, len(opts))
	for _, o := range opts {
		seen[o] = struct{}{}
	}

	add := func(more []string) {
		for _, o := range more {
			if _, ok := seen[o]; ok {
				continue
			}
			seen[o] = struct{}{}
			opts = append(opts, o)
		}
	}

	add(classOptions[name])
	for _, folded := range classOptionUnions[name] {
		add(classOptions[folded])
	}

	return opts
}

// Packages returns the known package names.
func Packages() []string {
	return append([]string(nil), packageCatalog...)
}

// PackageOptions returns the option vocabulary registered for a package.
// The second result is false when the package has no registered options.
func PackageOptions(name string) ([]string, bool) {
	opts, ok := packageOptions[name]
	if !ok {
		return nil, false
	}

	return append([]string(nil), opts...), true
}

// StyleOptions returns the full styling-option vocabulary.
func StyleOptions() []string {
	return append([]string(nil), styleOptions...)
}

// SubOptions returns the second-step vocabulary for a base keyword, if the
// base opens one.
func SubOptions(base string) ([]string, bool) {
	opts, ok := subOptions[base]
	if !ok {
		return nil, false
	}

	return append([]string(nil), opts...), true
}

// IsStyleCommand reports whether name is a drawing command whose bracket
// argument takes styling options.
func IsStyleCommand(name string) bool {
	_, ok := styleCommands[name]
	return ok
}

// Skeletons returns the command templates for bare-command completion.
func Skeletons() []Skeleton {
	return append([]Skeleton(nil), commandSkeletons...)
}

// OptionKey returns the identity key of an option token: the substring
// before the first assignment or whitespace character. Two options with
// the same key are mutually exclusive within one bracket group.
func OptionKey(token string) string {
	token = strings.TrimSpace(token)
	if i := strings.IndexAny(token, "= \t"); i >= 0 {
		return token[:i]
	}

	return token
}
