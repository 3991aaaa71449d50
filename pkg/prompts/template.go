package prompts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// templateVarRegex matches {variable} placeholders in templates.
// Cypher map literals such as {id: 'John'} never match.
var templateVarRegex = regexp.MustCompile(`\{(\w+)\}`)

// MissingVariableError is returned when a template is formatted without a
// value for one of its placeholders.
type MissingVariableError struct {
	Variables []string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing prompt variables: %s", strings.Join(e.Variables, ", "))
}

// GetTemplateVars extracts variable names from a template string.
func GetTemplateVars(template string) []string {
	matches := templateVarRegex.FindAllStringSubmatch(template, -1)
	vars := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, match := range matches {
		if len(match) > 1 && !seen[match[1]] {
			vars = append(vars, match[1])
			seen[match[1]] = true
		}
	}
	return vars
}

// FormatString substitutes placeholders in a single pass, so substituted
// values are never themselves treated as templates. Unknown placeholders are
// left untouched.
func FormatString(template string, vars map[string]string) string {
	return templateVarRegex.ReplaceAllStringFunc(template, func(placeholder string) string {
		if value, ok := vars[placeholder[1:len(placeholder)-1]]; ok {
			return value
		}
		return placeholder
	})
}

func checkVars(required []string, vars map[string]string) error {
	var missing []string
	for _, name := range required {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingVariableError{Variables: missing}
	}
	return nil
}

// PromptTemplate is a simple string-based prompt template.
type PromptTemplate struct {
	// Template is the template string with {variable} placeholders.
	Template string
	// TemplateVars are the variable names extracted from the template.
	TemplateVars []string
}

// NewPromptTemplate creates a new PromptTemplate.
func NewPromptTemplate(template string) *PromptTemplate {
	return &PromptTemplate{
		Template:     template,
		TemplateVars: GetTemplateVars(template),
	}
}

// Format renders the template. Every placeholder must have a value.
func (pt *PromptTemplate) Format(vars map[string]string) (string, error) {
	if err := checkVars(pt.TemplateVars, vars); err != nil {
		return "", err
	}
	return FormatString(pt.Template, vars), nil
}

// DefaultExampleSeparator joins the parts of a few-shot prompt.
const DefaultExampleSeparator = "\n\n"

// FewShotPromptTemplate renders prefix, formatted examples and suffix joined
// by a separator. Empty parts are skipped. Examples are formatted with
// ExamplePrompt only; their text is not substituted again.
type FewShotPromptTemplate struct {
	Prefix           *PromptTemplate
	Examples         []map[string]string
	ExamplePrompt    *PromptTemplate
	Suffix           *PromptTemplate
	ExampleSeparator string
}

// NewFewShotPromptTemplate creates a few-shot template with the default separator.
func NewFewShotPromptTemplate(prefix string, examples []map[string]string, examplePrompt, suffix string) *FewShotPromptTemplate {
	return &FewShotPromptTemplate{
		Prefix:           NewPromptTemplate(prefix),
		Examples:         examples,
		ExamplePrompt:    NewPromptTemplate(examplePrompt),
		Suffix:           NewPromptTemplate(suffix),
		ExampleSeparator: DefaultExampleSeparator,
	}
}

// InputVariables returns the variables required by the prefix and suffix.
func (f *FewShotPromptTemplate) InputVariables() []string {
	seen := make(map[string]bool)
	var vars []string
	for _, pt := range []*PromptTemplate{f.Prefix, f.Suffix} {
		if pt == nil {
			continue
		}
		for _, v := range pt.TemplateVars {
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	}
	return vars
}

// Format renders the full prompt.
func (f *FewShotPromptTemplate) Format(vars map[string]string) (string, error) {
	var pieces []string

	if f.Prefix != nil {
		prefix, err := f.Prefix.Format(vars)
		if err != nil {
			return "", fmt.Errorf("failed to format prefix: %w", err)
		}
		pieces = append(pieces, prefix)
	}

	if f.ExamplePrompt != nil {
		for i, example := range f.Examples {
			rendered, err := f.ExamplePrompt.Format(example)
			if err != nil {
				return "", fmt.Errorf("failed to format example %d: %w", i, err)
			}
			pieces = append(pieces, rendered)
		}
	}

	if f.Suffix != nil {
		suffix, err := f.Suffix.Format(vars)
		if err != nil {
			return "", fmt.Errorf("failed to format suffix: %w", err)
		}
		pieces = append(pieces, suffix)
	}

	separator := f.ExampleSeparator
	if separator == "" {
		separator = DefaultExampleSeparator
	}

	nonEmpty := pieces[:0]
	for _, piece := range pieces {
		if piece != "" {
			nonEmpty = append(nonEmpty, piece)
		}
	}
	return strings.Join(nonEmpty, separator), nil
}
