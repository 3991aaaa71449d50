// Package cypher post-processes Cypher generated by a language model.
package cypher

import (
	"regexp"
	"strings"
)

var codeFenceRegex = regexp.MustCompile("(?s)```(?:cypher)?(.*?)```")

// ExtractQuery returns the trimmed body of the first fenced code block in
// text, or text unchanged when there is no fence.
func ExtractQuery(text string) string {
	if m := codeFenceRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}
