package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ToPromptJSON serializes data to JSON for use in prompts. HTML characters
// and non-ASCII text are preserved as-is.
func ToPromptJSON(data any, indent int) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", fmt.Sprintf("%*s", indent, ""))
	}
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// debugPromptsEnabled reports whether DEBUG_LLM_PROMPTS=true.
func debugPromptsEnabled() bool {
	return os.Getenv("DEBUG_LLM_PROMPTS") == "true"
}

// logPrompts logs system and user prompts at debug level when
// DEBUG_LLM_PROMPTS is set.
func logPrompts(logger *slog.Logger, sysPrompt, userPrompt string) {
	if !debugPromptsEnabled() {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Generated prompts", "system", sysPrompt, "user", userPrompt)
}

// LogPrompt logs a single rendered prompt at debug level when
// DEBUG_LLM_PROMPTS is set.
func LogPrompt(logger *slog.Logger, name, prompt string) {
	if !debugPromptsEnabled() {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Rendered prompt", "name", name, "prompt", prompt)
}
