package extraction

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/soundprediction/graphqa/pkg/prompts"
)

var (
	thinkTagRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fenceRegex    = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
)

// parseGraph decodes a model response into a prompts.ExtractedGraph, the
// same model ExtractGraphSchema describes. Think tags and code fences are
// removed, then malformed JSON is repaired before decoding. If the whole
// response does not decode, the outermost object is tried.
func parseGraph(content string) (*prompts.ExtractedGraph, error) {
	content = thinkTagRegex.ReplaceAllString(content, "")
	if m := fenceRegex.FindStringSubmatch(content); m != nil {
		content = m[1]
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty extraction response")
	}

	if graph, err := decodeGraph(content); err == nil {
		return graph, nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		if graph, err := decodeGraph(content[start : end+1]); err == nil {
			return graph, nil
		}
	}
	return nil, fmt.Errorf("failed to parse extraction response as a graph: %.200q", content)
}

func decodeGraph(content string) (*prompts.ExtractedGraph, error) {
	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		repaired = content
	}

	var graph prompts.ExtractedGraph
	if err := json.Unmarshal([]byte(repaired), &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}
