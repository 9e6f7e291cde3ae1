package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ResponseCleaner repairs transport-level artifacts in LLM responses: the
// models are asked for bare JSON but sometimes wrap it in markdown fences or
// lead with commentary. It never rewrites characters inside string values,
// since report prose legitimately contains apostrophes and asterisks.
type ResponseCleaner struct{}

func NewResponseCleaner() *ResponseCleaner {
	return &ResponseCleaner{}
}

var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

// CleanJSONResponse strips markdown fences, extracts the outermost JSON
// object from mixed content, and removes trailing commas if the result
// still does not parse.
func (rc *ResponseCleaner) CleanJSONResponse(response string) (string, error) {
	response = rc.removeMarkdownBlocks(response)
	response = rc.extractJSON(response)

	var probe any
	if err := json.Unmarshal([]byte(response), &probe); err == nil {
		return response, nil
	}
	return trailingCommaRe.ReplaceAllString(response, "$1"), nil
}

func (rc *ResponseCleaner) removeMarkdownBlocks(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// extractJSON returns the first brace-balanced object in the response,
// ignoring braces inside string literals.
func (rc *ResponseCleaner) extractJSON(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return response
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return response
}
