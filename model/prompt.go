package model

import "strings"

// promptMarkers separate the instruction block from the user's input inside
// a combined prompt. The marker line stays part of the user message.
var promptMarkers = []string{"USER INPUT:", "USER STATUS QUERY:", "USER QUERY:"}

// SplitPrompt divides a combined prompt into system and user parts on the
// first known marker. Without a marker the whole prompt is treated as the
// user message.
func SplitPrompt(prompt string) (system, user string) {
	for _, marker := range promptMarkers {
		if idx := strings.Index(prompt, marker); idx >= 0 {
			return strings.TrimSpace(prompt[:idx]), prompt[idx:]
		}
	}
	return "", prompt
}

// ExtractJSON strips a markdown code fence from a model response. Providers
// without a native JSON mode tend to wrap JSON in ```json blocks; responses
// without fences are returned unchanged.
func ExtractJSON(output string) string {
	if idx := strings.Index(output, "```json"); idx >= 0 {
		rest := output[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			if body := strings.TrimSpace(rest[:end]); body != "" {
				return body
			}
		}
	}
	if idx := strings.Index(output, "```"); idx >= 0 {
		rest := output[idx+len("```"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			if body := strings.TrimSpace(rest[:end]); body != "" {
				return body
			}
		}
	}
	return strings.TrimSpace(output)
}
