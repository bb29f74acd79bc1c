// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanitize recovers the payload of a shell command from its raw
// console transcript.
package sanitize

import (
	"encoding/json"
	"strings"

	"github.com/aibor/starryrun/internal/exitcode"
)

// Output returns the payload of a command from its console transcript.
//
// Carriage returns are removed first. Then every echo of the sent command
// line, the bare command and the prompt is removed and the text is cut at the
// first exit code sentinel. If the trimmed rest contains a span from the first
// "{" to the last "}" that is valid JSON, exactly that span is returned.
// Otherwise the trimmed text is returned as is.
func Output(raw, command, fullCommand, prompt string) string {
	text := strings.ReplaceAll(raw, "\r", "")

	// Order matters: the full command contains the bare command.
	for _, token := range []string{fullCommand, command, prompt} {
		if token != "" {
			text = strings.ReplaceAll(text, token, "")
		}
	}

	if idx := exitcode.Index(text); idx >= 0 {
		text = text[:idx]
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if doc, ok := jsonSpan(text); ok {
		return doc
	}

	return text
}

// jsonSpan returns the span from the first "{" to the last "}" in text, if it
// is valid JSON.
func jsonSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')

	if start < 0 || end < start {
		return "", false
	}

	candidate := strings.TrimSpace(text[start : end+1])
	if !json.Valid([]byte(candidate)) {
		return "", false
	}

	return candidate, true
}
