// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Status is the outcome of a single case.
type Status string

const (
	StatusPassed     Status = "passed"
	StatusFailed     Status = "failed"
	StatusSoftFailed Status = "soft_failed"
)

// CaseDetail is the summary of a single case run.
type CaseDetail struct {
	Name         string `json:"name"`
	Status       Status `json:"status"`
	DurationMS   int64  `json:"duration_ms"`
	ExitCode     *int   `json:"exit_code"`
	TimedOut     bool   `json:"timed_out"`
	AllowFailure bool   `json:"allow_failure"`
	LogPath      string `json:"log_path"`
}

// Summary is the machine readable summary of a suite run. All paths are
// relative to the workspace.
type Summary struct {
	Suite         string       `json:"suite"`
	Action        string       `json:"action"`
	Description   string       `json:"description,omitempty"`
	Arch          string       `json:"arch,omitempty"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at"`
	Total         int          `json:"total"`
	Passed        int          `json:"passed"`
	Failed        int          `json:"failed"`
	SoftFailed    int          `json:"soft_failed"`
	LogFile       string       `json:"log_file"`
	ErrorLog      string       `json:"error_log,omitempty"`
	CaseLogsRoot  string       `json:"case_logs_root"`
	ArtifactsRoot string       `json:"artifacts_root"`
	Cases         []CaseDetail `json:"cases"`
}

func (s *Summary) add(detail CaseDetail) {
	s.Cases = append(s.Cases, detail)

	switch detail.Status {
	case StatusPassed:
		s.Passed++
	case StatusFailed:
		s.Failed++
	case StatusSoftFailed:
		s.SoftFailed++
	}
}

// WriteFile writes the summary as indented JSON to the given path.
func (s *Summary) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	err = os.WriteFile(path, append(data, '\n'), 0o644) //nolint:gosec
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

// ReadSummary reads a summary written by [Summary.WriteFile].
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}

	var summary Summary

	err = json.Unmarshal(data, &summary)
	if err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}

	return &summary, nil
}
