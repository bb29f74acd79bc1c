// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aibor/starryrun/internal/sys"
	"golang.org/x/sys/unix"
)

const (
	// ActionRun is the only action supported for suites.
	ActionRun = "run"

	runIDLayout = "20060102-150405"

	// caseWaitDelay bounds the wait for a killed case's output.
	caseWaitDelay = 5 * time.Second
)

// run is the state of a single suite run.
type run struct {
	workspace    string
	kind         Kind
	manifest     *Manifest
	id           string
	dir          string
	casesDir     string
	artifactsDir string
	logPath      string
	log          *os.File
	logErr       error
}

// Run runs all cases of the suite in the given workspace and writes the
// summary line to stdout.
//
// It fails if the manifest can not be loaded, a case script is missing or
// any case that is not allowed to fail failed. In the latter case, the
// summary is returned along with the error.
func Run(
	ctx context.Context,
	workspace string,
	kind Kind,
	stdout io.Writer,
) (*Summary, error) {
	workspace, err := sys.AbsolutePath(workspace)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}

	manifestPath := kind.ManifestPath(workspace)

	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	if len(manifest.Cases) == 0 {
		return nil, fmt.Errorf("%w: %s, add entries to %s",
			ErrNoCases, kind.DisplayName(), manifestPath)
	}

	startedAt := time.Now()

	r, err := newRun(workspace, kind, manifest, startedAt.Format(runIDLayout))
	if err != nil {
		return nil, err
	}
	defer r.log.Close()

	summary := &Summary{
		Suite:         manifest.Name,
		Action:        ActionRun,
		Description:   manifest.Description,
		Arch:          manifest.Arch,
		StartedAt:     startedAt,
		Total:         len(manifest.Cases),
		LogFile:       r.rel(r.logPath),
		CaseLogsRoot:  r.rel(r.casesDir),
		ArtifactsRoot: r.rel(r.artifactsDir),
	}

	if summary.Suite == "" {
		summary.Suite = kind.DisplayName()
	}

	r.logf("[suite] %s (%s) - %s",
		summary.Suite,
		valueOr(manifest.Arch, "unknown arch"),
		valueOr(manifest.Description, "no description provided"),
	)

	err = r.build(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range manifest.Cases {
		detail, err := r.runCase(ctx, c)
		if err != nil {
			return nil, err
		}

		summary.add(detail)
	}

	summary.FinishedAt = time.Now()

	err = r.writeErrorLog(summary)
	if err != nil {
		return nil, err
	}

	if r.logErr != nil {
		return nil, fmt.Errorf("write suite log: %w", r.logErr)
	}

	err = summary.WriteFile(filepath.Join(kind.LogsRoot(workspace), "last_run.json"))
	if err != nil {
		return nil, err
	}

	_, err = fmt.Fprintf(stdout, "%s completed: %d/%d passed (%d soft failures). Log: %s\n",
		kind.DisplayName(),
		summary.Passed,
		summary.Total,
		summary.SoftFailed,
		summary.LogFile,
	)
	if err != nil {
		return nil, fmt.Errorf("print summary: %w", err)
	}

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%w: %s: %d of %d, consult %s",
			ErrCasesFailed, kind.DisplayName(), summary.Failed, summary.Total,
			summary.LogFile)
	}

	return summary, nil
}

func newRun(workspace string, kind Kind, manifest *Manifest, id string) (*run, error) {
	dir := filepath.Join(kind.LogsRoot(workspace), id)

	r := &run{
		workspace:    workspace,
		kind:         kind,
		manifest:     manifest,
		id:           id,
		dir:          dir,
		casesDir:     filepath.Join(dir, "cases"),
		artifactsDir: filepath.Join(dir, "artifacts"),
		logPath:      filepath.Join(dir, "suite.log"),
	}

	for _, d := range []string{r.casesDir, r.artifactsDir} {
		err := os.MkdirAll(d, 0o755)
		if err != nil {
			return nil, fmt.Errorf("create run dir: %w", err)
		}
	}

	log, err := os.Create(r.logPath)
	if err != nil {
		return nil, fmt.Errorf("create suite log: %w", err)
	}

	r.log = log

	return r, nil
}

// logf writes a line to the suite log. The first write error is kept and
// reported at the end of the run.
func (r *run) logf(format string, args ...any) {
	_, err := fmt.Fprintf(r.log, format+"\n", args...)
	if err != nil && r.logErr == nil {
		r.logErr = err
	}
}

// rel returns the path relative to the workspace, if it is inside of it.
func (r *run) rel(path string) string {
	rel, err := filepath.Rel(r.workspace, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}

	return rel
}

// build runs the build script, if present. Its failure is logged but does not
// fail the suite, as the cases report broken builds anyway.
func (r *run) build(ctx context.Context) error {
	script := filepath.Join(r.workspace, r.manifest.BuildScriptPath())

	_, err := os.Stat(script)
	if err != nil {
		r.logf("[build] skipped build step because %s does not exist", script)
		return nil //nolint:nilerr
	}

	r.logf("[build] executing %s for %s", script, r.kind.DisplayName())

	cmd := exec.CommandContext(ctx, script, r.kind.Dir())
	cmd.Dir = r.workspace
	cmd.Stdout = r.log
	cmd.Stderr = r.log

	err = cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		r.logf("[build] exited with %d", exitErr.ExitCode())
		slog.Warn("Build script failed", slog.Int("exit_code", exitErr.ExitCode()))

		return nil
	}

	if err != nil {
		return fmt.Errorf("run build script %s: %w", script, err)
	}

	return nil
}

func (r *run) runCase(ctx context.Context, c Case) (CaseDetail, error) {
	slug := c.Slug()
	logPath := filepath.Join(r.casesDir, slug+".log")
	artifactDir := filepath.Join(r.artifactsDir, slug)
	timeout := r.manifest.Timeout(c)

	err := os.MkdirAll(artifactDir, 0o755)
	if err != nil {
		return CaseDetail{}, fmt.Errorf("create artifact dir: %w", err)
	}

	r.logf("[case] starting %s -> %s", c.Name, r.rel(logPath))

	if c.Description != "" {
		r.logf("        %s", c.Description)
	}

	script := filepath.Join(r.workspace, c.Path)

	err = sys.ValidateFile(script)
	if err != nil {
		return CaseDetail{}, fmt.Errorf("%w: case %s: %s: %w",
			ErrMissingScript, c.Name, script, err)
	}

	logFile, err := os.Create(logPath)
	if err != nil {
		return CaseDetail{}, fmt.Errorf("create case log: %w", err)
	}
	defer logFile.Close()

	_, err = fmt.Fprintf(logFile, "[case] %s\n[case] command: %s %s\n[case] timeout budget: %ds\n",
		c.Name, script, strings.Join(c.Args, " "), int64(timeout.Seconds()))
	if err != nil {
		return CaseDetail{}, fmt.Errorf("write case log: %w", err)
	}

	slog.Info("Run case", slog.String("case", c.Name), slog.Duration("timeout", timeout))

	caseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(caseCtx, script, c.Args...)
	cmd.Dir = r.workspace
	cmd.Env = append(os.Environ(), r.caseEnv(c, slug, logPath, artifactDir, timeout)...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = caseWaitDelay
	cmd.Cancel = func() error {
		err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		if errors.Is(err, unix.ESRCH) {
			return os.ErrProcessDone
		}

		return err //nolint:wrapcheck
	}

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)

	if ctx.Err() != nil {
		return CaseDetail{}, fmt.Errorf("case %s: %w", c.Name, ctx.Err())
	}

	if cmd.ProcessState == nil {
		return CaseDetail{}, fmt.Errorf("run case %s: %w", c.Name, err)
	}

	detail := CaseDetail{
		Name:         c.Name,
		DurationMS:   duration.Milliseconds(),
		TimedOut:     errors.Is(caseCtx.Err(), context.DeadlineExceeded),
		AllowFailure: c.AllowFailure,
		LogPath:      r.rel(logPath),
	}

	if code := cmd.ProcessState.ExitCode(); code >= 0 {
		detail.ExitCode = &code
	}

	switch {
	case cmd.ProcessState.Success() && !detail.TimedOut:
		detail.Status = StatusPassed
	case c.AllowFailure:
		detail.Status = StatusSoftFailed
	default:
		detail.Status = StatusFailed
	}

	if detail.TimedOut {
		_, _ = fmt.Fprintf(logFile, "[case] timed out after %s\n", timeout)
	}

	r.logf("[case] %s finished in %d ms (exit %s)",
		c.Name, detail.DurationMS, formatExitCode(detail.ExitCode))

	slog.Info("Case finished",
		slog.String("case", c.Name),
		slog.String("status", string(detail.Status)),
	)

	return detail, nil
}

func (r *run) caseEnv(
	c Case,
	slug string,
	logPath string,
	artifactDir string,
	timeout time.Duration,
) []string {
	return []string{
		"STARRY_WORKSPACE_ROOT=" + r.workspace,
		"STARRY_RUN_ID=" + r.id,
		"STARRY_RUN_DIR=" + r.dir,
		"STARRY_CASE_NAME=" + c.Name,
		"STARRY_CASE_SLUG=" + slug,
		"STARRY_CASE_LOG_PATH=" + logPath,
		"STARRY_CASE_LOG_DIR=" + filepath.Dir(logPath),
		"STARRY_CASE_ARTIFACT_DIR=" + artifactDir,
		"STARRY_CASE_TIMEOUT_SECS=" + strconv.FormatInt(int64(timeout.Seconds()), 10),
	}
}

// writeErrorLog writes the error log if cases failed and removes a stale one
// otherwise.
func (r *run) writeErrorLog(summary *Summary) error {
	path := filepath.Join(r.dir, "error.log")

	if summary.Failed == 0 {
		err := os.Remove(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove stale error log: %w", err)
		}

		return nil
	}

	msg := fmt.Sprintf("%d cases failed. See %s for details.\n",
		summary.Failed, summary.LogFile)

	err := os.WriteFile(path, []byte(msg), 0o644) //nolint:gosec
	if err != nil {
		return fmt.Errorf("write error log: %w", err)
	}

	summary.ErrorLog = r.rel(path)

	return nil
}

func formatExitCode(code *int) string {
	if code == nil {
		return "none"
	}

	return strconv.Itoa(*code)
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
