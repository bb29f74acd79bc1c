// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package suite runs a manifest of test case scripts sequentially and records
// their logs and a machine readable summary in the workspace.
//
// Manifests are located at "tests/<dir>/suite.toml" in the workspace. Each run
// gets its own directory "logs/<dir>/<timestamp>" with the suite log, one log
// per case and an artifact directory per case. The summary of the latest run
// is written to "logs/<dir>/last_run.json".
package suite
