// SPDX-License-Identifier: AGPL-3.0-or-later

package checks

// Status is the outcome of one check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Result is one check's outcome, stored as checks/<id>.json.
type Result struct {
	Check    string `json:"check"`
	Status   Status `json:"status"`
	ExitCode int    `json:"exit_code"`
	Note     string `json:"note,omitempty"`
}

// LastRun summarizes the most recent run, stored as last-run.json.
type LastRun struct {
	Status string   `json:"status"` // "pass" or "fail"
	Checks []string `json:"checks"` // in run order
	Failed []string `json:"failed"`
}

func pass(id, note string) Result { return Result{Check: id, Status: StatusPass, Note: note} }
func skip(id, note string) Result { return Result{Check: id, Status: StatusSkip, Note: note} }
func fail(id, note string) Result { return Result{Check: id, Status: StatusFail, ExitCode: 1, Note: note} }
