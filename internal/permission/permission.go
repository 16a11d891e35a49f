// Package permission provides permission control for side-effecting tool
// operations: a pure decision policy, and a channel that surfaces
// interactive confirmations to a callback, a console prompt, or a remote
// responder.
package permission

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Operation identifies the kind of side effect a tool wants to perform.
type Operation string

const (
	OpCreateFile Operation = "create_file"
	OpEditFile   Operation = "edit_file"
	OpDeleteFile Operation = "delete_file"
	OpRunCommand Operation = "run_command"
)

// Request describes one operation awaiting a decision. Immutable once
// created.
type Request struct {
	Operation Operation      `json:"operation"`
	Details   map[string]any `json:"details,omitempty"`
}

// Command returns the command string from the request details, if present.
func (r Request) Command() string {
	if cmd, ok := r.Details["command"].(string); ok {
		return cmd
	}
	return ""
}

// Fingerprint identifies a request by operation plus details. Requests with
// the same fingerprint within one dispatch round share a decision.
func (r Request) Fingerprint() string {
	data, _ := json.Marshal(struct {
		Operation Operation      `json:"operation"`
		Details   map[string]any `json:"details"`
	}{r.Operation, r.Details})
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Decision is the terminal outcome of a request.
type Decision string

const (
	Granted Decision = "granted"
	Denied  Decision = "denied"
)

// Verdict is the policy outcome for a request before any interaction.
type Verdict string

const (
	AutoGrant Verdict = "auto_grant"
	AutoDeny  Verdict = "auto_deny"
	Ask       Verdict = "ask"
)

// Options configures permission handling for an agent instance. It is
// constructed once at agent creation and passed explicitly; there is no
// ambient lookup during dispatch.
type Options struct {
	// YoloMode skips interactive confirmation for operations not otherwise
	// protected, subject to the allow and deny lists.
	YoloMode bool

	// YoloPrompt is displayed once when yolo mode is active.
	YoloPrompt string

	// CommandAllowlist holds command prefixes that auto-grant in yolo mode.
	CommandAllowlist []string

	// CommandDenylist holds command prefixes that always auto-deny in yolo
	// mode. Denylist matches win over allowlist matches.
	CommandDenylist []string

	// DeleteFileProtection forces confirmation for delete_file even in yolo
	// mode.
	DeleteFileProtection bool

	// Callback handles requests the policy could not settle. When nil, a
	// console prompt is used.
	Callback Callback
}

// DefaultOptions returns the default configuration: confirm everything,
// protect deletions.
func DefaultOptions() Options {
	return Options{
		DeleteFileProtection: true,
	}
}

// DeniedError is returned when an operation was denied, either by
// configuration or by the user.
type DeniedError struct {
	Operation Operation
	Message   string
}

func (e *DeniedError) Error() string {
	return e.Message
}

// IsDeniedError reports whether err is a permission denial.
func IsDeniedError(err error) bool {
	_, ok := err.(*DeniedError)
	return ok
}
