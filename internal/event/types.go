package event

// PermissionRequiredData is published when a tool operation needs an
// interactive decision.
type PermissionRequiredData struct {
	ID        string         `json:"id"`
	Operation string         `json:"operation"`
	Details   map[string]any `json:"details,omitempty"`
	Title     string         `json:"title"`
}

// PermissionResolvedData is published once a decision has been made.
type PermissionResolvedData struct {
	ID      string `json:"id"`
	Granted bool   `json:"granted"`
}

// ToolStartedData is published when the dispatch loop begins executing a
// tool call.
type ToolStartedData struct {
	CallID string `json:"callID"`
	Tool   string `json:"tool"`
}

// ToolCompletedData is published after a tool call finishes, whether it
// succeeded or produced an error result.
type ToolCompletedData struct {
	CallID  string `json:"callID"`
	Tool    string `json:"tool"`
	IsError bool   `json:"isError"`
}

// TurnAppendedData is published when a turn is committed to a conversation.
type TurnAppendedData struct {
	Role string `json:"role"`
}

// FileEditedData is published when a file is created or modified, either by
// a tool or by an external process picked up by the workspace watcher.
type FileEditedData struct {
	File string `json:"file"`
}
