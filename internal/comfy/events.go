package comfy

import "encoding/json"

// frame is the envelope of every JSON message on the progress channel.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	frameProgress        = "progress"
	frameExecuting       = "executing"
	frameExecutionCached = "execution_cached"
)

// ProgressEvent reports sampler step progress for the running job.
type ProgressEvent struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

// ExecutingEvent reports the node currently executing. A nil Node for our
// prompt id is the backend's completion signal.
type ExecutingEvent struct {
	Node     *string `json:"node"`
	PromptID string  `json:"prompt_id"`
}

// CachedEvent lists nodes the backend skipped because their outputs were cached.
type CachedEvent struct {
	Nodes    []string `json:"nodes"`
	PromptID string   `json:"prompt_id"`
}

// ProgressFunc receives decoded progress-channel events. Exactly one of the
// arguments is non-nil per call. Unknown frame types are never surfaced.
type ProgressFunc func(progress *ProgressEvent, executing *ExecutingEvent, cached *CachedEvent)
