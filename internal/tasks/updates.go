package tasks

// Phase identifies the stage of the import a progress update belongs to.
type Phase string

const (
	PhaseFetch Phase = "fetch"
	PhaseMatch Phase = "match"
	PhaseAdd   Phase = "add"
	PhaseDone  Phase = "done"
)

// ProgressUpdate is sent over the engine's progress channel as work
// advances. Current and Total are item counts within the phase; Total is
// zero when unknown.
type ProgressUpdate struct {
	Phase   Phase
	Message string
	Current int
	Total   int
	Err     error
}

// sendProgress delivers an update without blocking; updates are dropped
// when the consumer is not keeping up.
func (e *Engine) sendProgress(update ProgressUpdate) {
	if e.Progress == nil {
		return
	}

	select {
	case e.Progress <- update:
	default:
	}
}
