package search

// State is the lifecycle position of a Session query.
type State int32

const (
	StateIdle State = iota
	StateAuthenticating
	StateSubmitting
	StatePolling
	StateDownloading
	StateSucceeded
	StateFailed
	StateCancelled
)

var stateNames = [...]string{
	StateIdle:           "idle",
	StateAuthenticating: "authenticating",
	StateSubmitting:     "submitting",
	StatePolling:        "polling",
	StateDownloading:    "downloading",
	StateSucceeded:      "succeeded",
	StateFailed:         "failed",
	StateCancelled:      "cancelled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the query has finished.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}
