package service

// State is a step of a submission attempt.
//
//	Idle -> Validating -> ValidationFailed
//	                   -> WritingProject -> ProjectWriteFailed
//	                                     -> WritingFounders -> FounderWriteFailed
//	                                                        -> Succeeded
type State int

const (
	StateIdle State = iota
	StateValidating
	StateValidationFailed
	StateWritingProject
	StateProjectWriteFailed
	StateWritingFounders
	StateFounderWriteFailed
	StateSucceeded
)

var stateNames = map[State]string{
	StateIdle:               "idle",
	StateValidating:         "validating",
	StateValidationFailed:   "validation_failed",
	StateWritingProject:     "writing_project",
	StateProjectWriteFailed: "project_write_failed",
	StateWritingFounders:    "writing_founders",
	StateFounderWriteFailed: "founder_write_failed",
	StateSucceeded:          "succeeded",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	switch s {
	case StateValidationFailed, StateProjectWriteFailed, StateFounderWriteFailed, StateSucceeded:
		return true
	}
	return false
}
