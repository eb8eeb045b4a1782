package engine

type ReachResult string

const (
	ReachUnknown          ReachResult = "unknown"
	ReachLocked           ReachResult = "locked"
	ReachAlreadyCompleted ReachResult = "already_completed"
	ReachAvailable        ReachResult = "available"
	ReachRetry            ReachResult = "retry"
)

// Message is the trainee-facing text shown when a checkpoint is reached.
func (r ReachResult) Message() string {
	switch r {
	case ReachLocked:
		return "Complete o checkpoint anterior para desbloquear este."
	case ReachAlreadyCompleted:
		return "Você já completou este checkpoint!"
	case ReachRetry:
		return "Tente novamente! Revise o conteúdo com atenção."
	case ReachAvailable:
		return ""
	default:
		return "Checkpoint não encontrado."
	}
}

// Interactable reports whether the question dialog should open.
func (r ReachResult) Interactable() bool {
	return r == ReachAvailable || r == ReachRetry
}

// Reach decides what happens when the trainee steps onto a checkpoint.
func Reach(state State, checkpointID int) ReachResult {
	cp, ok := state.Checkpoint(checkpointID)
	if !ok {
		return ReachUnknown
	}
	switch cp.Status {
	case StatusLocked:
		return ReachLocked
	case StatusCompleted:
		return ReachAlreadyCompleted
	case StatusFailed:
		return ReachRetry
	default:
		return ReachAvailable
	}
}
