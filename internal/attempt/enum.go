package attempt

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	// statusSubmitted is a legacy spelling of the terminal state still found
	// in imported rows. New code never writes it.
	statusSubmitted Status = "submitted"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == statusSubmitted
}

// TerminalStatuses lists every stored value that means "submitted".
func TerminalStatuses() []Status {
	return []Status{StatusCompleted, statusSubmitted}
}

type Outcome string

const (
	OutcomeDenied              Outcome = "denied"
	OutcomeStartImmediately    Outcome = "start_immediately"
	OutcomeRequireConfirmation Outcome = "require_confirmation"
)
