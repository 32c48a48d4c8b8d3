package messages

import "duopane/internal/transaction"

type ErrorMsg struct {
	Err error
}

// RefreshMsg is sent when a pane was rebuilt outside the UI loop.
type RefreshMsg struct{}

type ProgressMsg struct {
	Progress transaction.Progress
}

type OperationDoneMsg struct {
	Description string
	Err         error
}

type OpenFinishedMsg struct {
	Path string
	Err  error
}
