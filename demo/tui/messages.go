package tui

// Messages for the tea program

// SessionReadyMsg is sent once the health check passed and the demo script
// exists
type SessionReadyMsg struct {
	Script *ScriptView
	Err    error
}

// ChatReplyMsg is sent when the assistant answers an edit prompt
type ChatReplyMsg struct {
	Response *ChatResponse
	Err      error
}
