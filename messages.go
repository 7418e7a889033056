package main

// SessionLoadedMsg carries the result of (re)loading a session file.
type SessionLoadedMsg struct {
	Path    string
	Session *Session
	Err     error
}

// DiagnosticMsg carries an internal diagnostic event for the debug tab.
type DiagnosticMsg struct {
	Label   string
	Message string
}
