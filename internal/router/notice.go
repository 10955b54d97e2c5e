package router

import "fmt"

// Level is the severity of a notice
type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "info"
}

// Notice is a status bar message produced by a command or its result
type Notice struct {
	Level Level
	Text  string
	Err   error
}

// Empty reports whether there is nothing to show
func (n Notice) Empty() bool { return n.Text == "" }

func errNotice(what string, err error) Notice {
	return Notice{Level: Error, Text: fmt.Sprintf("%s: %v", what, err), Err: err}
}
