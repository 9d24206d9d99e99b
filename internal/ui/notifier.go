package ui

import (
	"fmt"
	"io"
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// WriterNotifier prints notifications as single lines.
type WriterNotifier struct {
	W io.Writer
}

// Success implements Notifier.
func (n WriterNotifier) Success(msg string) {
	_, _ = fmt.Fprintf(n.W, "✔ %s\n", msg)
}

// Error implements Notifier.
func (n WriterNotifier) Error(msg string) {
	_, _ = fmt.Fprintf(n.W, "✖ %s\n", msg)
}
