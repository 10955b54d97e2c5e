package messaging

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/tui/theme"
)

// MessageType represents different message types for status display
type MessageType int

// Message type constants, in the console's severity order
const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// StatusManager manages the status bar message
type StatusManager interface {
	Sync(message string, msgType MessageType, at time.Time)
	RenderMessage() string
}

// StatusManagerImpl implements the StatusManager interface
type StatusManagerImpl struct {
	statusMessage string
	messageType   MessageType
	messageTimer  time.Time
}

// NewStatusManager creates a new status manager instance
func NewStatusManager() StatusManager {
	return &StatusManagerImpl{
		statusMessage: "",
		messageType:   MessageInfo,
	}
}

// Sync copies a message stamped at at. A message that was already shown is
// left alone.
func (sm *StatusManagerImpl) Sync(message string, msgType MessageType, at time.Time) {
	if message == sm.statusMessage && msgType == sm.messageType && at.Equal(sm.messageTimer) {
		return
	}
	sm.statusMessage = message
	sm.messageType = msgType
	sm.messageTimer = at

	logrus.Debugf("StatusManager: message='%s', type=%d", message, msgType)
}

// RenderMessage renders the current status message with appropriate styling
func (sm *StatusManagerImpl) RenderMessage() string {
	if sm.statusMessage == "" {
		return ""
	}

	messageColor := theme.GetMessageColor(int(sm.messageType))
	messageIcon := theme.GetMessageIcon(int(sm.messageType))

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(messageColor)).
		Bold(true)

	stamp := ""
	if !sm.messageTimer.IsZero() {
		stamp = sm.messageTimer.Format("15:04:05 ")
	}
	return messageStyle.Render(fmt.Sprintf("%s%s %s", stamp, messageIcon, sm.statusMessage))
}
