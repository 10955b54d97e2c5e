package dialogs

// ModalKind is the flavour of a modal notification
type ModalKind int

const (
	ModalInfo ModalKind = iota
	ModalError
	ModalConfirm
)

// Modal is a blocking notification. Confirm modals carry the command to
// dispatch when accepted.
type Modal struct {
	Kind    ModalKind
	Title   string
	Text    string
	Command string
	Arg     string
}

// Modals is a stack of pending notifications; the top one has focus
type Modals struct {
	stack []Modal
}

// Push shows m above any pending modal
func (s *Modals) Push(m Modal) { s.stack = append(s.stack, m) }

// Top returns the focused modal
func (s *Modals) Top() (Modal, bool) {
	if len(s.stack) == 0 {
		return Modal{}, false
	}
	return s.stack[len(s.stack)-1], true
}

// Pop dismisses the focused modal and returns it
func (s *Modals) Pop() (Modal, bool) {
	m, ok := s.Top()
	if ok {
		s.stack = s.stack[:len(s.stack)-1]
	}
	return m, ok
}

// Len counts pending modals
func (s *Modals) Len() int { return len(s.stack) }
