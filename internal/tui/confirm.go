package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Confirmer answers view confirmation prompts with the answer the user gave
// in the last confirmation form. An answer is used once; with nothing armed
// every prompt is declined.
type Confirmer struct {
	mu     sync.Mutex
	answer bool
}

// Arm records the answer for the next prompt.
func (c *Confirmer) Arm(answer bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answer = answer
}

// Confirm consumes the armed answer.
func (c *Confirmer) Confirm(string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	answer := c.answer
	c.answer = false
	return answer
}

// SignedOutMsg tells the model the session ended underneath it.
type SignedOutMsg struct{}

// Redirect delivers the client's sign-in redirect to a running program.
type Redirect struct {
	mu sync.Mutex
	p  *tea.Program
}

// Attach sets the program redirects are sent to.
func (r *Redirect) Attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

// RedirectToLogin switches the program to the sign-in screen.
func (r *Redirect) RedirectToLogin() {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		go p.Send(SignedOutMsg{})
	}
}
