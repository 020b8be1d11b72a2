package views

import (
	"context"
	"strings"
	"sync"

	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/models"
	"finadvisor/internal/uuid"
)

// Greeting opens every conversation.
const Greeting = "Hi! I'm your financial advisor. Ask me about your spending, budgets or goals."

// Chat is the advisor conversation. The history lives only as long as the
// view; nothing is persisted.
type Chat struct {
	base
	api      ChatAPI
	messages Resource[[]models.ChatMessage]

	// sendMu serializes Send so replies stay in question order.
	sendMu sync.Mutex
}

// NewChat creates a conversation seeded with the greeting.
func NewChat(a ChatAPI, env *Env) *Chat {
	v := &Chat{base: newBase(env), api: a}
	v.append(models.ChatMessage{Type: models.ChatRoleBot, Content: Greeting})
	return v
}

// Send appends the user's message right away, asks the advisor, and appends
// the reply. On failure a bot error line is appended instead; both the
// question and the error line are then left out of later history.
func (v *Chat) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	v.sendMu.Lock()
	defer v.sendMu.Unlock()

	history := v.Messages()
	question := v.append(models.ChatMessage{Type: models.ChatRoleUser, Content: text})

	resp, err := v.api.Chat(ctx, text, history)
	if err != nil {
		v.markFailed(question)
		v.append(models.ChatMessage{
			Type:    models.ChatRoleBot,
			Content: "Sorry, I couldn't answer that: " + apperrors.UserMessage(err),
			Failed:  true,
		})
		v.env.Notices.Error(err)
		return err
	}

	v.append(models.ChatMessage{Type: models.ChatRoleBot, Content: resp.Response})
	return nil
}

// Messages returns the conversation so far.
func (v *Chat) Messages() []models.ChatMessage {
	msgs := v.messages.Snapshot().Data
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

// Reset clears the conversation back to the greeting.
func (v *Chat) Reset() {
	v.messages.Update(func([]models.ChatMessage) []models.ChatMessage { return nil })
	v.append(models.ChatMessage{Type: models.ChatRoleBot, Content: Greeting})
}

func (v *Chat) append(m models.ChatMessage) string {
	m.ID = uuid.New()
	m.Timestamp = v.env.Now()
	v.messages.Update(func(msgs []models.ChatMessage) []models.ChatMessage {
		return append(msgs, m)
	})
	return m.ID
}

func (v *Chat) markFailed(id string) {
	v.messages.Update(func(msgs []models.ChatMessage) []models.ChatMessage {
		for i := range msgs {
			if msgs[i].ID == id {
				msgs[i].Failed = true
			}
		}
		return msgs
	})
}
