// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPendingExists is returned when a placeholder is appended directly after
// another placeholder.
var ErrPendingExists = errors.New("conversation already ends with a pending turn")

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered turn log of one session. It is safe for
// concurrent use.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu        sync.RWMutex
	messages  []*Message
	updatedAt time.Time
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        "conv_" + uuid.NewString(),
		CreatedAt: now,
		updatedAt: now,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds msg to the end of the log and returns its index. Placeholders
// go through AppendPending; the Pending flag of msg is cleared here.
func (c *Conversation) Append(msg *Message) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg.Pending = false
	c.messages = append(c.messages, msg)
	c.updatedAt = time.Now()
	return len(c.messages) - 1
}

// AppendPending adds a placeholder with the given label. It fails if the log
// already ends with a placeholder.
func (c *Conversation) AppendPending(label string) (*Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := len(c.messages); n > 0 && c.messages[n-1].Pending {
		return nil, ErrPendingExists
	}
	msg := NewPendingMessage(label)
	c.messages = append(c.messages, msg)
	c.updatedAt = time.Now()
	return msg, nil
}

// ReplacePending swaps the trailing placeholder for msg and returns its
// index. It returns -1 and leaves the log untouched when the last turn is
// not a placeholder.
func (c *Conversation) ReplacePending(msg *Message) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.messages)
	if n == 0 || !c.messages[n-1].Pending {
		return -1
	}
	msg.Pending = false
	c.messages[n-1] = msg
	c.updatedAt = time.Now()
	return n - 1
}

// At returns the turn at index.
func (c *Conversation) At(index int) (*Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index < 0 || index >= len(c.messages) {
		return nil, false
	}
	return c.messages[index], true
}

// TurnBefore returns the turn at index-1.
func (c *Conversation) TurnBefore(index int) (*Message, bool) {
	return c.At(index - 1)
}

// Last returns the most recent turn, or nil if the log is empty.
func (c *Conversation) Last() *Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// LastIndexOf returns the index of the most recent turn matching fn, or -1.
func (c *Conversation) LastIndexOf(fn func(*Message) bool) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.messages) - 1; i >= 0; i-- {
		if fn(c.messages[i]) {
			return i
		}
	}
	return -1
}

// Messages returns a copy of the turn list.
func (c *Conversation) Messages() []*Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// IsEmpty returns true if there are no turns.
func (c *Conversation) IsEmpty() bool {
	return c.Len() == 0
}

// UpdatedAt returns the time of the last change.
func (c *Conversation) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Clear removes all turns.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = nil
	c.updatedAt = time.Now()
}

// Title returns a preview of the first user turn, or a default title.
func (c *Conversation) Title() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, msg := range c.messages {
		if msg.Role == RoleUser {
			return msg.Preview(50)
		}
	}
	return "New Session"
}
