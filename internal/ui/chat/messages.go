// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/comply-tui/internal/model"
)

// =============================================================================
// OPERATION MESSAGES
// =============================================================================

// OperationDoneMsg signals that a backend request has settled and its turn
// is in the conversation.
type OperationDoneMsg struct {
	RequestID string

	// Message is the appended turn: a result or an error.
	Message *model.Message
}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// NoticeMsg shows a transient line in the status bar.
type NoticeMsg struct {
	Text    string
	IsError bool
}

// noticeExpiredMsg clears the notice with the same sequence number.
type noticeExpiredMsg struct {
	seq int
}
