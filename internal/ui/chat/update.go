// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/comply-tui/internal/orchestrator"
)

// noticeTimeout is how long a status bar notice stays visible.
const noticeTimeout = 5 * time.Second

// =============================================================================
// COMMAND FACTORIES
// =============================================================================

// RunOperationCmd performs op off the UI goroutine. The orchestrator appends
// the outcome itself; the message only tells the model to redraw.
func RunOperationCmd(ctx context.Context, op *orchestrator.Operation) tea.Cmd {
	return func() tea.Msg {
		msg := op.Run(ctx)
		return OperationDoneMsg{RequestID: op.RequestID(), Message: msg}
	}
}

// NoticeCmd returns a command that shows text in the status bar.
func NoticeCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Text: text, IsError: isError}
	}
}

func expireNoticeCmd(seq int) tea.Cmd {
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
