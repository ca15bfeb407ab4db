// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jeranaias/comply-tui/internal/api"
	"github.com/jeranaias/comply-tui/internal/compliance"
	"github.com/jeranaias/comply-tui/internal/logging"
	"github.com/jeranaias/comply-tui/internal/model"
)

// DefaultMinPromptLength matches the backend's prompt validation.
const DefaultMinPromptLength = 5

// Service is the subset of the backend used by the orchestrator.
// *api.Client implements it.
type Service interface {
	GenerateContent(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error)
	CheckDocument(ctx context.Context, userID string, doc api.Upload) (*api.DocumentCheckResponse, error)
	RewriteContent(ctx context.Context, submissionID, violationText string) (*api.RewriteResponse, error)
}

// Config holds orchestrator options.
type Config struct {
	// MinPromptLength is the shortest prompt, in runes, sent to the backend.
	MinPromptLength int

	// UsePromptEnhancer is the initial enhancer setting for prompts.
	UsePromptEnhancer bool

	Logger logrus.FieldLogger
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator owns the request state machine for one conversation.
// It is safe for concurrent use.
type Orchestrator struct {
	svc  Service
	conv *model.Conversation
	log  logrus.FieldLogger

	minPromptLength int

	mu       sync.Mutex
	state    State
	enhancer bool
}

// New creates an orchestrator for conv.
func New(svc Service, conv *model.Conversation, cfg Config) *Orchestrator {
	if cfg.MinPromptLength <= 0 {
		cfg.MinPromptLength = DefaultMinPromptLength
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if conv == nil {
		conv = model.NewConversation()
	}
	return &Orchestrator{
		svc:             svc,
		conv:            conv,
		log:             cfg.Logger.WithField("component", "orchestrator"),
		minPromptLength: cfg.MinPromptLength,
		enhancer:        cfg.UsePromptEnhancer,
	}
}

// Conversation returns the conversation log.
func (o *Orchestrator) Conversation() *model.Conversation {
	return o.conv
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Busy reports whether an operation is in flight.
func (o *Orchestrator) Busy() bool {
	return o.State() != Idle
}

// PromptEnhancer reports whether prompts are sent with the enhancer enabled.
func (o *Orchestrator) PromptEnhancer() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.enhancer
}

// SetPromptEnhancer changes the enhancer setting for later prompts.
func (o *Orchestrator) SetPromptEnhancer(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enhancer = enabled
}

// Clear empties the conversation. It fails while an operation is in flight.
func (o *Orchestrator) Clear() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Idle {
		return ErrBusy
	}
	o.conv.Clear()
	return nil
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// SubmitPrompt starts content generation for text.
func (o *Orchestrator) SubmitPrompt(id Identity, text string) (*Operation, error) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return nil, ErrEmptyInput
	}
	if err := id.validate(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Idle {
		return nil, ErrBusy
	}
	if n := len([]rune(prompt)); n < o.minPromptLength {
		o.conv.Append(model.NewErrorMessage(fmt.Sprintf(
			"Prompt must be at least %d characters long.", o.minPromptLength)))
		return nil, ErrPromptTooShort
	}
	return o.submitPromptLocked(id, prompt), nil
}

// SubmitDocument starts a compliance check of doc.
func (o *Orchestrator) SubmitDocument(id Identity, doc api.Upload) (*Operation, error) {
	filename := strings.TrimSpace(doc.Filename)
	if filename == "" || len(doc.Data) == 0 {
		return nil, ErrEmptyInput
	}
	if err := id.validate(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Idle {
		return nil, ErrBusy
	}

	o.conv.Append(model.NewUploadMessage(filename))
	return o.beginLocked(Analyzing, func(ctx context.Context) (*model.Message, error) {
		resp, err := o.svc.CheckDocument(ctx, id.UserID, doc)
		if err != nil {
			return nil, err
		}
		return model.NewResultMessage(model.KindReport, resp.Report(filename), resp.Analysis()), nil
	}), nil
}

// Regenerate replays the prompt that produced the system turn at
// turnIndex. It returns ErrNotRegenerable without side effects unless that
// turn is a resolved system turn directly preceded by a user prompt.
func (o *Orchestrator) Regenerate(id Identity, turnIndex int) (*Operation, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Idle {
		return nil, ErrBusy
	}

	target, ok := o.conv.At(turnIndex)
	if !ok || target.Role != model.RoleSystem || target.Pending {
		return nil, ErrNotRegenerable
	}
	prev, ok := o.conv.TurnBefore(turnIndex)
	if !ok || !prev.IsPrompt() {
		return nil, ErrNotRegenerable
	}

	o.log.WithFields(logrus.Fields{"op": "regenerate", "turn": turnIndex}).Debug("replaying prompt")
	return o.submitPromptLocked(id, prev.Content), nil
}

// RegenerableIndex returns the index of the latest system turn that
// Regenerate accepts, or -1.
func (o *Orchestrator) RegenerableIndex() int {
	msgs := o.conv.Messages()
	for i := len(msgs) - 1; i > 0; i-- {
		if msgs[i].Role == model.RoleSystem && !msgs[i].Pending && msgs[i-1].IsPrompt() {
			return i
		}
	}
	return -1
}

// SubmitRewrite asks for a compliant version of violation violationIndex
// (zero-based) of the analysis at turnIndex.
func (o *Orchestrator) SubmitRewrite(id Identity, turnIndex, violationIndex int) (*Operation, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Idle {
		return nil, ErrBusy
	}

	target, ok := o.conv.At(turnIndex)
	if !ok || target.Role != model.RoleSystem || !target.Analysis.HasSubmission() {
		return nil, ErrNotRewritable
	}
	violations := target.Violations()
	if violationIndex < 0 || violationIndex >= len(violations) {
		return nil, ErrNotRewritable
	}
	submissionID := target.Analysis.SubmissionID
	passage := violations[violationIndex].ChunkText

	o.conv.Append(model.NewUserMessage(model.KindRewriteRequest,
		fmt.Sprintf("Rewrite violation %d", violationIndex+1)))
	return o.beginLocked(Rewriting, func(ctx context.Context) (*model.Message, error) {
		resp, err := o.svc.RewriteContent(ctx, submissionID, passage)
		if err != nil {
			return nil, err
		}
		return model.NewResultMessage(model.KindRewrite, compliance.RewriteText(resp.CompliantText), nil), nil
	}), nil
}

func (o *Orchestrator) submitPromptLocked(id Identity, prompt string) *Operation {
	req := api.GenerateRequest{
		Prompt:            prompt,
		UsePromptEnhancer: o.enhancer,
		UserID:            id.UserID,
	}
	o.conv.Append(model.NewUserMessage(model.KindPrompt, prompt))
	return o.beginLocked(Generating, func(ctx context.Context) (*model.Message, error) {
		resp, err := o.svc.GenerateContent(ctx, req)
		if err != nil {
			return nil, err
		}
		return model.NewResultMessage(model.KindResult, resp.FinalContent, resp.Analysis()), nil
	})
}

// beginLocked leaves Idle, appends the placeholder and returns the
// operation that will settle it. o.mu must be held.
func (o *Orchestrator) beginLocked(state State, call func(context.Context) (*model.Message, error)) *Operation {
	o.state = state
	op := &Operation{
		o:         o,
		state:     state,
		requestID: uuid.NewString(),
		call:      call,
		log: o.log.WithFields(logrus.Fields{
			"op":    state.String(),
			"turns": o.conv.Len(),
		}),
	}
	op.log = op.log.WithField("request_id", op.requestID)

	if _, err := o.conv.AppendPending(state.BusyLabel()); err != nil {
		op.log.WithError(err).Warn("placeholder not added")
	}
	op.log.Debug("operation started")
	return op
}

// settle records the outcome of op and returns to Idle.
func (o *Orchestrator) settle(op *Operation, msg *model.Message) {
	msg.RequestID = op.requestID

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conv.ReplacePending(msg) < 0 {
		o.conv.Append(msg)
	}
	o.state = Idle
}

// =============================================================================
// OPERATION
// =============================================================================

// Operation is a started request awaiting its backend call.
type Operation struct {
	o         *Orchestrator
	state     State
	requestID string
	call      func(context.Context) (*model.Message, error)
	log       logrus.FieldLogger
	ran       atomic.Bool
	err       error
}

// State returns the state the operation put the orchestrator in.
func (op *Operation) State() State {
	return op.state
}

// RequestID returns the correlation ID sent with the request.
func (op *Operation) RequestID() string {
	return op.requestID
}

// Err returns the backend error behind an error turn. It is only
// meaningful after Run has returned.
func (op *Operation) Err() error {
	return op.err
}

// Run performs the backend call and appends its outcome: the result turn on
// success or an error turn on failure. It returns the appended turn. Errors
// never escape Run. Calls after the first return nil.
func (op *Operation) Run(ctx context.Context) *model.Message {
	if !op.ran.CompareAndSwap(false, true) {
		return nil
	}

	start := time.Now()
	var msg *model.Message
	defer func() {
		if msg == nil {
			msg = model.NewErrorMessage("The request was aborted.")
		}
		op.o.settle(op, msg)
	}()

	result, err := op.call(api.WithRequestID(ctx, op.requestID))
	log := op.log.WithField("duration", time.Since(start).Round(time.Millisecond).String())
	if err != nil {
		log.WithError(err).Warn("operation failed")
		op.err = err
		msg = model.NewErrorMessage(err.Error())
		return msg
	}

	log.WithField("violations", result.Overlay.HasViolations).Info("operation completed")
	msg = result
	return msg
}
