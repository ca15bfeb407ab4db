// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/comply-tui/internal/api"
	"github.com/jeranaias/comply-tui/internal/compliance"
	"github.com/jeranaias/comply-tui/internal/document"
	"github.com/jeranaias/comply-tui/internal/model"
)

var user = Identity{UserID: "00000000-0000-0000-0000-000000000001"}

// fakeService records calls and returns canned responses.
type fakeService struct {
	generateCalls atomic.Int32
	checkCalls    atomic.Int32
	rewriteCalls  atomic.Int32

	mu          sync.Mutex
	lastGen     api.GenerateRequest
	lastRewrite api.RewriteRequest
	requestIDs  []string

	// gate, when set, blocks every call until it is closed.
	gate chan struct{}
	err  error

	generate *api.GenerateResponse
	check    *api.DocumentCheckResponse
	rewrite  *api.RewriteResponse
}

func (f *fakeService) wait(ctx context.Context) {
	f.mu.Lock()
	f.requestIDs = append(f.requestIDs, api.RequestIDFrom(ctx))
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeService) GenerateContent(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
	f.generateCalls.Add(1)
	f.mu.Lock()
	f.lastGen = req
	f.mu.Unlock()
	f.wait(ctx)
	if f.err != nil {
		return nil, f.err
	}
	if f.generate != nil {
		return f.generate, nil
	}
	return &api.GenerateResponse{SubmissionID: "sub-gen", FinalContent: "Result for " + req.Prompt}, nil
}

func (f *fakeService) CheckDocument(ctx context.Context, userID string, doc api.Upload) (*api.DocumentCheckResponse, error) {
	f.checkCalls.Add(1)
	f.wait(ctx)
	if f.err != nil {
		return nil, f.err
	}
	if f.check != nil {
		return f.check, nil
	}
	return &api.DocumentCheckResponse{SubmissionID: "sub-doc", ComplianceStatus: compliance.StatusCompliant}, nil
}

func (f *fakeService) RewriteContent(ctx context.Context, submissionID, violationText string) (*api.RewriteResponse, error) {
	f.rewriteCalls.Add(1)
	f.mu.Lock()
	f.lastRewrite = api.RewriteRequest{SubmissionID: submissionID, ViolationText: violationText}
	f.mu.Unlock()
	f.wait(ctx)
	if f.err != nil {
		return nil, f.err
	}
	if f.rewrite != nil {
		return f.rewrite, nil
	}
	return &api.RewriteResponse{CompliantText: "Safe text."}, nil
}

func (f *fakeService) totalCalls() int32 {
	return f.generateCalls.Load() + f.checkCalls.Load() + f.rewriteCalls.Load()
}

func newTestOrchestrator() (*Orchestrator, *fakeService) {
	svc := &fakeService{}
	return New(svc, model.NewConversation(), Config{}), svc
}

func doc() api.Upload {
	return api.Upload{Filename: "policy.pdf", Data: []byte("%PDF")}
}

// =============================================================================
// PROMPT TESTS
// =============================================================================

func TestSubmitPrompt_AppendsUserThenSystem(t *testing.T) {
	o, svc := newTestOrchestrator()
	svc.generate = &api.GenerateResponse{
		SubmissionID:     "sub-1",
		FinalContent:     "**Title**\n\nBody text.",
		ComplianceStatus: compliance.StatusViolations,
		RulesTriggered: []compliance.RuleTrigger{
			{RuleID: "a", Status: compliance.RuleViolated},
			{RuleID: "b", Status: compliance.RuleViolated},
			{RuleID: "c", Status: compliance.RuleTriggered},
		},
	}

	op, err := o.SubmitPrompt(user, "x is a prompt")
	require.NoError(t, err)
	assert.Equal(t, Generating, o.State())

	msgs := o.Conversation().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "x is a prompt", msgs[0].Content)
	assert.True(t, msgs[1].Pending)
	assert.Equal(t, "Generating content...", msgs[1].Content)

	result := op.Run(context.Background())
	require.NotNil(t, result)
	assert.Equal(t, Idle, o.State())

	msgs = o.Conversation().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Same(t, result, msgs[1])
	assert.Equal(t, model.RoleSystem, result.Role)
	assert.False(t, result.Pending)
	assert.Equal(t, document.Document{
		document.Heading{Text: "Title"},
		document.Paragraph{Spans: []document.Span{{Text: "Body text."}}},
	}, result.Blocks)
	assert.Len(t, result.Overlay.Violated, 2)
	assert.True(t, result.Overlay.HasViolations)
	assert.Equal(t, "sub-1", result.Analysis.SubmissionID)
	assert.Equal(t, op.RequestID(), result.RequestID)

	assert.Equal(t, "x is a prompt", svc.lastGen.Prompt)
	assert.Equal(t, user.UserID, svc.lastGen.UserID)
	assert.Equal(t, []string{op.RequestID()}, svc.requestIDs)
}

func TestSubmitPrompt_EmptyInputHasNoSideEffect(t *testing.T) {
	o, svc := newTestOrchestrator()

	for _, text := range []string{"", "   ", "\n\t"} {
		op, err := o.SubmitPrompt(user, text)
		assert.Nil(t, op)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Zero(t, o.Conversation().Len())
	assert.Zero(t, svc.totalCalls())
	assert.Equal(t, Idle, o.State())
}

func TestSubmitPrompt_TooShortAppendsErrorTurn(t *testing.T) {
	o, svc := newTestOrchestrator()

	op, err := o.SubmitPrompt(user, "hey")
	assert.Nil(t, op)
	assert.ErrorIs(t, err, ErrPromptTooShort)

	msgs := o.Conversation().Messages()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsError)
	assert.Equal(t, "Error: Prompt must be at least 5 characters long.", msgs[0].Content)
	assert.Zero(t, svc.totalCalls())
	assert.Equal(t, Idle, o.State())
}

func TestSubmitPrompt_RequiresIdentity(t *testing.T) {
	o, _ := newTestOrchestrator()
	_, err := o.SubmitPrompt(Identity{}, "valid prompt")
	assert.ErrorIs(t, err, ErrMissingIdentity)
	assert.Zero(t, o.Conversation().Len())
}

func TestSubmitPrompt_UsesEnhancerSetting(t *testing.T) {
	o, svc := newTestOrchestrator()
	o.SetPromptEnhancer(true)

	op, err := o.SubmitPrompt(user, "hello world")
	require.NoError(t, err)
	op.Run(context.Background())

	assert.True(t, svc.lastGen.UsePromptEnhancer)
	assert.True(t, o.PromptEnhancer())
}

// =============================================================================
// SINGLE-FLIGHT TESTS
// =============================================================================

func TestSingleFlight_RejectsWhileBusy(t *testing.T) {
	o, svc := newTestOrchestrator()
	svc.gate = make(chan struct{})

	op, err := o.SubmitPrompt(user, "first prompt")
	require.NoError(t, err)

	done := make(chan *model.Message)
	go func() { done <- op.Run(context.Background()) }()

	before := o.Conversation().Len()
	_, err = o.SubmitPrompt(user, "second prompt")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = o.SubmitDocument(user, doc())
	assert.ErrorIs(t, err, ErrBusy)
	_, err = o.Regenerate(user, 1)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = o.SubmitRewrite(user, 1, 0)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, o.Clear(), ErrBusy)
	_, err = o.SubmitPrompt(user, "hi")
	assert.ErrorIs(t, err, ErrBusy)

	assert.Equal(t, before, o.Conversation().Len())

	close(svc.gate)
	<-done

	assert.Equal(t, int32(1), svc.totalCalls())
	assert.Equal(t, Idle, o.State())
	assert.Equal(t, 2, o.Conversation().Len())
}

func TestSingleFlight_ConcurrentSubmissions(t *testing.T) {
	o, svc := newTestOrchestrator()
	svc.gate = make(chan struct{})

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ops []*Operation
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			op, err := o.SubmitPrompt(user, "concurrent prompt")
			if err == nil {
				mu.Lock()
				ops = append(ops, op)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, ops, 1)
	assert.Equal(t, 2, o.Conversation().Len())

	close(svc.gate)
	ops[0].Run(context.Background())
	assert.Equal(t, int32(1), svc.generateCalls.Load())
}

func TestOperation_RunOnce(t *testing.T) {
	o, svc := newTestOrchestrator()
	op, err := o.SubmitPrompt(user, "hello world")
	require.NoError(t, err)

	assert.NotNil(t, op.Run(context.Background()))
	assert.Nil(t, op.Run(context.Background()))
	assert.Equal(t, int32(1), svc.generateCalls.Load())
	assert.Equal(t, 2, o.Conversation().Len())
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestRun_ErrorBecomesErrorTurn(t *testing.T) {
	o, svc := newTestOrchestrator()
	svc.err = &api.ClientError{Type: api.ErrTypeServer, Message: "**boom** failure", Status: 500}

	op, err := o.SubmitPrompt(user, "hello world")
	require.NoError(t, err)
	result := op.Run(context.Background())

	assert.True(t, result.IsError)
	assert.Equal(t, "Error: **boom** failure", result.Content)
	assert.ErrorIs(t, op.Err(), svc.err)
	assert.Nil(t, result.Analysis)
	assert.Empty(t, result.Blocks)
	assert.Equal(t, Idle, o.State())
	assert.Equal(t, 2, o.Conversation().Len())

	svc.err = nil
	op, err = o.SubmitPrompt(user, "hello again")
	require.NoError(t, err)
	op.Run(context.Background())
	assert.Equal(t, 4, o.Conversation().Len())
}

func TestRun_PanicStillReturnsToIdle(t *testing.T) {
	o := New(panicService{&fakeService{}}, nil, Config{})
	op, err := o.SubmitPrompt(user, "hello world")
	require.NoError(t, err)

	assert.Panics(t, func() { op.Run(context.Background()) })

	assert.Equal(t, Idle, o.State())
	last := o.Conversation().Last()
	assert.True(t, last.IsError)
	assert.False(t, last.Pending)
}

func TestRun_CancelledContextSettlesAsError(t *testing.T) {
	o := New(blockingService{&fakeService{}}, nil, Config{})
	op, err := o.SubmitPrompt(user, "hello world")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := op.Run(ctx)

	assert.True(t, result.IsError)
	assert.ErrorIs(t, op.Err(), context.Canceled)
	assert.Equal(t, Idle, o.State())
	assert.Equal(t, 2, o.Conversation().Len())
	assert.False(t, o.Conversation().Last().Pending)
}

// blockingService answers only when the caller gives up.
type blockingService struct{ *fakeService }

func (blockingService) GenerateContent(ctx context.Context, _ api.GenerateRequest) (*api.GenerateResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type panicService struct{ *fakeService }

func (panicService) GenerateContent(context.Context, api.GenerateRequest) (*api.GenerateResponse, error) {
	panic("backend exploded")
}

// =============================================================================
// DOCUMENT TESTS
// =============================================================================

func TestSubmitDocument(t *testing.T) {
	o, svc := newTestOrchestrator()
	page := 4
	svc.check = &api.DocumentCheckResponse{
		SubmissionID:     "sub-doc",
		ComplianceStatus: compliance.StatusViolations,
		Violations: []compliance.Violation{{
			ChunkText:     "Guaranteed returns of 12%",
			ViolatedRules: []compliance.RuleTrigger{{RuleID: "r1", RuleText: "No guarantees", Status: compliance.RuleViolated}},
			PageNumber:    &page,
		}},
		RulesTriggered: []compliance.RuleTrigger{{RuleID: "r1", Status: compliance.RuleViolated}},
	}

	op, err := o.SubmitDocument(user, doc())
	require.NoError(t, err)
	assert.Equal(t, Analyzing, o.State())

	first, _ := o.Conversation().At(0)
	assert.Equal(t, "Uploaded document: policy.pdf", first.Content)
	assert.Equal(t, model.KindUpload, first.Kind)

	result := op.Run(context.Background())
	assert.Equal(t, model.KindReport, result.Kind)
	assert.Equal(t, document.Heading{Text: "Document Compliance: VIOLATIONS"}, result.Blocks[0])
	assert.Contains(t, result.Content, "Violation 1 · Page 4")
	assert.Len(t, result.Violations(), 1)
	assert.True(t, result.HasViolations())
	assert.Equal(t, int32(1), svc.checkCalls.Load())
}

func TestSubmitDocument_EmptyReference(t *testing.T) {
	o, svc := newTestOrchestrator()

	_, err := o.SubmitDocument(user, api.Upload{Filename: " ", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = o.SubmitDocument(user, api.Upload{Filename: "a.pdf"})
	assert.ErrorIs(t, err, ErrEmptyInput)

	assert.Zero(t, o.Conversation().Len())
	assert.Zero(t, svc.totalCalls())
}

func TestSubmitDocument_MissingListsAreEmpty(t *testing.T) {
	o, svc := newTestOrchestrator()
	svc.check = &api.DocumentCheckResponse{SubmissionID: "s"}

	op, err := o.SubmitDocument(user, doc())
	require.NoError(t, err)
	result := op.Run(context.Background())

	assert.False(t, result.IsError)
	assert.NotNil(t, result.Analysis.RulesTriggered)
	assert.Zero(t, result.Overlay.Total)
}

// =============================================================================
// REGENERATE TESTS
// =============================================================================

func TestRegenerate_ReplaysPreviousPrompt(t *testing.T) {
	o, svc := newTestOrchestrator()
	op, err := o.SubmitPrompt(user, "tagline please")
	require.NoError(t, err)
	op.Run(context.Background())

	assert.Equal(t, 1, o.RegenerableIndex())

	op, err = o.Regenerate(user, 1)
	require.NoError(t, err)
	op.Run(context.Background())

	msgs := o.Conversation().Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "tagline please", msgs[2].Content)
	assert.Equal(t, model.RoleUser, msgs[2].Role)
	assert.Equal(t, model.RoleSystem, msgs[3].Role)
	assert.Equal(t, int32(2), svc.generateCalls.Load())
	assert.Equal(t, 3, o.RegenerableIndex())
}

func TestRegenerate_GuardIsNoOp(t *testing.T) {
	o, svc := newTestOrchestrator()
	op, err := o.SubmitDocument(user, doc())
	require.NoError(t, err)
	op.Run(context.Background())

	conv := o.Conversation()
	conv.Append(model.NewResultMessage(model.KindResult, "system after system", nil))
	before := conv.Len()
	calls := svc.totalCalls()

	tests := []struct {
		name  string
		index int
	}{
		{"preceded by system turn", 2},
		{"preceded by upload turn", 1},
		{"user turn", 0},
		{"out of range", 10},
		{"negative", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := o.Regenerate(user, tt.index)
			assert.Nil(t, op)
			assert.ErrorIs(t, err, ErrNotRegenerable)
			assert.Equal(t, before, conv.Len())
			assert.Equal(t, calls, svc.totalCalls())
			assert.Equal(t, Idle, o.State())
		})
	}
	assert.Equal(t, -1, o.RegenerableIndex())
}

func TestRegenerate_AfterErrorRetriesPrompt(t *testing.T) {
	o, svc := newTestOrchestrator()
	svc.err = errors.New("offline")
	op, _ := o.SubmitPrompt(user, "hello world")
	op.Run(context.Background())

	svc.err = nil
	op, err := o.Regenerate(user, 1)
	require.NoError(t, err)
	result := op.Run(context.Background())
	assert.False(t, result.IsError)
}

// =============================================================================
// REWRITE TESTS
// =============================================================================

func TestSubmitRewrite(t *testing.T) {
	o, svc := newTestOrchestrator()
	svc.check = &api.DocumentCheckResponse{
		SubmissionID:     "sub-doc",
		ComplianceStatus: compliance.StatusViolations,
		Violations: []compliance.Violation{
			{ChunkText: "first passage"},
			{ChunkText: "second passage"},
		},
	}
	op, _ := o.SubmitDocument(user, doc())
	op.Run(context.Background())

	op, err := o.SubmitRewrite(user, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, Rewriting, o.State())
	result := op.Run(context.Background())

	assert.Equal(t, "sub-doc", svc.lastRewrite.SubmissionID)
	assert.Equal(t, "second passage", svc.lastRewrite.ViolationText)

	msgs := o.Conversation().Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "Rewrite violation 2", msgs[2].Content)
	assert.Equal(t, model.KindRewrite, result.Kind)
	assert.Equal(t, document.Document{
		document.Heading{Text: "Compliant Version"},
		document.Paragraph{Spans: []document.Span{{Text: "Safe text."}}},
	}, result.Blocks)
}

func TestSubmitRewrite_Guards(t *testing.T) {
	o, svc := newTestOrchestrator()
	op, _ := o.SubmitPrompt(user, "hello world")
	op.Run(context.Background())
	before := o.Conversation().Len()

	for _, idx := range [][2]int{{0, 0}, {1, 0}, {1, -1}, {9, 0}} {
		_, err := o.SubmitRewrite(user, idx[0], idx[1])
		assert.ErrorIs(t, err, ErrNotRewritable, "turn %d violation %d", idx[0], idx[1])
	}
	assert.Equal(t, before, o.Conversation().Len())
	assert.Zero(t, svc.rewriteCalls.Load())
}

// =============================================================================
// MISC TESTS
// =============================================================================

func TestClear(t *testing.T) {
	o, _ := newTestOrchestrator()
	op, _ := o.SubmitPrompt(user, "hello world")
	op.Run(context.Background())

	require.NoError(t, o.Clear())
	assert.Zero(t, o.Conversation().Len())
}

func TestState_Labels(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "Analyzing document...", Analyzing.BusyLabel())
	assert.Equal(t, "Rewriting...", Rewriting.BusyLabel())
	assert.Empty(t, Idle.BusyLabel())
	assert.Equal(t, "unknown", State(42).String())
}
