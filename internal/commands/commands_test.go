// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/comply-tui/internal/api"
	"github.com/jeranaias/comply-tui/internal/api/apitest"
	"github.com/jeranaias/comply-tui/internal/compliance"
	"github.com/jeranaias/comply-tui/internal/export"
	"github.com/jeranaias/comply-tui/internal/model"
	"github.com/jeranaias/comply-tui/internal/orchestrator"
)

const testUser = "00000000-0000-0000-0000-000000000001"

func newTestContext(t *testing.T) (*Context, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: srv.URL, RequestsPerMinute: -1})
	orch := orchestrator.New(client, nil, orchestrator.Config{UsePromptEnhancer: true})
	return &Context{
		Orchestrator: orch,
		Identity:     orchestrator.Identity{UserID: testUser},
		Export: &export.Options{
			OutputDir:       t.TempDir(),
			IncludeMetadata: true,
			Now:             func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) },
		},
	}, srv
}

func run(t *testing.T, res *Result) *model.Message {
	t.Helper()
	if res == nil || res.Operation == nil {
		t.Fatal("expected a started operation")
	}
	return res.Operation.Run(context.Background())
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/upload report.pdf", true},
		{"  /help", true},
		{"hello", false},
		{"hello /help", false},
		{"", false},
		{"/", true},
	}

	for _, tc := range tests {
		if got := IsCommand(tc.input); got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestExtractCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/help", "/help"},
		{"/upload report.pdf", "/upload"},
		{"  /regen  ", "/regen"},
		{"hello", ""},
		{"/", "/"},
	}

	for _, tc := range tests {
		if got := ExtractCommandName(tc.input); got != tc.want {
			t.Errorf("ExtractCommandName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"/help", []string{"/help"}},
		{"/rewrite 2 1", []string{"/rewrite", "2", "1"}},
		{`/upload "quarterly report.pdf"`, []string{"/upload", "quarterly report.pdf"}},
		{`/upload 'quarterly report.pdf'`, []string{"/upload", "quarterly report.pdf"}},
		{`/upload "say \"hi\".txt"`, []string{"/upload", `say "hi".txt`}},
		{`/export json ""`, []string{"/export", "json", ""}},
	}

	for _, tc := range tests {
		got := ParseArgs(tc.input)
		if strings.Join(got, "|") != strings.Join(tc.want, "|") || len(got) != len(tc.want) {
			t.Errorf("ParseArgs(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParser_Parse(t *testing.T) {
	p := NewParser(NewRegistry())

	res := p.Parse("  Write a product update  ")
	if res.IsCommand {
		t.Fatal("plain text parsed as command")
	}
	if res.RawInput != "Write a product update" {
		t.Errorf("RawInput = %q", res.RawInput)
	}

	res = p.Parse("/REGEN 3")
	if !res.IsCommand || res.Command == nil || res.Command.Name != "/regen" {
		t.Fatalf("Parse(/REGEN 3) = %+v", res)
	}
	if len(res.Args) != 1 || res.Args[0] != "3" {
		t.Errorf("Args = %v", res.Args)
	}

	if res := p.Parse("/nope"); res.Command != nil {
		t.Errorf("unknown command resolved to %s", res.Command.Name)
	}
}

func TestValidateArgs(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name    string
		cmd     string
		args    []string
		wantErr bool
	}{
		{"upload with path", "/upload", []string{"a.pdf"}, false},
		{"upload missing path", "/upload", nil, true},
		{"regen without turn", "/regen", nil, false},
		{"regen with turn", "/regen", []string{"4"}, false},
		{"regen zero", "/regen", []string{"0"}, true},
		{"regen word", "/regen", []string{"last"}, true},
		{"rewrite violation only", "/rewrite", []string{"1"}, false},
		{"rewrite turn and violation", "/rewrite", []string{"2", "1"}, false},
		{"rewrite too many", "/rewrite", []string{"2", "1", "9"}, true},
		{"enhancer on", "/enhancer", []string{"ON"}, false},
		{"enhancer bad", "/enhancer", []string{"maybe"}, true},
		{"export format", "/export", []string{"json"}, false},
		{"export dir only", "/export", []string{"./out"}, false},
		{"export format and dir", "/export", []string{"md", "./out"}, false},
		{"export bad format with dir", "/export", []string{"pdf", "./out"}, true},
		{"clear with args", "/clear", []string{"now"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgs(r.Get(tt.cmd), tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateArgs(%s, %v) error = %v, wantErr %v", tt.cmd, tt.args, err, tt.wantErr)
			}
			var verr *ValidationError
			if err != nil && !errors.As(err, &verr) {
				t.Errorf("error %T is not a *ValidationError", err)
			}
		})
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"/help", "/h", "/?", "/upload", "/check", "/regen", "/r", "/rewrite", "/export", "/quit", "/exit"} {
		if r.Get(name) == nil {
			t.Errorf("%s should resolve", name)
		}
	}
	if r.Get("/nonexistent") != nil {
		t.Error("/nonexistent should return nil")
	}
}

func TestRegistry_RegisterKeepsOrder(t *testing.T) {
	r := NewRegistry()
	before := len(r.All())

	r.Register(&Command{Name: "/zzz", Hidden: true})
	r.Register(&Command{Name: "/upload", Description: "replaced", Category: "Compliance"})

	all := r.All()
	if len(all) != before+1 {
		t.Fatalf("len(All()) = %d, want %d", len(all), before+1)
	}
	if all[0].Name != "/upload" || all[0].Description != "replaced" {
		t.Errorf("first command = %s %q", all[0].Name, all[0].Description)
	}
	for _, cmd := range r.Visible() {
		if cmd.Name == "/zzz" {
			t.Error("hidden command listed as visible")
		}
	}
	if len(r.ByCategory()["Compliance"]) != 3 {
		t.Errorf("Compliance commands = %d, want 3", len(r.ByCategory()["Compliance"]))
	}
}

func TestRegistry_ReplaceTakesNewMetadata(t *testing.T) {
	r := NewRegistry()
	names := func() []string {
		var out []string
		for _, cmd := range r.All() {
			out = append(out, cmd.Name)
		}
		return out
	}
	order := names()

	r.Register(&Command{Name: "/upload", Description: "uncategorized"})

	if got := names(); strings.Join(got, ",") != strings.Join(order, ",") {
		t.Errorf("order after replace = %v, want %v", got, order)
	}
	if got := r.Get("/upload").Description; got != "uncategorized" {
		t.Errorf("Description = %q, want %q", got, "uncategorized")
	}
	for _, cmd := range r.ByCategory()["Compliance"] {
		if cmd.Name == "/upload" {
			t.Error("replaced command kept its old category")
		}
	}
	if len(r.ByCategory()["Compliance"]) != 2 {
		t.Errorf("Compliance commands = %d, want 2", len(r.ByCategory()["Compliance"]))
	}

	r.Register(&Command{Name: "/regen", Aliases: []string{"/again"}, Category: "Compliance"})
	if r.Get("/r") != nil {
		t.Error("alias of the replaced command still resolves")
	}
	if got := r.Get("/again"); got == nil || got.Name != "/regen" {
		t.Errorf("Get(/again) = %v, want /regen", got)
	}
}

// =============================================================================
// EXECUTION TESTS
// =============================================================================

func TestExecute_PromptRunsGeneration(t *testing.T) {
	ctx, srv := newTestContext(t)
	r := NewRegistry()

	res, err := r.Execute(ctx, "Draft a launch announcement")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	msg := run(t, res)
	if msg == nil || msg.IsError {
		t.Fatalf("result = %+v", msg)
	}
	if srv.CountPath("/agent/generate") != 1 {
		t.Errorf("generate calls = %d, want 1", srv.CountPath("/agent/generate"))
	}
	if got := ctx.Orchestrator.Conversation().Len(); got != 2 {
		t.Errorf("turns = %d, want 2", got)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	ctx, srv := newTestContext(t)

	_, err := NewRegistry().Execute(ctx, "/summon demons")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("error = %v, want ErrUnknownCommand", err)
	}
	if len(srv.Requests()) != 0 || !ctx.Orchestrator.Conversation().IsEmpty() {
		t.Error("unknown command had side effects")
	}
}

func TestExecute_Upload(t *testing.T) {
	ctx, srv := newTestContext(t)
	path := filepath.Join(t.TempDir(), "policy.txt")
	if err := os.WriteFile(path, []byte("All claims are guaranteed."), 0600); err != nil {
		t.Fatal(err)
	}

	res, err := NewRegistry().Execute(ctx, "/upload "+path)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Operation.State() != orchestrator.Analyzing {
		t.Errorf("state = %v, want analyzing", res.Operation.State())
	}
	msg := run(t, res)
	if msg.Kind != model.KindReport {
		t.Errorf("kind = %s, want report", msg.Kind)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 || reqs[0].Filename != "policy.txt" {
		t.Fatalf("requests = %+v", reqs)
	}

	if _, err := NewRegistry().Execute(ctx, "/upload "+filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestExecute_RegenDefaultsToLatest(t *testing.T) {
	ctx, srv := newTestContext(t)
	r := NewRegistry()

	if _, err := r.Execute(ctx, "/regen"); !errors.Is(err, ErrNothingToRegenerate) {
		t.Fatalf("regen on empty conversation: %v", err)
	}

	res, err := r.Execute(ctx, "Summarise the policy")
	if err != nil {
		t.Fatal(err)
	}
	run(t, res)

	res, err = r.Execute(ctx, "/regen")
	if err != nil {
		t.Fatalf("regen: %v", err)
	}
	run(t, res)

	if srv.CountPath("/agent/generate") != 2 {
		t.Errorf("generate calls = %d, want 2", srv.CountPath("/agent/generate"))
	}
	msgs := ctx.Orchestrator.Conversation().Messages()
	if len(msgs) != 4 || msgs[2].Content != "Summarise the policy" {
		t.Errorf("unexpected turns after regen: %d", len(msgs))
	}

	// Turn 1 is the user prompt, not a response.
	if _, err := r.Execute(ctx, "/regen 1"); !errors.Is(err, orchestrator.ErrNotRegenerable) {
		t.Errorf("regen 1: %v, want ErrNotRegenerable", err)
	}
}

func TestExecute_Rewrite(t *testing.T) {
	ctx, srv := newTestContext(t)
	srv.Check = func(userID string, doc api.Upload) (*api.DocumentCheckResponse, error) {
		rule := compliance.RuleTrigger{RuleID: "r1", RuleText: "No guarantees", Severity: "HIGH", Status: compliance.RuleViolated}
		return &api.DocumentCheckResponse{
			SubmissionID:     "sub-9",
			ComplianceStatus: compliance.StatusViolations,
			Violations: []compliance.Violation{
				{ChunkText: "Returns are guaranteed.", ViolatedRules: []compliance.RuleTrigger{rule}},
			},
			RulesTriggered: []compliance.RuleTrigger{rule},
		}, nil
	}
	r := NewRegistry()

	if _, err := r.Execute(ctx, "/rewrite 1"); !errors.Is(err, ErrNothingToRewrite) {
		t.Fatalf("rewrite without analysis: %v", err)
	}

	path := filepath.Join(t.TempDir(), "deck.txt")
	if err := os.WriteFile(path, []byte("Returns are guaranteed."), 0600); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, "/upload "+path)
	if err != nil {
		t.Fatal(err)
	}
	run(t, res)

	res, err = r.Execute(ctx, "/rewrite 1")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	msg := run(t, res)
	if !strings.Contains(msg.Content, "Compliant: Returns are guaranteed.") {
		t.Errorf("rewrite content = %q", msg.Content)
	}

	if _, err := r.Execute(ctx, "/rewrite 2 5"); !errors.Is(err, orchestrator.ErrNotRewritable) {
		t.Errorf("out of range violation: %v", err)
	}
}

func TestExecute_Enhancer(t *testing.T) {
	ctx, _ := newTestContext(t)
	r := NewRegistry()

	res, err := r.Execute(ctx, "/enhancer")
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Orchestrator.PromptEnhancer() || res.Notice != "Prompt enhancer off" {
		t.Errorf("toggle: enhancer=%v notice=%q", ctx.Orchestrator.PromptEnhancer(), res.Notice)
	}

	if _, err := r.Execute(ctx, "/enhancer on"); err != nil {
		t.Fatal(err)
	}
	if !ctx.Orchestrator.PromptEnhancer() {
		t.Error("enhancer should be on")
	}
}

func TestExecute_Export(t *testing.T) {
	ctx, _ := newTestContext(t)
	r := NewRegistry()

	if _, err := r.Execute(ctx, "/export"); !errors.Is(err, export.ErrEmptyConversation) {
		t.Fatalf("export of empty conversation: %v", err)
	}

	res, err := r.Execute(ctx, "Draft a launch announcement")
	if err != nil {
		t.Fatal(err)
	}
	run(t, res)

	res, err = r.Execute(ctx, "/export json")
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	path := strings.TrimPrefix(res.Notice, "Exported to ")
	if filepath.Ext(path) != ".json" || filepath.Dir(path) != ctx.Export.OutputDir {
		t.Errorf("export path = %q", path)
	}

	dir := t.TempDir()
	res, err = r.Execute(ctx, "/export "+dir)
	if err != nil {
		t.Fatalf("export to dir: %v", err)
	}
	path = strings.TrimPrefix(res.Notice, "Exported to ")
	if filepath.Dir(path) != dir || filepath.Ext(path) != ".md" {
		t.Errorf("export path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestExecute_ClearHelpQuit(t *testing.T) {
	ctx, _ := newTestContext(t)
	r := NewRegistry()

	res, err := r.Execute(ctx, "Draft a launch announcement")
	if err != nil {
		t.Fatal(err)
	}
	run(t, res)

	if res, err := r.Execute(ctx, "/clear"); err != nil || res.Notice == "" {
		t.Fatalf("clear: %v", err)
	}
	if !ctx.Orchestrator.Conversation().IsEmpty() {
		t.Error("conversation should be empty")
	}
	if res, _ := r.Execute(ctx, "/?"); !res.ShowHelp {
		t.Error("/? should show help")
	}
	if res, _ := r.Execute(ctx, "/exit"); !res.Quit {
		t.Error("/exit should quit")
	}
}

func TestExecute_BusyRejectsCommands(t *testing.T) {
	ctx, _ := newTestContext(t)
	r := NewRegistry()

	res, err := r.Execute(ctx, "Draft a launch announcement")
	if err != nil {
		t.Fatal(err)
	}
	defer run(t, res)

	if _, err := r.Execute(ctx, "Another prompt entirely"); !errors.Is(err, orchestrator.ErrBusy) {
		t.Errorf("prompt while busy: %v", err)
	}
	if _, err := r.Execute(ctx, "/clear"); !errors.Is(err, orchestrator.ErrBusy) {
		t.Errorf("clear while busy: %v", err)
	}
}
