package core

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestMessage_ConstructorsAndKinds(t *testing.T) {
	m := NewTextMessage(RoleUser, "hello", "alice")
	if m.ID == "" || m.Timestamp.IsZero() || m.Kind != KindText || m.From != "alice" || m.Role != RoleUser {
		t.Fatalf("NewTextMessage did not initialize fields correctly: %+v", m)
	}
	if m.Text() != "hello" {
		t.Fatalf("unexpected text %q", m.Text())
	}

	call := NewToolCallMessage("bob", FunctionCall{ID: "c1", Name: "sum", Arguments: `{"a":1}`})
	if call.Kind != KindToolCall || len(call.FunctionCalls()) != 1 || call.FunctionCalls()[0].Name != "sum" {
		t.Fatalf("NewToolCallMessage malformed: %+v", call)
	}

	result := NewToolCallResultMessage("bob", FunctionResponse{ID: "c1", Name: "sum", Response: 3})
	if result.Kind != KindToolCallResult || result.Role != RoleTool || result.Text() != "3" {
		t.Fatalf("NewToolCallResultMessage malformed: %+v (text %q)", result, result.Text())
	}

	agg := NewAggregateMessage("bob", call, result)
	if agg.Kind != KindAggregate || len(agg.FunctionCalls()) != 1 || len(agg.FunctionResponses()) != 1 {
		t.Fatalf("NewAggregateMessage malformed: %+v", agg)
	}

	mm := NewMultiModalMessage(RoleUser, "carol", TextPart{Text: "look"}, ImagePart{URL: "https://example.com/a.png"})
	if mm.Kind != KindMultiModal || mm.Text() != "look" || len(mm.Parts) != 2 {
		t.Fatalf("NewMultiModalMessage malformed: %+v", mm)
	}
}

func TestMessage_ErrorResponseText(t *testing.T) {
	m := NewToolCallResultMessage("x", FunctionResponse{Name: "f", Error: "boom"})
	if m.Text() != "error: boom" {
		t.Fatalf("unexpected text %q", m.Text())
	}
}

func TestMessage_WithFromDoesNotShareParts(t *testing.T) {
	orig := NewTextMessage(RoleAssistant, "a", "one")
	moved := orig.WithFrom("two")
	moved.Parts[0] = TextPart{Text: "b"}

	if orig.From != "one" || orig.Text() != "a" {
		t.Fatalf("original was mutated: %+v", orig)
	}
	if moved.From != "two" || moved.ID != orig.ID {
		t.Fatalf("unexpected copy: %+v", moved)
	}
}

func TestIsTerminal_SubstringNotEquality(t *testing.T) {
	cases := map[string]bool{
		"done. TERMINATE":      true,
		"TERMINATE":            true,
		"[TERMINATE] bye":      true,
		"we should terminate":  false,
		"all good, continuing": false,
	}
	for text, want := range cases {
		if got := IsTerminal(NewTextMessage(RoleAssistant, text, "a")); got != want {
			t.Errorf("IsTerminal(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestNewTerminateMessage(t *testing.T) {
	m := NewTerminateMessage("admin", "no next speaker")
	if !m.IsTerminal() || !strings.HasPrefix(m.Text(), "no next speaker") {
		t.Fatalf("unexpected terminate message %q", m.Text())
	}
	if NewTerminateMessage("", "").Text() != TerminateToken {
		t.Fatal("empty reason should yield the bare token")
	}
}

func TestLastIsTerminal(t *testing.T) {
	if LastIsTerminal(nil) {
		t.Fatal("empty history is not terminal")
	}
	h := []Message{NewTerminateMessage("a", ""), NewTextMessage(RoleUser, "more", "b")}
	if LastIsTerminal(h) {
		t.Fatal("only the last message counts")
	}
}

func TestProperty_TokenAnywhereIsTerminal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		prefix := rapid.String().Draw(rt, "prefix")
		suffix := rapid.String().Draw(rt, "suffix")
		m := NewTextMessage(RoleAssistant, prefix+TerminateToken+suffix, "agent")
		if !IsTerminal(m) {
			rt.Fatalf("message %q should be terminal", m.Text())
		}
	})
}

func TestProperty_NoTokenIsNotTerminal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[a-z .,!?]{0,64}`).Draw(rt, "text")
		if IsTerminal(NewTextMessage(RoleAssistant, text, "agent")) {
			rt.Fatalf("lowercase text %q must not be terminal", text)
		}
	})
}
