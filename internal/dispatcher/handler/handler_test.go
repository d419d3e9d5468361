package handler

import (
	"errors"
	"testing"
)

type recordingConsole struct {
	printed []string
}

func (c *recordingConsole) Print(text string) { c.printed = append(c.printed, text) }
func (c *recordingConsole) ClearOutput()      {}
func (c *recordingConsole) Close()            {}
func (c *recordingConsole) RequestQuit()      {}

func TestResultConstructors(t *testing.T) {
	tests := []struct {
		name    string
		r       Result
		status  ResultStatus
		message string
	}{
		{"success", Success(), StatusOK, ""},
		{"with message", SuccessWithMessage("hi"), StatusOK, "hi"},
		{"formatted", Successf("%d entities", 3), StatusOK, "3 entities"},
		{"noop", NoOp(), StatusNoOp, ""},
		{"error", Error(errors.New("boom")), StatusError, "boom"},
		{"nil error", Error(nil), StatusError, "unknown error"},
		{"errorf", Errorf("no entity %d", 7), StatusError, "no entity 7"},
		{"chained", Success().WithMessage("ok"), StatusOK, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.r.Status != tt.status {
				t.Errorf("Status = %v, want %v", tt.r.Status, tt.status)
			}
			if tt.r.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.r.Message, tt.message)
			}
			if tt.r.IsError() != (tt.status == StatusError) {
				t.Error("IsError mismatch")
			}
			if tt.r.IsOK() != (tt.status == StatusOK) {
				t.Error("IsOK mismatch")
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	if StatusNoOp.String() != "no-op" || ResultStatus(9).String() != "unknown" {
		t.Error("unexpected status strings")
	}
}

func TestContextPrintAndState(t *testing.T) {
	var ctx Context
	ctx.Print("dropped without a console")

	con := &recordingConsole{}
	ctx = Context{Console: con, State: map[string]int{"a": 1}}
	ctx.Print("hello")
	if len(con.printed) != 1 || con.printed[0] != "hello" {
		t.Errorf("printed = %v", con.printed)
	}

	if m, ok := StateAs[map[string]int](&ctx); !ok || m["a"] != 1 {
		t.Errorf("StateAs = %v, %v", m, ok)
	}
	if _, ok := StateAs[*int](&ctx); ok {
		t.Error("StateAs with the wrong type should fail")
	}
}

func TestNilHandlerFunc(t *testing.T) {
	var f HandlerFunc
	if r := f.Handle(&Context{}); !r.IsError() {
		t.Errorf("nil HandlerFunc = %+v, want error", r)
	}
}
