package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/reactive/pkg/reactive"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "runtime error",
			code:    "R001",
			wantMsg: "Runaway flush",
			wantCat: CategoryRuntime,
		},
		{
			name:    "scenario error",
			code:    "S004",
			wantMsg: "Unknown node reference",
			wantCat: CategoryScenario,
		},
		{
			name:    "config error",
			code:    "C003",
			wantMsg: "Invalid log level",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "Z999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryScenario, "node %q not found", "total")
	if err.Message != `node "total" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `node "total" not found`)
	}
	if err.Error() != `node "total" not found` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestError_Error(t *testing.T) {
	got := New("S003").Error()
	want := "S003: Duplicate node name"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestError_WithLocation(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "scenario.yaml")
	content := `name: counter
nodes:
  - name: count
    kind: signal
  - name: total
    kind: memo
    inputs: [cont]
`
	if err := os.WriteFile(tmpFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New("S004").WithLocation(tmpFile, 7, 14)
	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.Line != 7 || err.Location.Column != 14 {
		t.Errorf("Location = %v", err.Location)
	}
	if len(err.Context) == 0 {
		t.Error("Context should not be empty")
	}
}

func TestError_Builders(t *testing.T) {
	inner := stderrors.New("boom")
	err := New("S010").
		WithDetailf("%s = %d", "total", 3).
		WithSuggestion("check the expectation").
		Wrap(inner)

	if err.Detail != "total = 3" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "check the expectation" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if !stderrors.Is(err, inner) {
		t.Error("errors.Is should see the wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "S001") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	e := New("S001")
	if FromError(e, "S002") != e {
		t.Error("FromError should return *Error as-is")
	}
	if FromError(fmt.Errorf("loading: %w", e), "S002") != e {
		t.Error("FromError should unwrap to the coded error")
	}

	std := stderrors.New("plain")
	if result := FromError(std, "S001"); result.Wrapped != std || result.Code != "S001" {
		t.Error("standard error should be wrapped with the given code")
	}
}

func TestFromPanic(t *testing.T) {
	tests := []struct {
		name string
		v    any
		code string
	}{
		{"runaway", reactive.ErrRunawayFlush, "R001"},
		{"cycle", reactive.ErrCycle, "R002"},
		{"string panic", "fail", "R003"},
		{"type mismatch", fmt.Errorf("%w: x", reactive.ErrTypeMismatch), "R004"},
		{"coded", New("S010"), "S010"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromPanic(tt.v); got.Code != tt.code {
				t.Errorf("FromPanic(%v).Code = %q, want %q", tt.v, got.Code, tt.code)
			}
		})
	}

	if FromPanic(nil) != nil {
		t.Error("FromPanic(nil) should return nil")
	}

	var pe *reactive.PanicError
	if !stderrors.As(FromPanic("fail"), &pe) || pe.Value != "fail" {
		t.Error("string panics should be wrapped in reactive.PanicError")
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{"nil location", nil, ""},
		{"with column", &Location{File: "a.yaml", Line: 10, Column: 5}, "a.yaml:10:5"},
		{"without column", &Location{File: "a.yaml", Line: 10}, "a.yaml:10"},
		{"without file", &Location{Line: 4, Column: 2}, "line 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tmpFile := filepath.Join(t.TempDir(), "scenario.yaml")
	content := "nodes:\n  - name: total\n    kind: memo\n    inputs: [cont]\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	formatted := New("S004").
		WithLocation(tmpFile, 4, 14).
		WithDetail(`memo "total" reads unknown node "cont"`).
		Wrap(stderrors.New("lookup failed")).
		Format()

	for _, want := range []string{
		"S004",
		"Unknown node reference",
		tmpFile,
		"→    4 │     inputs: [cont]",
		`memo "total" reads unknown node "cont"`,
		"Cause: lookup failed",
		"Hint:",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("S004").WithLocation("missing.yaml", 10, 5)
	want := "missing.yaml:10:5: S004: Unknown node reference"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("C003").WithLocation("reactive.yaml", 3, 0).WithDetail(`"loud" is not a level`)

	var decoded map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON() is not valid JSON: %v", jerr)
	}
	if decoded["code"] != "C003" || decoded["category"] != "config" {
		t.Errorf("unexpected JSON %v", decoded)
	}
	if decoded["detail"] != `"loud" is not a level` {
		t.Errorf("detail = %v", decoded["detail"])
	}
	if _, ok := decoded["location"]; !ok {
		t.Error("JSON should contain location")
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, New("X001"))
	if !strings.Contains(buf.String(), "ERROR X001: Unsupported output format") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRegistry(t *testing.T) {
	found := false
	for _, code := range GetAllCodes() {
		if code == "R001" {
			found = true
		}
	}
	if !found {
		t.Error("R001 should be registered")
	}

	if _, ok := GetTemplate("Z999"); ok {
		t.Error("Z999 should not exist")
	}

	Register("Z999", ErrorTemplate{Category: CategoryCLI, Message: "Custom test error"})
	defer delete(registry, "Z999")
	if New("Z999").Message != "Custom test error" {
		t.Error("registered template should be used")
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}

func TestWrapTextKeepsLines(t *testing.T) {
	got := wrapText("step 0: value of b = 1, want 2\nstep 1: runs of c = 3, want 2", 70)
	if len(got) != 2 || !strings.HasPrefix(got[1], "step 1") {
		t.Errorf("expected one line per failure, got %v", got)
	}
}
