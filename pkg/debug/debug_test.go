package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	l.Printf("hello %s", "world")
	l.Section("x")
	l.Preview("payload", []byte("data"))
	l.Timed("step")()
	if l.Enabled() {
		t.Error("nil logger should not be enabled")
	}
}

func TestPrintfPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Printf("imported %d", 3)
	if got := buf.String(); got != "[debug] imported 3\n" {
		t.Errorf("got %q", got)
	}
	if !l.Enabled() {
		t.Error("logger should be enabled")
	}
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf).Section("Import")
	if !strings.Contains(buf.String(), "─── Import ───") {
		t.Errorf("expected section marker, got %q", buf.String())
	}
}

func TestPreviewIndentsJSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf).Preview("backup", []byte(`{"contacts":[]}`))

	out := buf.String()
	if !strings.Contains(out, "backup (15 bytes):") {
		t.Errorf("expected size header, got:\n%s", out)
	}
	if !strings.Contains(out, `[debug]   "contacts": []`) {
		t.Errorf("expected indented JSON, got:\n%s", out)
	}
}

func TestPreviewPlainText(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf).Preview("vcard", []byte("BEGIN:VCARD\r\nFN:Jane\r\n"))

	out := buf.String()
	for _, want := range []string{"[debug]   BEGIN:VCARD\n", "[debug]   FN:Jane\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPreviewTruncates(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf).Preview("big", []byte(strings.Repeat("x", maxPreview+500)))

	out := buf.String()
	if !strings.Contains(out, "truncated at") {
		t.Errorf("expected truncation notice, got %d bytes of output", len(out))
	}
	if strings.Count(out, "x") > maxPreview {
		t.Errorf("preview not truncated: %d x's", strings.Count(out, "x"))
	}
}

func TestTimed(t *testing.T) {
	var buf bytes.Buffer
	done := NewLogger(&buf).Timed("decode")
	done()

	out := buf.String()
	if !strings.Contains(out, "→ decode") || !strings.Contains(out, "← decode (") {
		t.Errorf("expected start and end lines, got:\n%s", out)
	}
}
