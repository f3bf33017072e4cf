package layout

import (
	"strings"
	"testing"
)

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("New Assessment", "model v1.0.0 (rf1)", 100)
	for _, want := range []string{"CKD Risk", "New Assessment", "model v1.0.0 (rf1)"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q", want)
		}
	}
}

func TestRenderFooter(t *testing.T) {
	f := RenderFooter([]KeyHint{{Key: "Tab", Description: "Next field"}}, 80)
	if !strings.Contains(f, "Tab") || !strings.Contains(f, "Next field") {
		t.Errorf("footer missing hint: %q", f)
	}
}

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(79, 24) || !IsTooSmall(80, 23) {
		t.Error("expected sizes below minimum to be too small")
	}
	if IsTooSmall(80, 24) {
		t.Error("expected minimum size to fit")
	}
}

func TestRenderHeader_DropsStatusWhenNarrow(t *testing.T) {
	status := strings.Repeat("x", 60)
	h := RenderHeader("Field Reference", status, 80)
	if strings.Contains(h, status) {
		t.Error("expected status to be dropped")
	}
	if !strings.Contains(h, "Field Reference") {
		t.Error("expected title to be kept")
	}
}

func TestRenderFrame_ClipsContent(t *testing.T) {
	header := RenderHeader("Home", "", 80)
	footer := RenderFooter(nil, 80)
	content := strings.Repeat("line\n", 40) + "last"

	out := RenderFrame(header, content, footer, 80, 24)
	if got := strings.Count(out, "\n") + 1; got != 24 {
		t.Errorf("expected 24 lines, got %d", got)
	}
	if strings.Contains(out, "last") {
		t.Error("expected overflow to be clipped")
	}
}
