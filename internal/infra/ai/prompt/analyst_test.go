package prompt

import (
	"strings"
	"testing"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	got := BuildAnalysisPrompt("abc-123")
	for _, want := range []string{"2 sentences", "optimistic", "pessimistic", "balanced", "abc-123"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt %q missing %q", got, want)
		}
	}
}
