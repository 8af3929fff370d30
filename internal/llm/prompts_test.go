package llm

import (
	"strings"
	"testing"
)

func TestRenderTemplateReplacesAllVars(t *testing.T) {
	rendered := RenderTemplate("a={{A}} b={{B}} a-again={{A}}", map[string]string{
		"A": "1",
		"B": "2",
	})
	if rendered != "a=1 b=2 a-again=1" {
		t.Fatalf("unexpected render: %q", rendered)
	}
}

func TestBuildAdvisorPromptIncludesScenario(t *testing.T) {
	prompt := BuildAdvisorPrompt(7000000, 10000000, 80000, 720, "eligible under standard rules")

	for _, want := range []string{
		"₹7000000",
		"₹10000000",
		"₹80000",
		"Credit score: 720",
		"EMI = (P * r * (1 + r)^n) / ((1 + r)^n - 1)",
		"eligible under standard rules",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "{{") {
		t.Fatalf("prompt contains unrendered placeholders")
	}
	if strings.Contains(prompt, "special approval") {
		t.Fatalf("standard applicant should not get the special approval note")
	}
}

func TestBuildAdvisorPromptSpecialApprovalNote(t *testing.T) {
	prompt := BuildAdvisorPrompt(5000000, 9000000, 250000, 580, "not eligible under standard rules")
	if !strings.Contains(prompt, "special approval") {
		t.Fatalf("high income low credit applicant should get the special approval note")
	}
}
