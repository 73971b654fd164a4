package prompt

import "fmt"

// BuildAnalysisPrompt asks for a two-sentence analysis and a sentiment keyword.
func BuildAnalysisPrompt(text string) string {
	return fmt.Sprintf("Analyze this in 2 sentences and classify sentiment as optimistic, pessimistic, or balanced:\n%s", text)
}
