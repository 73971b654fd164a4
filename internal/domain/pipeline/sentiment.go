package pipeline

import "strings"

// ClassifySentiment does a case-insensitive keyword search over model output.
// "optimistic" is checked before "pessimistic", so text mentioning both is
// optimistic. Text with neither keyword is balanced.
func ClassifySentiment(text string) Sentiment {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, string(SentimentOptimistic)):
		return SentimentOptimistic
	case strings.Contains(lower, string(SentimentPessimistic)):
		return SentimentPessimistic
	default:
		return SentimentBalanced
	}
}
