package pipeline

import "testing"

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Sentiment
	}{
		{name: "optimistic", text: "The outlook is Optimistic overall.", want: SentimentOptimistic},
		{name: "pessimistic", text: "Sentiment: PESSIMISTIC.", want: SentimentPessimistic},
		{name: "neither", text: "A random string with no clear tone.", want: SentimentBalanced},
		{name: "explicit balanced", text: "Sentiment: balanced", want: SentimentBalanced},
		{name: "both words", text: "Not pessimistic, rather optimistic.", want: SentimentOptimistic},
		{name: "empty", text: "", want: SentimentBalanced},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySentiment(tt.text); got != tt.want {
				t.Fatalf("ClassifySentiment(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
