package scoring

import "strings"

// NewsAmplification scales the summed headline sentiment into the news
// component score.
const NewsAmplification = 5

// positiveTerms and negativeTerms are the fixed sentiment lexicons. Matching
// is substring containment, so a term can also match inside a longer word.
var (
	positiveTerms = []string{"beats", "soars", "growth", "jump", "rises", "strong", "profit"}
	negativeTerms = []string{"falls", "misses", "drop", "weak", "loss", "cuts", "bad"}
)

// SentimentScore returns the lexical polarity of one headline: the number of
// positive terms contained minus the number of negative terms contained.
// Each term counts at most once no matter how often it appears.
func SentimentScore(text string) int {
	text = strings.ToLower(text)

	score := 0
	for _, term := range positiveTerms {
		if strings.Contains(text, term) {
			score++
		}
	}
	for _, term := range negativeTerms {
		if strings.Contains(text, term) {
			score--
		}
	}
	return score
}

// NewsScore sums the sentiment of each headline and applies the fixed
// amplification factor.
func NewsScore(headlines []string) int {
	sum := 0
	for _, h := range headlines {
		sum += SentimentScore(h)
	}
	return sum * NewsAmplification
}
