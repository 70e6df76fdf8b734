package sentiment

import "coindeck/internal/domain"

// Classify annotates each item with a polarity label derived from its
// title alone. Length and order of the input are preserved.
func Classify(scorer Scorer, items []domain.NewsItem) []domain.NewsItem {
	out := make([]domain.NewsItem, len(items))
	for i, item := range items {
		item.Sentiment = Label(scorer.Score(item.Title))
		out[i] = item
	}
	return out
}

// Label maps a polarity score to its display label. A score of exactly
// zero is Neutral.
func Label(score float64) domain.Sentiment {
	switch {
	case score > 0:
		return domain.SentimentPositive
	case score < 0:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}
