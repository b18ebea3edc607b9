package validate

// spellingStopwords are common words a review model keeps flagging as typos.
// A spelling issue whose original text lower-cases into this set is rejected
// outright.
var spellingStopwords = map[string]struct{}{}

func init() {
	words := []string{
		// articles, conjunctions, prepositions
		"a", "an", "the", "and", "or", "but", "nor", "so", "yet",
		"of", "in", "on", "at", "to", "for", "with", "by", "from",
		"as", "into", "onto", "over", "under", "above", "below", "about", "after",
		"before", "between", "during", "through", "until", "upon",
		// pronouns
		"i", "you", "he", "she", "it", "we", "they",
		"me", "him", "her", "us", "them",
		"my", "your", "his", "its", "our", "their",
		"this", "that", "these", "those", "who", "whom", "which", "what",
		// auxiliary and common verbs
		"is", "am", "are", "was", "were", "be", "been", "being",
		"do", "does", "did", "have", "has", "had",
		"can", "could", "will", "would", "shall", "should", "may", "might", "must",
		// digits as words
		"zero", "one", "two", "three", "four", "five",
		"six", "seven", "eight", "nine", "ten",
		// frequent short fillers
		"if", "then", "else", "not", "no", "all", "any", "each",
		"how", "when", "where", "why", "also", "than", "too", "very",
	}
	for _, w := range words {
		spellingStopwords[w] = struct{}{}
	}
}

func isSpellingStopword(word string) bool {
	_, ok := spellingStopwords[word]
	return ok
}
