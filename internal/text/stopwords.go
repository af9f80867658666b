package text

// stopWords is the English stop-word list applied during token filtering.
// Cue words the intent detectors rely on (group, grouped, top, first, last,
// order, sort, count) are deliberately absent. "by" stays listed: grouping
// is cued by "group"/"grouped", and dropping "by" keeps it from shadowing
// the column token after a sort cue.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
		"am", "do", "does", "did", "have", "has", "had", "having",
		"i", "me", "my", "we", "our", "you", "your", "he", "him", "his",
		"she", "her", "it", "its", "they", "them", "their", "this", "that",
		"these", "those", "what", "which", "who", "whom", "whose",
		"of", "in", "on", "at", "by", "to", "from", "with", "for", "as", "into",
		"where", "most",
		"about", "against", "between", "through", "during", "before",
		"above", "below", "up", "down", "out", "off", "over", "under",
		"again", "further", "then", "once", "here", "there", "when",
		"why", "how", "all", "any", "both", "each", "few", "other", "some",
		"such", "no", "nor", "not", "only", "own", "same", "so", "than",
		"too", "very", "can", "will", "just", "should", "would", "could",
		"and", "but", "if", "or", "because", "while", "until",
		"please", "show", "give", "get", "list", "find", "display", "want",
	} {
		stopWords[w] = struct{}{}
	}
}
