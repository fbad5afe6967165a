package interview

import "strings"

// Naming phrases that commonly precede a self-reported name. Multi-word
// phrases are matched against the joined transcript; the candidate name is
// taken as the first word that follows.
var namePhrases = []string{
	"my name is",
	"i am",
	"this is",
	"name's",
	"i'm",
	"im",
}

// ExtractName scans a transcript for a self-reported name. It returns the
// name and true on a hit, or "" and false when no naming phrase matched.
// Extraction is best-effort; callers should treat a miss as normal.
func ExtractName(transcript string) (string, bool) {
	words := strings.Fields(transcript)
	if len(words) == 0 {
		return "", false
	}
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}

	for _, phrase := range namePhrases {
		parts := strings.Fields(phrase)
		for i := 0; i+len(parts) < len(words); i++ {
			if !matchAt(lower, i, parts) {
				continue
			}
			name := strings.Trim(words[i+len(parts)], ".,!?")
			if name == "" {
				continue
			}
			return name, true
		}
	}
	return "", false
}

func matchAt(lower []string, at int, parts []string) bool {
	for j, p := range parts {
		if lower[at+j] != p {
			return false
		}
	}
	return true
}
