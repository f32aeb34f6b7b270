package pipeline

import "strings"

// colorBuckets map marketing paint names onto the plain colour words
// used in SMS copy. Order matters: the first bucket containing a
// keyword wins.
var colorBuckets = []struct {
	name     string
	keywords []string
}{
	{"Red", []string{"red", "crimson", "scarlet", "burgundy", "ruby", "cherry", "rose"}},
	{"Blue", []string{"blue", "navy", "azure", "cobalt", "sapphire", "indigo", "teal"}},
	{"White", []string{"white", "pearl", "ivory", "cream", "snow", "frost"}},
	{"Black", []string{"black", "ebony", "coal", "charcoal", "onyx", "midnight"}},
	{"Silver", []string{"silver", "grey", "gray", "platinum", "steel", "graphite", "titanium"}},
	{"Green", []string{"green", "emerald", "forest", "sage", "olive", "lime"}},
	{"Gold", []string{"yellow", "gold", "amber", "champagne", "bronze"}},
	{"Orange", []string{"orange", "copper", "sunset", "rust"}},
	{"Purple", []string{"purple", "violet", "magenta", "plum"}},
	{"Brown", []string{"brown", "tan", "beige", "mocha", "coffee", "chocolate"}},
}

var plainColors = map[string]bool{
	"red": true, "blue": true, "white": true, "black": true, "silver": true,
	"green": true, "yellow": true, "orange": true, "purple": true, "brown": true,
}

// SimplifyColor reduces a manufacturer paint name like "Soul Red
// Crystal Metallic" to a single colour word, or "" when nothing
// recognizable appears.
func SimplifyColor(name string) string {
	color := strings.ToLower(strings.TrimSpace(name))
	if color == "" {
		return ""
	}
	for _, bucket := range colorBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(color, kw) {
				return bucket.name
			}
		}
	}
	for _, word := range strings.Fields(color) {
		if plainColors[word] {
			return strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return ""
}
