// Package rank selects the best matching news article for a topic by
// lexical overlap scoring.
package rank

import (
	"math"
	"regexp"
	"strings"
)

// Candidate is one article from the news search feed. Ephemeral: lives
// for a single ranking call, never persisted.
type Candidate struct {
	Title        string
	Link         string
	Snippet      string
	MediaURL     string
	EnclosureURL string
}

// Result carries the preview image and source link of the winning
// candidate. Empty strings mean no usable candidate survived.
type Result struct {
	ImageURL   string
	SourceLink string
}

var (
	wordRe = regexp.MustCompile(`[a-z0-9]+`)

	// Hosts that produce watch-page noise rather than reportable
	// articles: video-sharing platforms and sports-streaming sites.
	excludedHostRe = regexp.MustCompile(`(?i)(?:^|\.|//)(?:youtube\.com|youtu\.be|dailymotion\.com|vimeo\.com|twitch\.tv|tiktok\.com|espn\.com|skysports\.com|sportingnews\.com|cbssports\.com)(?:/|$)`)
)

var excludedTitlePhrases = []string{"how to watch", "live stream"}

// tokens splits text into a set of lowercase alphanumeric runs.
func tokens(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		out[w] = struct{}{}
	}
	return out
}

// Similarity scores the lexical overlap of two texts as
// |intersection| / sqrt(|A|*|B|), a cosine-like measure over boolean
// term sets. Always in [0,1]; 0 when either side has no tokens.
func Similarity(a, b string) float64 {
	sa, sb := tokens(a), tokens(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(sa))*float64(len(sb)))
}

// usable reports whether a candidate is worth scoring at all.
func usable(c Candidate) bool {
	if strings.TrimSpace(c.Title) == "" {
		return false
	}
	title := strings.ToLower(c.Title)
	for _, phrase := range excludedTitlePhrases {
		if strings.Contains(title, phrase) {
			return false
		}
	}
	return !excludedHostRe.MatchString(c.Link)
}

// previewImage extracts a candidate's preview image: embedded media URL
// first, then enclosure URL, else empty.
func previewImage(c Candidate) string {
	if c.MediaURL != "" {
		return c.MediaURL
	}
	return c.EnclosureURL
}

// Rank scores every usable candidate against topic+description and
// returns the single best match. Ties go to the first-seen candidate
// so results are deterministic regardless of feed ordering quirks.
func Rank(topic, description string, candidates []Candidate) Result {
	query := strings.TrimSpace(topic + " " + description)

	best := -1
	bestScore := -1.0
	for i, c := range candidates {
		if !usable(c) {
			continue
		}
		score := Similarity(query, c.Title+" "+c.Snippet)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return Result{}
	}
	winner := candidates[best]
	return Result{
		ImageURL:   previewImage(winner),
		SourceLink: winner.Link,
	}
}
