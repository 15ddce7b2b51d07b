package converter

import "regexp"

var youtubeURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.?be)/.+$`)

// Checked in order: watch and path forms, short links, embeds
var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11}).*`),
	regexp.MustCompile(`(?:youtu\.be/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:embed/)([0-9A-Za-z_-]{11})`),
}

// IsYouTubeURL reports whether url points at youtube.com or youtu.be
func IsYouTubeURL(url string) bool {
	return youtubeURLPattern.MatchString(url)
}

// ExtractYouTubeID returns the 11 character video id, or "" if none is found
func ExtractYouTubeID(url string) string {
	for _, pattern := range youtubeIDPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}
