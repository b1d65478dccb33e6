package artwork

import (
	"regexp"
	"strconv"
)

var (
	sizeQuery  = regexp.MustCompile(`([?&]size=)\d+`)
	sizeSquare = regexp.MustCompile(`\d+x\d+`)
	sizeSuffix = regexp.MustCompile(`(?i)-\d+(\.(jpg|jpeg|png|webp))$`)
)

// PreferSize rewrites the size hint embedded in an artwork URL so the
// backend serves the requested resolution. URLs without a recognised hint
// are returned unchanged.
func PreferSize(url string, size int) string {
	if url == "" || size <= 0 {
		return url
	}
	n := strconv.Itoa(size)

	switch {
	case sizeQuery.MatchString(url):
		return replaceFirst(sizeQuery, url, "${1}"+n)
	case sizeSquare.MatchString(url):
		return replaceFirst(sizeSquare, url, n+"x"+n)
	case sizeSuffix.MatchString(url):
		return sizeSuffix.ReplaceAllString(url, "-"+n+"${1}")
	}
	return url
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	var out []byte
	out = re.ExpandString(out, repl, s, loc)
	return s[:loc[0]] + string(out) + s[loc[1]:]
}
