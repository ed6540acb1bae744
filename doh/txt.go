package doh

import (
	"regexp"
	"strings"
)

// nolint:gochecknoglobals
var quotedSegment = regexp.MustCompile(`"([^"]*)"`)

// NormalizeTXT joins the quoted character-strings of a TXT presentation value and removes all whitespace.
// Unquoted values only lose surrounding quotes. The result may be empty.
func NormalizeTXT(data string) string {
	s := strings.TrimSpace(data)

	if matches := quotedSegment.FindAllStringSubmatch(s, -1); len(matches) > 0 {
		var sb strings.Builder

		for _, m := range matches {
			sb.WriteString(m[1])
		}

		s = sb.String()
	} else {
		s = strings.Trim(s, `"`)
	}

	return strings.Join(strings.Fields(s), "")
}
