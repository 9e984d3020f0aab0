package fanout

import "regexp"

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)

// ScanMentions extracts the distinct @username tokens from post text, in
// order of first appearance. Resolution against real users happens in the
// mention handler; this is only the pattern scan.
func ScanMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	usernames := make([]string, 0, len(matches))
	for _, m := range matches {
		username := m[1]
		if _, ok := seen[username]; ok {
			continue
		}
		seen[username] = struct{}{}
		usernames = append(usernames, username)
	}
	return usernames
}
