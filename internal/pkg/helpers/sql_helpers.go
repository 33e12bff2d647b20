package helpers

import "strings"

// NullableString returns nil for blank input, otherwise a pointer to the trimmed value.
func NullableString(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// EscapeLikePattern escapes the LIKE/ILIKE metacharacters %, _ and the
// backslash escape character itself so s matches literally.
func EscapeLikePattern(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
