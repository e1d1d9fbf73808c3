package notification

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {{ key }} tokens. Whitespace around the
// key is tolerated; keys are case-sensitive identifiers.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// Render substitutes {{ key }} placeholders in content with the
// stringified values from vars. All occurrences of a key are replaced.
// Keys absent from vars are left untouched, literal braces included,
// so an unresolved placeholder is visible in the delivered message.
// No escaping, nesting or conditionals.
func Render(content string, vars map[string]interface{}) string {
	if len(vars) == 0 || !strings.Contains(content, "{{") {
		return content
	}
	return placeholderPattern.ReplaceAllStringFunc(content, func(token string) string {
		key := placeholderPattern.FindStringSubmatch(token)[1]
		v, ok := vars[key]
		if !ok {
			return token
		}
		return fmt.Sprintf("%v", v)
	})
}

// ExtractVariables returns the placeholder names found in content, in
// order of first appearance, without duplicates. Used to populate a
// template's variables list when the caller does not supply one.
func ExtractVariables(content string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
