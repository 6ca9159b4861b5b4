package assistant

import (
	"encoding/json"
	"regexp"
	"strings"
)

var commandRe = regexp.MustCompile(`#COMMAND\s+(\w+)(.*)`)

// ParseCommand pulls an explicit `#COMMAND name {json args}` request out
// of a message. Power users and the intent model both use this form.
func ParseCommand(text string) (string, map[string]any, bool) {
	match := commandRe.FindStringSubmatch(text)
	if match == nil {
		return "", nil, false
	}

	name := match[1]
	argsRaw := strings.TrimSpace(match[2])

	args := map[string]any{}
	if argsRaw != "" {
		if err := json.Unmarshal([]byte(argsRaw), &args); err != nil {
			args = map[string]any{}
		}
	}

	return name, args, true
}
