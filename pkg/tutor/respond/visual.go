package respond

import (
	"regexp"
	"strconv"
	"strings"

	"agora-be/pkg/tutor/state"
)

// ActionCreateNote places a sticky note on the student's whiteboard
const ActionCreateNote = "CREATE_NOTE"

var visualPattern = regexp.MustCompile(`\[VISUAL:\s*CREATE_NOTE\s*\|\s*text:\s*"([^"]+)"\s*\|\s*x:\s*(\d+)\s*\|\s*y:\s*(\d+)\]`)

// ExtractVisualActions pulls whiteboard directives out of a generated
// response, returning the response with the directives stripped plus the
// structured actions. Malformed directives are left in the text untouched.
func ExtractVisualActions(response string) (string, []state.VisualAction) {
	matches := visualPattern.FindAllStringSubmatch(response, -1)

	var actions []state.VisualAction
	for _, match := range matches {
		x, _ := strconv.Atoi(match[2])
		y, _ := strconv.Atoi(match[3])
		actions = append(actions, state.VisualAction{
			Type: ActionCreateNote,
			Text: match[1],
			X:    x,
			Y:    y,
		})
	}

	cleaned := strings.TrimSpace(visualPattern.ReplaceAllString(response, ""))
	return cleaned, actions
}
