package respond

import (
	"reflect"
	"testing"

	"agora-be/pkg/tutor/state"
)

func TestExtractVisualActions(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		wantCleaned string
		wantActions []state.VisualAction
	}{
		{
			name:        "no directive",
			response:    "What do you think osmosis means?",
			wantCleaned: "What do you think osmosis means?",
			wantActions: nil,
		},
		{
			name:        "single directive",
			response:    `Good question! [VISUAL: CREATE_NOTE | text: "Osmosis = water movement" | x: 100 | y: 200] Keep going.`,
			wantCleaned: "Good question!  Keep going.",
			wantActions: []state.VisualAction{
				{Type: ActionCreateNote, Text: "Osmosis = water movement", X: 100, Y: 200},
			},
		},
		{
			name:        "directive with loose spacing",
			response:    `[VISUAL:  CREATE_NOTE  |  text: "hint"  |  x: 5  |  y: 10]`,
			wantCleaned: "",
			wantActions: []state.VisualAction{
				{Type: ActionCreateNote, Text: "hint", X: 5, Y: 10},
			},
		},
		{
			name: "multiple directives",
			response: `Think about it. [VISUAL: CREATE_NOTE | text: "A" | x: 1 | y: 2]` +
				` And also. [VISUAL: CREATE_NOTE | text: "B" | x: 3 | y: 4]`,
			wantCleaned: "Think about it.  And also.",
			wantActions: []state.VisualAction{
				{Type: ActionCreateNote, Text: "A", X: 1, Y: 2},
				{Type: ActionCreateNote, Text: "B", X: 3, Y: 4},
			},
		},
		{
			name:        "malformed directive left in text",
			response:    `[VISUAL: CREATE_NOTE | text: no quotes | x: 1 | y: 2] hm`,
			wantCleaned: `[VISUAL: CREATE_NOTE | text: no quotes | x: 1 | y: 2] hm`,
			wantActions: nil,
		},
		{
			name:        "negative coordinates not matched",
			response:    `[VISUAL: CREATE_NOTE | text: "n" | x: -1 | y: 2]`,
			wantCleaned: `[VISUAL: CREATE_NOTE | text: "n" | x: -1 | y: 2]`,
			wantActions: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, actions := ExtractVisualActions(tt.response)
			if cleaned != tt.wantCleaned {
				t.Errorf("cleaned = %q, want %q", cleaned, tt.wantCleaned)
			}
			if !reflect.DeepEqual(actions, tt.wantActions) {
				t.Errorf("actions = %+v, want %+v", actions, tt.wantActions)
			}
		})
	}
}
