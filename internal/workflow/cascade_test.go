package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCascadeActionsHappyPath(t *testing.T) {
	text := `Strategic brief: case A1 has a deadline risk.

ACTIONS:
[{"label": "File motion", "reason": "deadline in 3 days", "action_type": "motion", "case_number": "A1", "urgency": "this_week"}]`

	brief, actions := parseCascadeActions(text)

	assert.Contains(t, brief, "Strategic brief")
	require.Len(t, actions, 1)
	assert.Equal(t, "File motion", actions[0].Label)
	assert.Equal(t, "A1", actions[0].CaseNumber)
	assert.Equal(t, "this_week", actions[0].Urgency)
}

func TestParseCascadeActionsNoMarkerReturnsWholeTextAsBrief(t *testing.T) {
	text := "Just a plain brief with no actions section."

	brief, actions := parseCascadeActions(text)

	assert.Equal(t, text, brief)
	assert.Nil(t, actions)
}

func TestParseCascadeActionsMalformedJSONDegradesToNilActions(t *testing.T) {
	text := "Brief text.\nACTIONS:\nnot valid json at all"

	brief, actions := parseCascadeActions(text)

	assert.Contains(t, brief, "Brief text")
	assert.Nil(t, actions)
}

func TestParseCascadeActionsToleratesProseWrappedJSON(t *testing.T) {
	text := `Brief.
ACTIONS:
Here you go: [{"label": "Check motion", "reason": "r", "action_type": "review", "urgency": "routine"}] -- end`

	_, actions := parseCascadeActions(text)

	require.Len(t, actions, 1)
	assert.Equal(t, "Check motion", actions[0].Label)
}
