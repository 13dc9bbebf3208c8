package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFindsEachPatternKind(t *testing.T) {
	text := `The defendant is charged under § 16-13-30. See also 384 U.S. 436, and the
	reasoning in 86 S.Ct. 1602 applies here.`

	got := Extract(text)

	assert.Contains(t, got, "§ 16-13-30")
	assert.Contains(t, got, "384 U.S. 436")
	assert.Contains(t, got, "86 S.Ct. 1602")
}

func TestExtractDeduplicatesPreservingFirstSeenOrder(t *testing.T) {
	text := "First § 16-13-30, then again § 16-13-30, then 384 U.S. 436."

	got := Extract(text)

	assert.Equal(t, []string{"§ 16-13-30", "384 U.S. 436"}, got)
}

func TestExtractReturnsNilForCleanText(t *testing.T) {
	got := Extract("No legal citations appear in this plain-language client letter.")
	assert.Empty(t, got)
}
