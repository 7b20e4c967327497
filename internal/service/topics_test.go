package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePostTopicsMergesHashtags(t *testing.T) {
	topics := normalizePostTopics([]string{"travel"}, "Back from the coast #Travel #beach #x")
	// Explicit topics win the casing; one-letter tags are ignored.
	assert.Equal(t, []string{"travel", "beach"}, topics)
}

func TestNormalizePostTopicsCaps(t *testing.T) {
	content := "#one #two #three #four #five #six #seven #eight #nine #ten #eleven #twelve #thirteen"
	topics := normalizePostTopics(nil, content)
	assert.Len(t, topics, maxPostTopics)
}

func TestNormalizePostTopicsClipsLongTopics(t *testing.T) {
	long := strings.Repeat("a", 60)
	topics := normalizePostTopics([]string{long}, "")
	assert.Len(t, topics[0], maxTopicLength)
}

func TestNormalizeGroupTopicsFallsBackToDescription(t *testing.T) {
	topics := normalizeGroupTopics(nil, "board games; chess, strategy")
	assert.Equal(t, []string{"board games", "chess", "strategy"}, topics)
}

func TestNormalizeGroupTopicsSkipsShortTokens(t *testing.T) {
	topics := normalizeGroupTopics([]string{"go"}, "a, b, art")
	assert.Equal(t, []string{"go", "art"}, topics)
}

func TestSharedInterestsKeepsViewerCasing(t *testing.T) {
	shared := sharedInterests(
		[]string{"Chess", "Hiking", "Cooking"},
		[]string{"chess", "COOKING", "gaming"},
	)
	assert.Equal(t, []string{"Chess", "Cooking"}, shared)
}

func TestSharedInterestsEmpty(t *testing.T) {
	assert.Empty(t, sharedInterests([]string{"chess"}, nil))
	assert.Empty(t, sharedInterests(nil, []string{"chess"}))
}
