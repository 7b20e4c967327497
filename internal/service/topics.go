package service

import (
	"regexp"
	"strings"
)

const (
	maxPostTopics  = 12
	maxGroupTopics = 10
	maxTopicLength = 40
)

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_-]{2,30})`)

// normalizePostTopics merges explicit topics with hashtags parsed from
// the post content, deduplicated in first-seen order and capped.
func normalizePostTopics(topics []string, content string) []string {
	normalized := appendUniqueTopics(nil, topics, 0)

	for _, match := range hashtagPattern.FindAllStringSubmatch(content, -1) {
		normalized = appendUniqueTopics(normalized, []string{match[1]}, 0)
	}

	return clipTopics(normalized, maxPostTopics)
}

// normalizeGroupTopics merges explicit topics with tokens split from a
// fallback text (typically the description), deduplicated and capped.
func normalizeGroupTopics(topics []string, fallback string) []string {
	normalized := appendUniqueTopics(nil, topics, 0)

	tokens := strings.FieldsFunc(fallback, func(r rune) bool {
		return r == ',' || r == '#' || r == ';'
	})
	normalized = appendUniqueTopics(normalized, tokens, 2)

	return clipTopics(normalized, maxGroupTopics)
}

func appendUniqueTopics(dst []string, topics []string, minLength int) []string {
	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" || len([]rune(topic)) < minLength {
			continue
		}
		if containsFold(dst, topic) {
			continue
		}
		dst = append(dst, topic)
	}
	return dst
}

func clipTopics(topics []string, max int) []string {
	for i, topic := range topics {
		if runes := []rune(topic); len(runes) > maxTopicLength {
			topics[i] = string(runes[:maxTopicLength])
		}
	}
	if len(topics) > max {
		topics = topics[:max]
	}
	return topics
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// sharedInterests returns the viewer's interests that also appear in
// other, compared case-insensitively, preserving the viewer's casing
// and order.
func sharedInterests(viewer, other []string) []string {
	otherSet := make(map[string]struct{}, len(other))
	for _, item := range other {
		otherSet[strings.ToLower(item)] = struct{}{}
	}
	var shared []string
	for _, item := range viewer {
		if _, ok := otherSet[strings.ToLower(item)]; ok {
			shared = append(shared, item)
		}
	}
	return shared
}
