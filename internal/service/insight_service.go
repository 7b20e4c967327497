package service

import (
	"fmt"
	"sort"
	"strings"

	"friendnet/config"
	"friendnet/pkg/cache"
)

// InsightBucket is one histogram entry.
type InsightBucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NetworkInsights summarizes the viewer's immediate network.
type NetworkInsights struct {
	FriendCount     int             `json:"friend_count"`
	IncomingCount   int             `json:"incoming_count"`
	OutgoingCount   int             `json:"outgoing_count"`
	SuggestionCount int             `json:"suggestion_count"`
	TopCities       []InsightBucket `json:"top_cities"`
	TopInterests    []InsightBucket `json:"top_interests"`
}

// InsightService aggregates network statistics for a viewer.
type InsightService struct {
	users       UserStore
	graph       GraphStore
	suggestions *SuggestionService
	cfg         config.EngineConfig
}

// NewInsightService creates an InsightService.
func NewInsightService(users UserStore, graph GraphStore, suggestions *SuggestionService, cfg config.EngineConfig) *InsightService {
	return &InsightService{users: users, graph: graph, suggestions: suggestions, cfg: cfg}
}

// Insights returns counters plus top-K histograms over the viewer's
// friends' cities and interests. Results are cached per viewer and
// invalidated by relationship transitions.
func (s *InsightService) Insights(viewerID uint) (*NetworkInsights, error) {
	var cached NetworkInsights
	if cache.GetInsights(viewerID, &cached) {
		return &cached, nil
	}

	if _, err := s.users.GetByID(viewerID); err != nil {
		return nil, fmt.Errorf("%w: viewer %d", ErrNotFound, viewerID)
	}

	friendIDs, err := s.graph.FriendIDs(viewerID)
	if err != nil {
		return nil, unavailable("friend ids", err)
	}
	incoming, err := s.graph.IncomingRequestSenderIDs(viewerID)
	if err != nil {
		return nil, unavailable("incoming requests", err)
	}
	outgoing, err := s.graph.OutgoingRequestTargetIDs(viewerID)
	if err != nil {
		return nil, unavailable("outgoing requests", err)
	}

	suggested, err := s.suggestions.FriendSuggestions(viewerID, SuggestionFilters{IncludeInterestMatches: true})
	if err != nil {
		return nil, err
	}

	friends, err := s.users.UsersByIDs(friendIDs)
	if err != nil {
		return nil, unavailable("friends", err)
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].ID < friends[j].ID })

	cities := make([]string, 0, len(friends))
	var interests []string
	for _, friend := range friends {
		if city := strings.TrimSpace(friend.City); city != "" {
			cities = append(cities, city)
		}
		interests = append(interests, friend.Interests...)
	}

	insights := &NetworkInsights{
		FriendCount:     len(friendIDs),
		IncomingCount:   len(incoming),
		OutgoingCount:   len(outgoing),
		SuggestionCount: len(suggested),
		TopCities:       topK(cities, s.cfg.InsightTopK),
		TopInterests:    topK(interests, s.cfg.InsightTopK),
	}

	cache.SetInsights(viewerID, insights, s.cfg.CacheTTL)
	return insights, nil
}

// topK counts value frequencies and keeps the k most frequent. Ties
// keep first-encountered order, so equal counts rank deterministically.
func topK(values []string, k int) []InsightBucket {
	counts := make(map[string]int, len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	buckets := make([]InsightBucket, 0, len(order))
	for _, v := range order {
		buckets = append(buckets, InsightBucket{Value: v, Count: counts[v]})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})

	if len(buckets) > k {
		buckets = buckets[:k]
	}
	return buckets
}
