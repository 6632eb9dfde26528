package memstore

import (
	"sort"

	"github.com/lexibird/lexibird-api/internal/domain"
)

// Deterministic orderings for list results. Map iteration order is random;
// stable output keeps persister snapshots and tests reproducible.

func sortUsers(users []*domain.User) {
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID.String() < users[j].ID.String()
	})
}

func sortKeywords(keywords []*domain.Keyword) {
	sort.Slice(keywords, func(i, j int) bool {
		if !keywords[i].CreatedAt.Equal(keywords[j].CreatedAt) {
			return keywords[i].CreatedAt.Before(keywords[j].CreatedAt)
		}
		return keywords[i].ID.String() < keywords[j].ID.String()
	})
}

func sortStatesByKeyword(states []*domain.KeywordSRSState) {
	sort.Slice(states, func(i, j int) bool {
		return states[i].KeywordID.String() < states[j].KeywordID.String()
	})
}

// sortStatesByDue orders by NextReviewAt ascending with the keyword ID as
// the tie-break, the order the due-item contract requires.
func sortStatesByDue(states []*domain.KeywordSRSState) {
	sort.Slice(states, func(i, j int) bool {
		if !states[i].NextReviewAt.Equal(states[j].NextReviewAt) {
			return states[i].NextReviewAt.Before(states[j].NextReviewAt)
		}
		return states[i].KeywordID.String() < states[j].KeywordID.String()
	})
}

func sortItemsByKeyword(items []*domain.ReviewItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].KeywordID.String() < items[j].KeywordID.String()
	})
}

func sortSessionsByStart(sessions []*domain.ReviewSession) {
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].StartedAt.Before(sessions[j].StartedAt)
		}
		return sessions[i].ID.String() < sessions[j].ID.String()
	})
}
