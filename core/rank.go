package core

import (
	"sort"

	"github.com/huangsam/rideintegrity/schema"
)

// RankPlatforms sorts platforms by their integrity score in descending order
// and returns the top 'limit' platforms. A limit of zero or less keeps every
// platform. Ties keep their input order.
func RankPlatforms(scores []schema.PlatformScore, limit int) []schema.PlatformScore {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	if limit > 0 && len(scores) > limit {
		return scores[:limit]
	}
	return scores
}

// RankImportances sorts feature importances in descending order.
func RankImportances(importances []schema.FeatureImportance) []schema.FeatureImportance {
	sort.SliceStable(importances, func(i, j int) bool {
		return importances[i].Importance > importances[j].Importance
	})
	return importances
}
