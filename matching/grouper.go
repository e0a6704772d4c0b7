package matching

import (
	"github.com/courtmate/matchmaking-system/models"
)

// ClusterByOverlap partitions the pool into clusters of schedules that overlap
// the anchor and pairwise overlap every member already placed in the cluster.
// Placement is greedy first-fit in pool order: a schedule joins the first
// cluster whose every current member it overlaps, otherwise it seeds a new
// cluster. This is not a maximum-clique search; with non-transitive overlaps
// (A-B and B-C overlap but A-C do not) a larger grouping may be missed.
func ClusterByOverlap(anchor *models.Schedule, pool []*models.Schedule) [][]*models.Schedule {
	var clusters [][]*models.Schedule

	for _, schedule := range pool {
		if !schedule.OverlapsWith(anchor) {
			continue
		}

		placed := false
		for i, cluster := range clusters {
			if overlapsAll(schedule, cluster) {
				clusters[i] = append(cluster, schedule)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []*models.Schedule{schedule})
		}
	}

	return clusters
}

func overlapsAll(schedule *models.Schedule, cluster []*models.Schedule) bool {
	for _, member := range cluster {
		if !schedule.OverlapsWith(member) {
			return false
		}
	}
	return true
}
