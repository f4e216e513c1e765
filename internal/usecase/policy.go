package usecase

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/portfolio-stats/internal/domain"
)

// StrategyResults holds the figure produced by each commit estimation strategy.
// A zero means the strategy failed or found nothing.
type StrategyResults struct {
	Events           int
	ContributorStats int
	Search           int
	RepoMetrics      int
}

// Max returns the largest positive result, or 0 when every strategy came back empty.
func (r StrategyResults) Max() int {
	best := 0
	for _, v := range []int{r.Events, r.ContributorStats, r.Search, r.RepoMetrics} {
		if v > best {
			best = v
		}
	}
	return best
}

// Reconcile turns the strategy results into the displayed commit total.
// Anything above the confidence threshold is trusted as is; otherwise the
// profile estimate and the floor are taken into account.
func Reconcile(results StrategyResults, profileEstimate int, h Heuristics) int {
	best := results.Max()
	if best > h.ConfidenceThreshold {
		return best
	}
	return max(best, profileEstimate, h.FloorCommitEstimate)
}

// RepoMetricsEstimate guesses commits from repository age and engagement.
// Older and more starred or forked repositories are assumed to hold more commits.
func RepoMetricsEstimate(repos []domain.Repository, now time.Time, h Heuristics) int {
	total := 0
	for _, repo := range repos {
		age := math.Ceil(ageInDays(repo, now))
		activity := math.Min(1, float64(repo.Stars+2*repo.Forks+1)/h.ActivitySaturation)
		estimate := int(math.Ceil(age * activity * h.MetricsDailyRate))
		total += min(estimate, h.PerRepoCommitCap)
	}
	return total
}

// ProfileEstimate is the coarse estimate used when no strategy is confident:
// non-fork repositories times the average repository age.
func ProfileEstimate(repos []domain.Repository, now time.Time, h Heuristics) int {
	ages := make(stats.Float64Data, 0, len(repos))
	for _, repo := range repos {
		ages = append(ages, ageInDays(repo, now))
	}
	avgAge, err := ages.Mean()
	if err != nil {
		// stats.ErrEmptyInput: no repositories.
		avgAge = 0
	}
	return int(math.Ceil(float64(countNonForks(repos)) * avgAge * h.ProfileDailyRate))
}

// CountTechnologies counts the distinct primary languages across repos.
// It never reports fewer than one technology.
func CountTechnologies(repos []domain.Repository, h Heuristics) int {
	if len(repos) == 0 {
		return max(1, h.DefaultTechnologies)
	}
	languages := make(map[string]struct{})
	for _, repo := range repos {
		if repo.Language != "" {
			languages[repo.Language] = struct{}{}
		}
	}
	return max(1, len(languages))
}

// SelectFeatured picks the n most starred non-fork repositories,
// breaking ties with the most recent update.
func SelectFeatured(repos []domain.Repository, n int) []domain.Repository {
	featured := make([]domain.Repository, 0, len(repos))
	for _, repo := range repos {
		if !repo.Fork {
			featured = append(featured, repo)
		}
	}
	sort.SliceStable(featured, func(i, j int) bool {
		if featured[i].Stars != featured[j].Stars {
			return featured[i].Stars > featured[j].Stars
		}
		return featured[i].UpdatedAt.After(featured[j].UpdatedAt)
	})
	if n >= 0 && len(featured) > n {
		featured = featured[:n]
	}
	return featured
}

// pushCommits sums the commits carried by push events.
func pushCommits(events []domain.ActivityEvent) int {
	total := 0
	for _, event := range events {
		if event.IsPush() {
			total += event.Commits
		}
	}
	return total
}

// userTotal returns login's commit total from a repository's contributor stats.
func userTotal(contributors []domain.ContributionStat, login string) int {
	for _, c := range contributors {
		if strings.EqualFold(c.Login, login) {
			return c.Total
		}
	}
	return 0
}

func countNonForks(repos []domain.Repository) int {
	n := 0
	for _, repo := range repos {
		if !repo.Fork {
			n++
		}
	}
	return n
}

func ageInDays(repo domain.Repository, now time.Time) float64 {
	return math.Max(0, now.Sub(repo.CreatedAt).Hours()/24)
}
