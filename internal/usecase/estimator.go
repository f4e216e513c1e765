// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/portfolio-stats/internal/domain"
	"github.com/naka-gawa/portfolio-stats/internal/gateway"
)

// Estimator is the use case for estimating GitHub stats.
// It orchestrates the fetching of data and applies the heuristics to it.
// None of its methods fail: upstream problems degrade to default figures.
type Estimator struct {
	fetcher    gateway.Fetcher
	heuristics Heuristics
	logger     logrus.FieldLogger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewEstimator creates a new Estimator instance.
func NewEstimator(fetcher gateway.Fetcher, heuristics Heuristics, logger logrus.FieldLogger) *Estimator {
	return &Estimator{
		fetcher:    fetcher,
		heuristics: heuristics,
		logger:     logger,
		now:        time.Now,
		sleep:      pause,
	}
}

// Heuristics returns the constants the estimator was configured with.
func (e *Estimator) Heuristics() Heuristics {
	return e.heuristics
}

func (e *Estimator) isPinned(login string) bool {
	return e.heuristics.PinnedAccount != "" && strings.EqualFold(login, e.heuristics.PinnedAccount)
}

// EstimateTotalCommits estimates the all-time commit count of login.
func (e *Estimator) EstimateTotalCommits(ctx context.Context, login string) int {
	return e.CommitBreakdown(ctx, login).Total
}

// CommitBreakdown runs the four commit estimation strategies concurrently and
// reconciles them. The per-strategy figures are returned for inspection.
func (e *Estimator) CommitBreakdown(ctx context.Context, login string) (breakdown domain.CommitBreakdown) {
	if e.isPinned(login) {
		return domain.CommitBreakdown{Total: e.heuristics.PinnedCommits}
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("panic", r).Error("Error counting total commits")
			breakdown = domain.CommitBreakdown{Total: e.heuristics.FloorCommitEstimate}
		}
	}()

	e.logger.Debugf("Usecase: Estimating total commits of %s...", login)
	repos := e.fetcher.ListRepos(ctx, login, e.heuristics.RepoPageSize)
	now := e.now()

	// Strategies never return errors, so one failing cannot cancel the others.
	var results StrategyResults
	var eg errgroup.Group
	eg.Go(e.isolate("events", &results.Events, func() int {
		return e.eventsEstimate(ctx, login)
	}))
	eg.Go(e.isolate("contributor stats", &results.ContributorStats, func() int {
		return e.contributorStatsTotal(ctx, login, repos)
	}))
	eg.Go(e.isolate("search", &results.Search, func() int {
		return e.fetcher.SearchCommitCount(ctx, login)
	}))
	eg.Go(e.isolate("repo metrics", &results.RepoMetrics, func() int {
		return RepoMetricsEstimate(repos, now, e.heuristics)
	}))
	_ = eg.Wait()

	profileEstimate := ProfileEstimate(repos, now, e.heuristics)
	breakdown = domain.CommitBreakdown{
		Events:           results.Events,
		ContributorStats: results.ContributorStats,
		Search:           results.Search,
		RepoMetrics:      results.RepoMetrics,
		ProfileEstimate:  profileEstimate,
		Total:            Reconcile(results, profileEstimate, e.heuristics),
	}
	e.logger.WithFields(logrus.Fields{
		"events":            breakdown.Events,
		"contributor_stats": breakdown.ContributorStats,
		"search":            breakdown.Search,
		"repo_metrics":      breakdown.RepoMetrics,
		"profile_estimate":  breakdown.ProfileEstimate,
		"total":             breakdown.Total,
	}).Debug("GitHub commit counts")
	return breakdown
}

// isolate wraps a strategy so that a panic is logged and counted as zero.
func (e *Estimator) isolate(strategy string, dst *int, fn func() int) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				e.logger.WithFields(logrus.Fields{"strategy": strategy, "panic": r}).Error("Commit estimation strategy failed")
				*dst = 0
			}
		}()
		*dst = fn()
		return nil
	}
}

// eventsEstimate extrapolates the commits of the recent event feed.
func (e *Estimator) eventsEstimate(ctx context.Context, login string) int {
	events := e.fetcher.ListEvents(ctx, login, e.heuristics.EventPageSize)
	return pushCommits(events) * e.heuristics.EventAmplificationFactor
}

// contributorStatsTotal sums login's commits over the contributor statistics
// of every repository. Repositories are fetched a few at a time with a pause
// between batches to stay clear of the secondary rate limit.
func (e *Estimator) contributorStatsTotal(ctx context.Context, login string, repos []domain.Repository) int {
	size := max(1, e.heuristics.BatchSize)
	total := 0
	for start := 0; start < len(repos); start += size {
		batch := repos[start:min(start+size, len(repos))]
		counts := make([]int, len(batch))

		var eg errgroup.Group
		for i, repo := range batch {
			i, repo := i, repo
			eg.Go(e.isolate("contributor stats "+repo.FullName, &counts[i], func() int {
				return userTotal(e.fetcher.ContributorStats(ctx, repo.FullName), login)
			}))
		}
		_ = eg.Wait()
		for _, c := range counts {
			total += c
		}

		if start+size < len(repos) {
			if err := e.sleep(ctx, e.heuristics.BatchDelay); err != nil {
				e.logger.WithError(err).Debug("Contributor stats interrupted, using partial total")
				break
			}
		}
	}
	return total
}

// EstimatePastYearCommits estimates the commits of the last year. This is the
// figure shown as "total commits" on the site.
func (e *Estimator) EstimatePastYearCommits(ctx context.Context, login string) int {
	h := e.heuristics
	if e.isPinned(login) {
		return h.PinnedCommits
	}
	if events := e.fetcher.ListEvents(ctx, login, h.EventPageSize); len(events) > 0 {
		return max(pushCommits(events)*h.PastYearEventFactor, h.FloorCommitEstimate)
	}
	if repos := e.fetcher.ListRepos(ctx, login, h.RepoPageSize); len(repos) > 0 {
		return max(countNonForks(repos)*h.PastYearCommitsPerRepo, h.FloorCommitEstimate)
	}
	return h.FloorCommitEstimate
}

// pause waits for d unless ctx is done first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
