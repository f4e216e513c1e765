package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/portfolio-stats/internal/domain"
	"github.com/naka-gawa/portfolio-stats/internal/gateway"
)

// Stats builds the headline figures of the site for login.
func (e *Estimator) Stats(ctx context.Context, login string) domain.StatsEstimate {
	h := e.heuristics
	if e.isPinned(login) {
		return h.PinnedStats
	}

	// A nil repository list is a failed fetch; an empty one is a real answer.
	repos := e.fetcher.ListRepos(ctx, login, h.RepoPageSize)
	if repos == nil {
		e.logger.WithField("user", login).Warn("Failed to fetch GitHub repositories, using fallback stats")
		return h.FallbackStats
	}

	return domain.StatsEstimate{
		Projects:     len(repos),
		TotalCommits: e.EstimatePastYearCommits(ctx, login),
		Technologies: CountTechnologies(repos, h),
		Hackathons:   h.Hackathons,
	}
}

// FeaturedRepos returns the count most starred non-fork repositories of login.
// When no repository can be fetched the sample projects are returned instead
// so the page never renders an empty section.
func (e *Estimator) FeaturedRepos(ctx context.Context, login string, count int) []domain.Repository {
	if count <= 0 {
		count = e.heuristics.FeaturedCount
	}
	repos := e.fetcher.ListRepos(ctx, login, e.heuristics.RepoPageSize)
	if len(repos) == 0 {
		e.logger.WithField("user", login).Warn("No repositories fetched. Using fallback data.")
		return SampleProjects(login, count, e.now())
	}
	return SelectFeatured(repos, count)
}

// Profile gathers the figures of the profile card.
func (e *Estimator) Profile(ctx context.Context, login string) domain.Profile {
	var profile domain.Profile
	var repos []domain.Repository
	var contributions *gateway.Contributions

	var eg errgroup.Group
	eg.Go(func() error {
		profile.User = e.fetcher.GetUser(ctx, login)
		return nil
	})
	eg.Go(func() error {
		repos = e.fetcher.ListRepos(ctx, login, e.heuristics.RepoPageSize)
		return nil
	})
	eg.Go(func() error {
		contributions = e.fetcher.ContributionSummary(ctx, login)
		return nil
	})
	_ = eg.Wait()

	for _, repo := range repos {
		profile.TotalStars += repo.Stars
		profile.TotalForks += repo.Forks
	}
	profile.ContributedTo = len(repos)
	if contributions != nil {
		profile.ExternalRepos = contributions.RepositoriesContributedTo
		profile.ContributionsLastYear = contributions.CommitContributions
	}
	return profile
}
