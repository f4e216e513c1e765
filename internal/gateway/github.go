// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
//
// Every method degrades to an empty result instead of returning an error:
// callers render pages and must never fail because GitHub is unavailable.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/portfolio-stats/internal/domain"
)

// Contributions holds the contribution figures only the GraphQL API exposes.
type Contributions struct {
	RepositoriesContributedTo int
	CommitContributions       int
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
// A nil, empty or zero result means "no data", never "confirmed empty".
type Fetcher interface {
	GetUser(ctx context.Context, login string) *domain.User
	ListRepos(ctx context.Context, login string, perPage int) []domain.Repository
	ListEvents(ctx context.Context, login string, perPage int) []domain.ActivityEvent
	ContributorStats(ctx context.Context, fullName string) []domain.ContributionStat
	SearchCommitCount(ctx context.Context, login string) int
	ContributionSummary(ctx context.Context, login string) *Contributions
}

// Options configures the HTTP stack of the gateway.
type Options struct {
	// Token is optional. Without it requests are anonymous and GraphQL is skipped.
	Token string
	// BaseURL overrides the REST endpoint, e.g. for GitHub Enterprise or tests.
	BaseURL string
	// GraphQLURL overrides the GraphQL endpoint.
	GraphQLURL string
	// Transport is the innermost round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	hasToken      bool
	logger        logrus.FieldLogger
}

// contributionsQuery fetches the figures behind the profile card.
type contributionsQuery struct {
	User struct {
		RepositoriesContributedTo struct {
			TotalCount githubv4.Int
		} `graphql:"repositoriesContributedTo(first: 1)"`
		ContributionsCollection struct {
			TotalCommitContributions githubv4.Int
		}
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger logrus.FieldLogger) (*GitHubGateway, error) {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	// A zero sleep limit turns the waiter into a detector: secondary limits
	// are logged and the 403 is passed through. sendOnce covers the waiter's
	// immediate resend when the reported reset time is already past.
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(&sendOnce{base: base},
		github_ratelimit.WithSingleSleepLimit(0, func(cbContext *github_ratelimit.CallbackContext) {
			entry := logger.WithField("limit", "secondary")
			if cbContext.Request != nil {
				entry = entry.WithField("path", cbContext.Request.URL.Path)
			}
			entry.Warn("GitHub API secondary rate limit detected, not retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = &attemptScope{next: rateLimitWaiter}
	if opts.Token != "" {
		transport = &oauth2.Transport{
			Base:   transport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		}
	}
	httpClient := &http.Client{Transport: transport}

	restClient := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API base URL %q: %w", opts.BaseURL, err)
		}
		restClient.BaseURL = baseURL
	}

	graphqlClient := githubv4.NewClient(httpClient)
	if opts.GraphQLURL != "" {
		graphqlClient = githubv4.NewEnterpriseClient(opts.GraphQLURL, httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		hasToken:      opts.Token != "",
		logger:        logger,
	}, nil
}

// GetUser fetches the public profile of login.
func (g *GitHubGateway) GetUser(ctx context.Context, login string) *domain.User {
	u, _, err := g.restClient.Users.Get(ctx, login)
	if err != nil {
		g.degrade("users/"+login, err)
		return nil
	}
	return &domain.User{
		Login:       u.GetLogin(),
		Name:        u.GetName(),
		Bio:         u.GetBio(),
		AvatarURL:   u.GetAvatarURL(),
		HTMLURL:     u.GetHTMLURL(),
		PublicRepos: u.GetPublicRepos(),
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
		CreatedAt:   u.GetCreatedAt().Time,
	}
}

// ListRepos lists up to perPage repositories owned by login, most recently updated first.
// No pagination is performed.
func (g *GitHubGateway) ListRepos(ctx context.Context, login string, perPage int) []domain.Repository {
	opts := &github.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	repos, _, err := g.restClient.Repositories.ListByUser(ctx, login, opts)
	if err != nil {
		g.degrade("users/"+login+"/repos", err)
		return nil
	}
	g.logger.WithField("count", len(repos)).Debugf("Fetched repositories of %s", login)

	result := make([]domain.Repository, 0, len(repos))
	for _, r := range repos {
		result = append(result, domain.Repository{
			Name:          r.GetName(),
			FullName:      r.GetFullName(),
			Description:   r.GetDescription(),
			HTMLURL:       r.GetHTMLURL(),
			CreatedAt:     r.GetCreatedAt().Time,
			UpdatedAt:     r.GetUpdatedAt().Time,
			Stars:         r.GetStargazersCount(),
			Forks:         r.GetForksCount(),
			Language:      r.GetLanguage(),
			Fork:          r.GetFork(),
			Topics:        r.Topics,
			License:       r.GetLicense().GetName(),
			DefaultBranch: r.GetDefaultBranch(),
		})
	}
	return result
}

// ListEvents fetches the most recent events performed by login.
func (g *GitHubGateway) ListEvents(ctx context.Context, login string, perPage int) []domain.ActivityEvent {
	events, _, err := g.restClient.Activity.ListEventsPerformedByUser(ctx, login, false, &github.ListOptions{PerPage: perPage})
	if err != nil {
		g.degrade("users/"+login+"/events", err)
		return nil
	}

	result := make([]domain.ActivityEvent, 0, len(events))
	for _, e := range events {
		event := domain.ActivityEvent{Type: e.GetType()}
		if event.IsPush() {
			event.Commits = g.pushCommits(e)
		}
		result = append(result, event)
	}
	return result
}

// pushCommits counts the commits carried by a push event. The event feed may
// omit the commit list, in which case the reported size is used.
func (g *GitHubGateway) pushCommits(e *github.Event) int {
	payload, err := e.ParsePayload()
	if err != nil {
		g.logger.WithError(err).WithField("event", e.GetID()).Debug("Skipping unparsable push payload")
		return 0
	}
	push, ok := payload.(*github.PushEvent)
	if !ok {
		return 0
	}
	if n := len(push.Commits); n > 0 {
		return n
	}
	return push.GetSize()
}

// ContributorStats fetches the per-contributor commit totals of the repository
// identified by fullName ("owner/name").
func (g *GitHubGateway) ContributorStats(ctx context.Context, fullName string) []domain.ContributionStat {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		g.logger.WithField("repository", fullName).Warn("Repository name must be in the format 'owner/name'")
		return nil
	}
	stats, _, err := g.restClient.Repositories.ListContributorsStats(ctx, owner, repo)
	if err != nil {
		g.degrade("repos/"+fullName+"/stats/contributors", err)
		return nil
	}

	result := make([]domain.ContributionStat, 0, len(stats))
	for _, s := range stats {
		result = append(result, domain.ContributionStat{
			Login: s.GetAuthor().GetLogin(),
			Total: s.GetTotal(),
		})
	}
	return result
}

// SearchCommitCount returns the total number of commits authored by login
// according to the commit search API.
func (g *GitHubGateway) SearchCommitCount(ctx context.Context, login string) int {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	result, _, err := g.restClient.Search.Commits(ctx, "author:"+login, opts)
	if err != nil {
		g.degrade("search/commits", err)
		return 0
	}
	return result.GetTotal()
}

// ContributionSummary queries the GraphQL API, which requires a token.
func (g *GitHubGateway) ContributionSummary(ctx context.Context, login string) *Contributions {
	if !g.hasToken {
		g.logger.Debug("No GitHub token configured, skipping GraphQL contribution summary")
		return nil
	}
	var q contributionsQuery
	variables := map[string]interface{}{"login": githubv4.String(login)}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		g.degrade("graphql user", err)
		return nil
	}
	return &Contributions{
		RepositoriesContributedTo: int(q.User.RepositoriesContributedTo.TotalCount),
		CommitContributions:       int(q.User.ContributionsCollection.TotalCommitContributions),
	}
}

// degrade logs err according to its kind. It is the single place where
// upstream failures end up; nothing is returned to callers.
func (g *GitHubGateway) degrade(operation string, err error) {
	entry := g.logger.WithField("operation", operation)

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var acceptedErr *github.AcceptedError
	var respErr *github.ErrorResponse
	switch {
	case errors.As(err, &rateErr):
		entry.WithField("reset", rateErr.Rate.Reset.Time).Warn("GitHub API rate limit exceeded. Using fallback data.")
	case errors.As(err, &abuseErr):
		entry.Warn("GitHub API secondary rate limit exceeded. Using fallback data.")
	case errors.As(err, &acceptedErr):
		entry.Debug("GitHub is still computing the requested statistics")
	case errors.As(err, &respErr):
		if respErr.Response != nil {
			entry = entry.WithField("status", respErr.Response.StatusCode)
		}
		entry.Errorf("GitHub API error: %s", respErr.Message)
	default:
		entry.WithError(err).Error("Error fetching from GitHub API")
	}
}
