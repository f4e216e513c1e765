package usecase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/naka-gawa/portfolio-stats/internal/domain"
	"github.com/naka-gawa/portfolio-stats/internal/gateway"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) GetUser(ctx context.Context, login string) *domain.User {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.User)
}

func (m *mockFetcher) ListRepos(ctx context.Context, login string, perPage int) []domain.Repository {
	args := m.Called(ctx, login, perPage)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.Repository)
}

func (m *mockFetcher) ListEvents(ctx context.Context, login string, perPage int) []domain.ActivityEvent {
	args := m.Called(ctx, login, perPage)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.ActivityEvent)
}

func (m *mockFetcher) ContributorStats(ctx context.Context, fullName string) []domain.ContributionStat {
	args := m.Called(ctx, fullName)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.ContributionStat)
}

func (m *mockFetcher) SearchCommitCount(ctx context.Context, login string) int {
	args := m.Called(ctx, login)
	return args.Int(0)
}

func (m *mockFetcher) ContributionSummary(ctx context.Context, login string) *gateway.Contributions {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*gateway.Contributions)
}

func testHeuristics() Heuristics {
	h := DefaultHeuristics()
	h.BatchDelay = 0
	return h
}

func newTestEstimator(fetcher gateway.Fetcher, h Heuristics) *Estimator {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	e := NewEstimator(fetcher, h, logger)
	e.now = func() time.Time { return testNow }
	return e
}

func TestEstimator_CommitBreakdown(t *testing.T) {
	repos := []domain.Repository{
		{FullName: "octo/a", CreatedAt: daysAgo(1000), Stars: 30},
		{FullName: "octo/b", CreatedAt: daysAgo(300)},
		{FullName: "octo/c", CreatedAt: daysAgo(600), Stars: 5, Forks: 2},
		{FullName: "octo/d", CreatedAt: daysAgo(200), Fork: true},
	}

	testCases := []struct {
		name     string
		repos    []domain.Repository
		events   []domain.ActivityEvent
		stats    map[string][]domain.ContributionStat
		search   int
		expected domain.CommitBreakdown
	}{
		{
			name:  "happy path - a confident strategy is returned directly",
			repos: repos,
			events: []domain.ActivityEvent{
				{Type: "PushEvent", Commits: 3},
				{Type: "WatchEvent"},
				{Type: "PushEvent", Commits: 7},
			},
			stats: map[string][]domain.ContributionStat{
				"octo/a": {{Login: "someone", Total: 90}, {Login: "OCTO", Total: 200}},
				"octo/b": {{Login: "octo", Total: 40}},
				"octo/c": nil,
				"octo/d": {{Login: "octo", Total: 80}},
			},
			search: 150,
			expected: domain.CommitBreakdown{
				Events:           50,
				ContributorStats: 320,
				Search:           150,
				RepoMetrics:      122,
				ProfileEstimate:  315,
				Total:            320,
			},
		},
		{
			name:   "all upstream sources failed - floor is applied",
			repos:  nil,
			events: nil,
			search: 0,
			expected: domain.CommitBreakdown{
				Total: 300,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("ListRepos", mock.Anything, "octo", 100).Return(tc.repos)
			fetcher.On("ListEvents", mock.Anything, "octo", 100).Return(tc.events)
			fetcher.On("SearchCommitCount", mock.Anything, "octo").Return(tc.search)
			for fullName, stats := range tc.stats {
				fetcher.On("ContributorStats", mock.Anything, fullName).Return(stats)
			}

			breakdown := newTestEstimator(fetcher, testHeuristics()).CommitBreakdown(context.Background(), "octo")

			assert.Equal(t, tc.expected, breakdown)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestEstimator_EstimateTotalCommits_PinnedAccount(t *testing.T) {
	fetcher := new(mockFetcher)
	e := newTestEstimator(fetcher, testHeuristics())

	assert.Equal(t, 300, e.EstimateTotalCommits(context.Background(), "ishaand-rx6600"))
	assert.Equal(t, 300, e.EstimatePastYearCommits(context.Background(), "IshaanD-RX6600"))
	assert.Equal(t, DefaultHeuristics().PinnedStats, e.Stats(context.Background(), "ISHAAND-RX6600"))

	fetcher.AssertNotCalled(t, "ListRepos", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, fetcher.Calls)
}

func TestEstimator_EstimateTotalCommits_PanicYieldsFloor(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListRepos", mock.Anything, "octo", 100).Run(func(mock.Arguments) {
		panic("unexpected payload")
	}).Return(nil)

	assert.Equal(t, 300, newTestEstimator(fetcher, testHeuristics()).EstimateTotalCommits(context.Background(), "octo"))
}

func TestEstimator_StrategyPanicIsIsolated(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListRepos", mock.Anything, "octo", 100).Return([]domain.Repository{})
	fetcher.On("ListEvents", mock.Anything, "octo", 100).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(nil)
	fetcher.On("SearchCommitCount", mock.Anything, "octo").Return(900)

	breakdown := newTestEstimator(fetcher, testHeuristics()).CommitBreakdown(context.Background(), "octo")

	assert.Equal(t, 0, breakdown.Events)
	assert.Equal(t, 900, breakdown.Total)
}

func TestEstimator_ContributorStatsBatches(t *testing.T) {
	repos := make([]domain.Repository, 0, 7)
	for i := 0; i < 7; i++ {
		repos = append(repos, domain.Repository{FullName: fmt.Sprintf("octo/repo-%d", i)})
	}

	testCases := []struct {
		name      string
		batchSize int
		// calls made before each pause
		pausedAfter []int32
		maxInFlight int32
	}{
		{name: "batches of three", batchSize: 3, pausedAfter: []int32{3, 6}, maxInFlight: 3},
		{name: "one at a time", batchSize: 1, pausedAfter: []int32{1, 2, 3, 4, 5, 6}, maxInFlight: 1},
		{name: "one batch needs no pause", batchSize: 7, pausedAfter: nil, maxInFlight: 7},
		{name: "non positive size is one", batchSize: 0, pausedAfter: []int32{1, 2, 3, 4, 5, 6}, maxInFlight: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var calls, inFlight, peak atomic.Int32
			fetcher := new(mockFetcher)
			fetcher.Test(t)
			for _, repo := range repos {
				fetcher.On("ContributorStats", mock.Anything, repo.FullName).Run(func(mock.Arguments) {
					n := inFlight.Add(1)
					defer inFlight.Add(-1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					time.Sleep(5 * time.Millisecond)
					calls.Add(1)
				}).Return([]domain.ContributionStat{{Login: "octo", Total: 10}}).Once()
			}

			h := testHeuristics()
			h.BatchSize = tc.batchSize
			h.BatchDelay = time.Hour
			e := newTestEstimator(fetcher, h)
			var pausedAfter []int32
			e.sleep = func(_ context.Context, d time.Duration) error {
				assert.Equal(t, time.Hour, d)
				assert.Zero(t, inFlight.Load())
				pausedAfter = append(pausedAfter, calls.Load())
				return nil
			}

			assert.Equal(t, 70, e.contributorStatsTotal(context.Background(), "octo", repos))
			assert.Equal(t, tc.pausedAfter, pausedAfter)
			assert.LessOrEqual(t, peak.Load(), tc.maxInFlight)
			fetcher.AssertExpectations(t)
		})
	}

	t.Run("cancellation during the pause stops after the current batch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		fetcher := new(mockFetcher)
		fetcher.Test(t)
		for _, repo := range repos[:2] {
			fetcher.On("ContributorStats", mock.Anything, repo.FullName).Return([]domain.ContributionStat{{Login: "octo", Total: 10}}).Once()
		}
		fetcher.On("ContributorStats", mock.Anything, repos[2].FullName).Run(func(mock.Arguments) {
			cancel()
		}).Return([]domain.ContributionStat{{Login: "octo", Total: 10}}).Once()

		h := testHeuristics()
		h.BatchDelay = time.Hour
		e := newTestEstimator(fetcher, h)

		assert.Equal(t, 30, e.contributorStatsTotal(ctx, "octo", repos))
		fetcher.AssertExpectations(t)
	})
}

func TestPause(t *testing.T) {
	assert.NoError(t, pause(context.Background(), 0))
	assert.NoError(t, pause(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pause(ctx, time.Hour), context.Canceled)
}

func TestEstimator_EstimatePastYearCommits(t *testing.T) {
	testCases := []struct {
		name     string
		events   []domain.ActivityEvent
		repos    []domain.Repository
		expected int
	}{
		{
			name:     "events are extrapolated",
			events:   []domain.ActivityEvent{{Type: "PushEvent", Commits: 45}},
			expected: 450,
		},
		{
			name:     "quiet event feed is floored",
			events:   []domain.ActivityEvent{{Type: "WatchEvent"}},
			expected: 300,
		},
		{
			name:     "falls back to repositories",
			repos:    make([]domain.Repository, 20),
			expected: 400,
		},
		{
			name:     "forks do not count",
			repos:    []domain.Repository{{Fork: true}, {}},
			expected: 300,
		},
		{
			name:     "nothing available",
			expected: 300,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("ListEvents", mock.Anything, "octo", 100).Return(tc.events)
			fetcher.On("ListRepos", mock.Anything, "octo", 100).Return(tc.repos).Maybe()

			assert.Equal(t, tc.expected, newTestEstimator(fetcher, testHeuristics()).EstimatePastYearCommits(context.Background(), "octo"))
		})
	}
}

// A rate limited GitHub must degrade every strategy to its empty branch
// rather than surface an error.
func TestEstimator_RateLimitedUpstream(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded for 127.0.0.1."}`)
	}))
	defer server.Close()

	transport := &http.Transport{}
	defer transport.CloseIdleConnections()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	fetcher, err := gateway.NewGitHubGateway(gateway.Options{BaseURL: server.URL, Transport: transport}, logger)
	require.NoError(t, err)

	e := NewEstimator(fetcher, testHeuristics(), logger)

	breakdown := e.CommitBreakdown(context.Background(), "octo")
	assert.Equal(t, domain.CommitBreakdown{Total: 300}, breakdown)
	assert.Positive(t, requests.Load())

	assert.Equal(t, DefaultHeuristics().FallbackStats, e.Stats(context.Background(), "octo"))
	assert.Len(t, e.FeaturedRepos(context.Background(), "octo", 6), 6)
}
