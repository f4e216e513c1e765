package usecase

import (
	"time"

	"github.com/naka-gawa/portfolio-stats/internal/domain"
)

// Heuristics gathers every tunable constant used by the estimator.
// The defaults were tuned by hand for a single account and are not calibrated.
type Heuristics struct {
	// PinnedAccount is answered from PinnedCommits and PinnedStats without any API call.
	PinnedAccount string               `yaml:"pinned_account"`
	PinnedCommits int                  `yaml:"pinned_commits"`
	PinnedStats   domain.StatsEstimate `yaml:"pinned_stats"`
	// FallbackStats is returned when the profile or repositories cannot be fetched.
	FallbackStats domain.StatsEstimate `yaml:"fallback_stats"`

	FloorCommitEstimate      int     `yaml:"floor_commit_estimate"`
	ConfidenceThreshold      int     `yaml:"confidence_threshold"`
	EventAmplificationFactor int     `yaml:"event_amplification_factor"`
	PastYearEventFactor      int     `yaml:"past_year_event_factor"`
	PastYearCommitsPerRepo   int     `yaml:"past_year_commits_per_repo"`
	PerRepoCommitCap         int     `yaml:"per_repo_commit_cap"`
	ActivitySaturation       float64 `yaml:"activity_saturation"`
	MetricsDailyRate         float64 `yaml:"metrics_daily_rate"`
	ProfileDailyRate         float64 `yaml:"profile_daily_rate"`

	BatchSize     int           `yaml:"batch_size"`
	BatchDelay    time.Duration `yaml:"batch_delay"`
	EventPageSize int           `yaml:"event_page_size"`
	RepoPageSize  int           `yaml:"repo_page_size"`

	DefaultTechnologies int `yaml:"default_technologies"`
	Hackathons          int `yaml:"hackathons"`
	FeaturedCount       int `yaml:"featured_count"`
}

// DefaultHeuristics returns the values the portfolio site has always used.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		PinnedAccount: "IshaanD-RX6600",
		PinnedCommits: 300,
		PinnedStats:   domain.StatsEstimate{Projects: 16, TotalCommits: 300, Technologies: 7, Hackathons: 3},
		FallbackStats: domain.StatsEstimate{Projects: 16, TotalCommits: 300, Technologies: 7, Hackathons: 3},

		FloorCommitEstimate:      300,
		ConfidenceThreshold:      250,
		EventAmplificationFactor: 5,
		PastYearEventFactor:      10,
		PastYearCommitsPerRepo:   20,
		PerRepoCommitCap:         500,
		ActivitySaturation:       30,
		MetricsDailyRate:         0.1,
		ProfileDailyRate:         0.2,

		BatchSize:     3,
		BatchDelay:    1500 * time.Millisecond,
		EventPageSize: 100,
		RepoPageSize:  100,

		DefaultTechnologies: 5,
		Hackathons:          3,
		FeaturedCount:       6,
	}
}
