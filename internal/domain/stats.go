// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Repository describes one repository owned by the queried account.
// Language is empty when GitHub reports no primary language.
type Repository struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	HTMLURL       string    `json:"html_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	Language      string    `json:"language"`
	Fork          bool      `json:"fork"`
	Topics        []string  `json:"topics"`
	License       string    `json:"license,omitempty"`
	DefaultBranch string    `json:"default_branch"`
}

// ActivityEvent is a single entry of a user's event feed.
// Commits is only meaningful for push events.
type ActivityEvent struct {
	Type    string
	Commits int
}

// PushEventType is the event type carrying commits.
const PushEventType = "PushEvent"

// IsPush reports whether the event is a push.
func (e ActivityEvent) IsPush() bool {
	return e.Type == PushEventType
}

// ContributionStat is one contributor's all-time commit total in a repository.
type ContributionStat struct {
	Login string
	Total int
}

// User is the subset of a GitHub profile the site displays.
type User struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	HTMLURL     string    `json:"html_url"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatsEstimate is the headline block rendered on the home and projects pages.
type StatsEstimate struct {
	Projects     int `json:"projects" yaml:"projects"`
	TotalCommits int `json:"totalCommits" yaml:"total_commits"`
	Technologies int `json:"technologies" yaml:"technologies"`
	Hackathons   int `json:"hackathons" yaml:"hackathons"`
}

// CommitBreakdown holds the figure produced by every commit estimation
// strategy alongside the reconciled total.
type CommitBreakdown struct {
	Events           int `json:"events"`
	ContributorStats int `json:"contributor_stats"`
	Search           int `json:"search"`
	RepoMetrics      int `json:"repo_metrics"`
	ProfileEstimate  int `json:"profile_estimate"`
	Total            int `json:"total"`
}

// Profile is the summary shown on the profile card.
type Profile struct {
	User                  *User `json:"user,omitempty"`
	TotalStars            int   `json:"total_stars"`
	TotalForks            int   `json:"total_forks"`
	ContributedTo         int   `json:"contributed_to"`
	ExternalRepos         int   `json:"external_repos,omitempty"`
	ContributionsLastYear int   `json:"contributions_last_year,omitempty"`
}
