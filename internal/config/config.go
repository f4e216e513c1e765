// Package config loads the settings of the CLI from the environment,
// an optional .env file and an optional heuristics file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/portfolio-stats/internal/usecase"
)

// Environment variables read by Load.
const (
	TokenEnvVar      = "GITHUB_TOKEN"
	UserEnvVar       = "GITHUB_USER"
	APIURLEnvVar     = "GITHUB_API_URL"
	GraphQLURLEnvVar = "GITHUB_GRAPHQL_URL"
	LogLevelEnvVar   = "LOG_LEVEL"
)

// Config holds everything the commands need to build a gateway and an estimator.
type Config struct {
	Token      string
	User       string
	APIURL     string
	GraphQLURL string
	LogLevel   string
	Heuristics usecase.Heuristics
}

// Load reads the .env file at envFile when it exists, then the environment,
// then overlays the heuristics file when heuristicsFile is not empty.
func Load(envFile, heuristicsFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Token:      os.Getenv(TokenEnvVar),
		User:       os.Getenv(UserEnvVar),
		APIURL:     os.Getenv(APIURLEnvVar),
		GraphQLURL: os.Getenv(GraphQLURLEnvVar),
		LogLevel:   os.Getenv(LogLevelEnvVar),
		Heuristics: usecase.DefaultHeuristics(),
	}

	if heuristicsFile != "" {
		h, err := LoadHeuristics(heuristicsFile, cfg.Heuristics)
		if err != nil {
			return nil, err
		}
		cfg.Heuristics = h
	}
	if cfg.User == "" {
		cfg.User = cfg.Heuristics.PinnedAccount
	}
	return cfg, nil
}

// LoadHeuristics overlays the YAML file at path on base.
// Keys missing from the file keep their value from base.
func LoadHeuristics(path string, base usecase.Heuristics) (usecase.Heuristics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read heuristics file: %w", err)
	}
	h := base
	if err := yaml.Unmarshal(data, &h); err != nil {
		return base, fmt.Errorf("failed to parse heuristics file %s: %w", path, err)
	}
	if err := validate(h); err != nil {
		return base, fmt.Errorf("invalid heuristics file %s: %w", path, err)
	}
	return h, nil
}

func validate(h usecase.Heuristics) error {
	switch {
	case h.BatchSize < 1:
		return errors.New("batch_size must be at least 1")
	case h.BatchDelay < 0:
		return errors.New("batch_delay must not be negative")
	case h.ActivitySaturation <= 0:
		return errors.New("activity_saturation must be positive")
	case h.FloorCommitEstimate < 0:
		return errors.New("floor_commit_estimate must not be negative")
	case h.RepoPageSize < 1 || h.RepoPageSize > 100:
		return errors.New("repo_page_size must be between 1 and 100")
	case h.EventPageSize < 1 || h.EventPageSize > 100:
		return errors.New("event_page_size must be between 1 and 100")
	}
	return nil
}
