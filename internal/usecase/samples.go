package usecase

import (
	"time"

	"github.com/naka-gawa/portfolio-stats/internal/domain"
)

type sampleProject struct {
	name        string
	description string
	language    string
	stars       int
	forks       int
	topics      []string
}

var sampleProjects = []sampleProject{
	{
		name:        "Portfolio-Website",
		description: "My personal portfolio website built with Next.js and Tailwind CSS, showcasing my projects and skills.",
		language:    "TypeScript",
		stars:       8,
		forks:       3,
		topics:      []string{"nextjs", "typescript", "tailwindcss", "portfolio"},
	},
	{
		name:        "Learning-Machine-Learning",
		description: "Comprehensive exploration of machine learning concepts and TensorFlow implementation. Features neural networks, data visualization, and practical ML applications.",
		language:    "Python",
		stars:       6,
		forks:       3,
		topics:      []string{"machine-learning", "tensorflow", "data-science", "neural-networks", "ai"},
	},
	{
		name:        "Coding-Club-Website",
		description: "Modern website for my high school's coding club featuring project showcases, learning resources, and event management. Built with React and Firebase.",
		language:    "JavaScript",
		stars:       8,
		forks:       4,
		topics:      []string{"react", "firebase", "education", "web-development", "coding-club"},
	},
	{
		name:        "Chess-AI",
		description: "A chess AI implementation using minimax algorithm with alpha-beta pruning. Features multiple difficulty levels.",
		language:    "JavaScript",
		stars:       7,
		forks:       3,
		topics:      []string{"chess", "ai", "minimax", "game"},
	},
	{
		name:        "Move-Master",
		description: "A fitness tracking application developed with a team member, focused on tracking workouts and progress.",
		language:    "HTML",
		stars:       5,
		forks:       2,
		topics:      []string{"fitness", "tracking", "web-app"},
	},
	{
		name:        "Student-Help-Website",
		description: "A collaborative project developed with classmates to help students organize homework, schedules, and academic resources.",
		language:    "JavaScript",
		stars:       6,
		forks:       4,
		topics:      []string{"education", "student-tools", "web-app"},
	},
	{
		name:        "Serenity-Valley-game",
		description: "A 2D game developed using Pygame, featuring exploration and puzzle-solving elements.",
		language:    "Python",
		stars:       4,
		forks:       1,
		topics:      []string{"game", "pygame", "2d-game"},
	},
	{
		name:        "Pac-Man-java",
		description: "A Java implementation of the classic Pac-Man game with custom graphics and gameplay elements.",
		language:    "Java",
		stars:       4,
		forks:       2,
		topics:      []string{"game", "java", "pacman"},
	},
}

// SampleProjects returns up to count hand-written project descriptors owned by
// owner, in their curated order. They stand in for the real repositories when
// GitHub cannot be reached.
func SampleProjects(owner string, count int, now time.Time) []domain.Repository {
	n := min(max(count, 0), len(sampleProjects))
	result := make([]domain.Repository, 0, n)
	for _, p := range sampleProjects[:n] {
		result = append(result, domain.Repository{
			Name:          p.name,
			FullName:      owner + "/" + p.name,
			Description:   p.description,
			HTMLURL:       "https://github.com/" + owner + "/" + p.name,
			CreatedAt:     now,
			UpdatedAt:     now,
			Stars:         p.stars,
			Forks:         p.forks,
			Language:      p.language,
			Topics:        append([]string(nil), p.topics...),
			License:       "MIT",
			DefaultBranch: "main",
		})
	}
	return result
}
