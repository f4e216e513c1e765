package httpserver

import "github.com/go-chi/chi"

// RegisterRoutes setups routes for http server
func (s *Server) RegisterRoutes() {
	s.router.Get("/health", s.Health)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/stats/{user}", s.GetStats)
		r.Get("/commits/{user}", s.GetCommits)
		r.Get("/featured/{user}", s.GetFeatured)
		r.Get("/profile/{user}", s.GetProfile)
	})

	s.router.NotFound(s.NotFoundHandler)
}
