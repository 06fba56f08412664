package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/hpratama/ingatan/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.queue)
	pendingHandler := handlers.NewPendingHandler(s.queue)
	caregiverHandler := handlers.NewCaregiverHandler(s.queue)
	routinesHandler := handlers.NewRoutinesHandler(s.routines)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)

		// wearable side
		r.Post("/pending", pendingHandler.Submit)
		r.Get("/pending/{id}/status", pendingHandler.Status)
		r.Get("/approved/{subjectID}", pendingHandler.Approved)
		r.Get("/routines/{subjectID}", routinesHandler.ListBySubject)
		r.Get("/routines/{subjectID}/due", routinesHandler.ListDue)

		// caregiver side
		r.Route("/caregiver", func(r chi.Router) {
			r.Get("/pending", caregiverHandler.ListPending)
			r.Post("/approve/{id}", caregiverHandler.Approve)
			r.Post("/reject/{id}", caregiverHandler.Reject)
			r.Get("/approved", caregiverHandler.ListApproved)
			r.Delete("/approved/{id}", caregiverHandler.DeleteApproved)
			r.Post("/upload-face", caregiverHandler.UploadFace)
			r.Post("/routines", routinesHandler.Create)
			r.Get("/routines", routinesHandler.ListAll)
			r.Delete("/routines/{id}", routinesHandler.Delete)
		})
	})
}
