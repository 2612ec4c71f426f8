package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	framesHandler := handlers.NewFramesHandler(s.service, s.log)
	sessionsHandler := handlers.NewSessionsHandler(s.service, s.log)
	studentsHandler := handlers.NewStudentsHandler(s.service, s.log)
	attendanceHandler := handlers.NewAttendanceHandler(s.service, s.log)
	legacyHandler := handlers.NewLegacyHandler(s.service, s.log)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Frames
		r.Post("/frames", framesHandler.Process)

		// Sessions
		r.Post("/sessions", sessionsHandler.Start)
		r.Get("/session", sessionsHandler.Status)

		// Attendance
		r.Get("/attendance", attendanceHandler.List)

		// Students
		r.Get("/students", studentsHandler.List)
		r.Post("/students", studentsHandler.Create)
		r.Delete("/students/{id}", studentsHandler.Delete)
		r.Get("/students/{id}/lookalikes", studentsHandler.Lookalikes)
	})

	// Routes used by the kiosk frontend
	s.router.Post("/process-frame", legacyHandler.ProcessFrame)
	s.router.Post("/add-student", legacyHandler.AddStudent)
	s.router.Post("/start-registration", legacyHandler.StartRegistration)
	s.router.Get("/students", legacyHandler.ListStudents)
	s.router.Delete("/students/{id}", legacyHandler.DeleteStudent)
	s.router.Get("/attendance", legacyHandler.ListAttendance)
}
