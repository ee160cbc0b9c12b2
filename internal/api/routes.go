package api

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the item, quiz and job endpoints on r.
func RegisterRoutes(r chi.Router, items *ItemHandler, quiz *QuizHandler) {
	r.Route("/items", func(r chi.Router) {
		r.Post("/", items.CreateItem)
		r.Get("/", items.ListItems)
		r.Post("/manual", items.CreateManualItem)
		r.Post("/batch", items.CreateBatch)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", items.GetItem)
			r.Patch("/", items.EditItem)
			r.Delete("/", items.DeleteItem)
			r.Put("/status", items.SetStatus)
			r.Put("/review", items.SetReview)
			r.Put("/active", items.SetActive)
			r.Post("/answer", items.AnswerItem)
		})
	})

	r.Route("/quiz", func(r chi.Router) {
		r.Get("/queue", items.GetQueue)
		r.Get("/current", quiz.GetCurrent)
		r.Post("/answer", quiz.Answer)
		r.Post("/skip", quiz.Skip)
	})

	r.Post("/jobs/backfill-hints", items.BackfillHints)
}
