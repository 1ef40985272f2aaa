package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gajiflow/payroll-backend-go/internal/handler/http/middleware"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(jwtService jwt.Service, payrollHandler PayrollHandler, statutoryHandler StatutoryHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "gajiflow-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/runs", func(r chi.Router) {
					r.Post("/", payrollHandler.CreateRun)
					r.Get("/", payrollHandler.ListRuns)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetRun)
						r.Delete("/", payrollHandler.DeleteRun)
						r.Post("/calculate", payrollHandler.CalculateRun)
						r.Post("/approve", payrollHandler.ApproveRun)
						r.Post("/finalize", payrollHandler.FinalizeRun)
						r.Post("/mark-paid", payrollHandler.MarkRunPaid)
						r.Post("/cancel", payrollHandler.CancelRun)
						r.Get("/payslips", payrollHandler.ListPaySlips)
					})
				})

				r.Route("/payslips/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPaySlip)
					r.Post("/recalculate", payrollHandler.RecalculatePaySlip)
				})

				r.Route("/components", func(r chi.Router) {
					r.Post("/", payrollHandler.CreateComponent)
					r.Get("/", payrollHandler.ListComponents)
					r.Post("/seed-defaults", payrollHandler.SeedDefaultComponents)
					r.Get("/{id}", payrollHandler.GetComponent)
				})

				r.Post("/statutory/preview", statutoryHandler.Preview)
			})
		})
	})
	return r
}
