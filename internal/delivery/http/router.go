package http

import (
	"net/http"

	"telemed-clinic-backend/internal/delivery/http/handler"
	"telemed-clinic-backend/internal/delivery/http/middleware"
	"telemed-clinic-backend/internal/domain/entity"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	consultationHandler *handler.ConsultationHandler
	paymentHandler      *handler.PaymentHandler
	staffHandler        *handler.StaffHandler
	patientHandler      *handler.PatientHandler
	clinicalHandler     *handler.ClinicalHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	metricsHandler      http.Handler
}

func NewRouter(
	authHandler *handler.AuthHandler,
	consultationHandler *handler.ConsultationHandler,
	paymentHandler *handler.PaymentHandler,
	staffHandler *handler.StaffHandler,
	patientHandler *handler.PatientHandler,
	clinicalHandler *handler.ClinicalHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		consultationHandler: consultationHandler,
		paymentHandler:      paymentHandler,
		staffHandler:        staffHandler,
		patientHandler:      patientHandler,
		clinicalHandler:     clinicalHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		metricsHandler:      metricsHandler,
	}
}

func (r *Router) Setup() *mux.Router {
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Public routes
	api.HandleFunc("/public/doctors", r.staffHandler.GetPublicDoctors).Methods(http.MethodGet)
	api.HandleFunc("/consultations/public/book", r.consultationHandler.BookPublic).Methods(http.MethodPost)
	api.HandleFunc("/payments/checkout-session", r.paymentHandler.CreateCheckoutSession).Methods(http.MethodPost)
	api.HandleFunc("/payments/webhook", r.paymentHandler.Webhook).Methods(http.MethodPost)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	authProtected.HandleFunc("/change-password", r.authHandler.ChangePassword).Methods(http.MethodPost)

	// Consultation routes (any authenticated staff; ownership is checked per consultation)
	consultations := api.PathPrefix("/consultations").Subrouter()
	consultations.Use(r.authMiddleware.Authenticate)
	consultations.Handle("", middleware.RequireCapability(entity.CapManageConsultations)(
		http.HandlerFunc(r.consultationHandler.CreateConsultation))).Methods(http.MethodPost)
	consultations.Handle("/me", middleware.RequireMedicalUser(
		http.HandlerFunc(r.consultationHandler.GetMyConsultations))).Methods(http.MethodGet)
	consultations.HandleFunc("/{id}", r.consultationHandler.GetConsultation).Methods(http.MethodGet)
	consultations.HandleFunc("/{id}/start-video", r.consultationHandler.StartVideo).Methods(http.MethodPost)
	consultations.HandleFunc("/{id}/end-video", r.consultationHandler.EndVideo).Methods(http.MethodPost)
	consultations.HandleFunc("/{id}/video-info", r.consultationHandler.GetVideoInfo).Methods(http.MethodGet)
	consultations.Handle("/{id}/pdf", middleware.RequireMedicalUser(
		http.HandlerFunc(r.clinicalHandler.GetConsultationPDF))).Methods(http.MethodGet)

	// Payment routes (protected)
	payments := api.PathPrefix("/payments").Subrouter()
	payments.Use(r.authMiddleware.Authenticate)
	payments.HandleFunc("/doctor/payments", r.paymentHandler.GetDoctorPayments).Methods(http.MethodGet)

	// Doctor routes (clinical records)
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireMedicalUser)
	doctor.HandleFunc("/patients", r.patientHandler.GetPatientsWithStats).Methods(http.MethodGet)
	doctor.HandleFunc("/patients/{id}/history", r.clinicalHandler.GetHistory).Methods(http.MethodGet)
	doctor.HandleFunc("/patients/{id}/history", r.clinicalHandler.CreateRecord).Methods(http.MethodPost)
	doctor.HandleFunc("/patients/{id}/history/pdf", r.clinicalHandler.GetHistoryPDF).Methods(http.MethodGet)
	doctor.HandleFunc("/patients/{id}/history/{recordId}", r.clinicalHandler.UpdateRecord).Methods(http.MethodPut)
	doctor.HandleFunc("/patients/{id}/history/{recordId}", r.clinicalHandler.DeleteRecord).Methods(http.MethodDelete)

	// Template routes
	templates := api.PathPrefix("/templates").Subrouter()
	templates.Use(r.authMiddleware.Authenticate)
	templates.Use(middleware.RequireMedicalUser)
	templates.HandleFunc("", r.clinicalHandler.GetTemplates).Methods(http.MethodGet)
	templates.HandleFunc("", r.clinicalHandler.CreateTemplate).Methods(http.MethodPost)
	templates.HandleFunc("/{id}", r.clinicalHandler.GetTemplate).Methods(http.MethodGet)
	templates.HandleFunc("/{id}", r.clinicalHandler.UpdateTemplate).Methods(http.MethodPut)
	templates.HandleFunc("/{id}", r.clinicalHandler.DeleteTemplate).Methods(http.MethodDelete)

	// Admin routes (protected)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)

	clinicAdmin := admin.NewRoute().Subrouter()
	clinicAdmin.Use(middleware.RequireClinicAdmin)
	clinicAdmin.HandleFunc("/consultations", r.consultationHandler.GetAllConsultations).Methods(http.MethodGet)
	clinicAdmin.HandleFunc("/patients", r.patientHandler.SearchPatients).Methods(http.MethodGet)

	// Doctors may patch their own consultations; the usecase checks ownership.
	admin.HandleFunc("/consultations/{id}", r.consultationHandler.UpdateConsultation).Methods(http.MethodPatch)

	staffAdmin := admin.NewRoute().Subrouter()
	staffAdmin.Use(middleware.RequireStaffManager)
	staffAdmin.HandleFunc("/medical-professionals", r.staffHandler.GetMedicalProfessionals).Methods(http.MethodGet)
	staffAdmin.HandleFunc("/medical-professionals", r.staffHandler.RegisterStaff).Methods(http.MethodPost)
	staffAdmin.HandleFunc("/medical-professionals/{id}", r.staffHandler.UpdateStaff).Methods(http.MethodPatch)

	auditAdmin := admin.NewRoute().Subrouter()
	auditAdmin.Use(middleware.RequireCapability(entity.CapViewAuditLogs))
	auditAdmin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	auditAdmin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Preflight requests only reach the CORS middleware through a matched route.
	r.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {})

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
