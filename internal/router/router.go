// Package router registers the HTTP routes and applies the per-route access
// rules: clinical staff (MEDICO, ENFERMEIRO) operate the registries and the
// appointment engine, deletes are restricted to MEDICO, and PACIENTE reaches
// only its own records (the ownership half of that rule lives in the
// handlers).
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rmoreira/clinic-scheduler/internal/config"
	"github.com/rmoreira/clinic-scheduler/internal/handler"
	"github.com/rmoreira/clinic-scheduler/internal/middleware"
	"github.com/rmoreira/clinic-scheduler/internal/model"
)

// Handlers groups everything the router needs to wire.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Doctors      *handler.DoctorHandler
	Nurses       *handler.NurseHandler
	Patients     *handler.PatientHandler
	Appointments *handler.AppointmentHandler
}

// Register wires every route of the service onto e.
func Register(e *echo.Echo, h Handlers, jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {
	staff := middleware.RequireRole(model.RoleMedico, model.RoleEnfermeiro)
	medicoOnly := middleware.RequireRole(model.RoleMedico)
	anyRole := middleware.RequireRole(model.RoleMedico, model.RoleEnfermeiro, model.RolePaciente)
	cached := middleware.ResponseCache(cacheCfg, rdb)

	e.GET("/healthz", handler.Health)

	// Unauthenticated auth flows.
	auth := e.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/bootstrap", h.Auth.Bootstrap)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	authed := e.Group("", middleware.JWTAuth(jwtSecret))
	authed.GET("/auth/me", h.Auth.Me, anyRole)

	api := authed.Group("/api")

	// Users. Patients may read and update their own account; the handler
	// enforces the id match.
	users := api.Group("/users")
	users.POST("", h.Users.Create, staff)
	users.GET("", h.Users.List, staff)
	users.GET("/ativos", h.Users.ListActive, staff)
	users.GET("/role/:role", h.Users.ListByRole, staff)
	users.GET("/username/:username", h.Users.GetByUsername, staff)
	users.GET("/:id", h.Users.GetByID, anyRole)
	users.PUT("/:id", h.Users.Update, anyRole)
	users.PUT("/:id/ativar", h.Users.Activate, staff)
	users.PUT("/:id/desativar", h.Users.Deactivate, staff)
	users.DELETE("/:id", h.Users.Delete, medicoOnly)

	// Doctors. Listing routes are cached: their output does not vary per
	// caller, so a shared cache entry is safe.
	medicos := api.Group("/medicos", staff)
	medicos.POST("", h.Doctors.Create)
	medicos.GET("", h.Doctors.List, cached)
	medicos.GET("/ativos", h.Doctors.ListActive, cached)
	medicos.GET("/especialidade/:especialidade", h.Doctors.ListByEspecialidade, cached)
	medicos.GET("/buscar", h.Doctors.Search)
	medicos.GET("/crm/:crm", h.Doctors.GetByCRM)
	medicos.GET("/usuario/:userId", h.Doctors.GetByUserID)
	medicos.GET("/:id", h.Doctors.GetByID)
	medicos.PUT("/:id", h.Doctors.Update)
	medicos.PUT("/:id/ativar", h.Doctors.Activate)
	medicos.PUT("/:id/desativar", h.Doctors.Deactivate)
	medicos.DELETE("/:id", h.Doctors.Delete, medicoOnly)

	// Nurses.
	enfermeiros := api.Group("/enfermeiros", staff)
	enfermeiros.POST("", h.Nurses.Create)
	enfermeiros.GET("", h.Nurses.List, cached)
	enfermeiros.GET("/ativos", h.Nurses.ListActive, cached)
	enfermeiros.GET("/setor/:setor", h.Nurses.ListBySetor, cached)
	enfermeiros.GET("/turno/:turno", h.Nurses.ListByTurno, cached)
	enfermeiros.GET("/setor/:setor/turno/:turno", h.Nurses.ListBySetorAndTurno, cached)
	enfermeiros.GET("/especializacao/:especializacao", h.Nurses.ListByEspecializacao, cached)
	enfermeiros.GET("/buscar", h.Nurses.Search)
	enfermeiros.GET("/coren/:coren", h.Nurses.GetByCOREN)
	enfermeiros.GET("/usuario/:userId", h.Nurses.GetByUserID)
	enfermeiros.GET("/:id", h.Nurses.GetByID)
	enfermeiros.PUT("/:id", h.Nurses.Update)
	enfermeiros.PUT("/:id/ativar", h.Nurses.Activate)
	enfermeiros.PUT("/:id/desativar", h.Nurses.Deactivate)
	enfermeiros.DELETE("/:id", h.Nurses.Delete, medicoOnly)

	// Patients. Patient-role callers reach only their own profile; the
	// handler matches profile.user_id against the principal.
	pacientes := api.Group("/pacientes")
	pacientes.POST("", h.Patients.Create, staff)
	pacientes.GET("", h.Patients.List, staff)
	pacientes.GET("/ativos", h.Patients.ListActive, staff)
	pacientes.GET("/buscar", h.Patients.Search, staff)
	pacientes.GET("/cpf/:cpf", h.Patients.GetByCPF, staff)
	pacientes.GET("/usuario/:userId", h.Patients.GetByUserID, anyRole)
	pacientes.GET("/:id", h.Patients.GetByID, anyRole)
	pacientes.PUT("/:id", h.Patients.Update, anyRole)
	pacientes.PUT("/:id/ativar", h.Patients.Activate, staff)
	pacientes.PUT("/:id/desativar", h.Patients.Deactivate, staff)
	pacientes.DELETE("/:id", h.Patients.Delete, medicoOnly)

	// Appointments.
	consultas := api.Group("/consultas")
	consultas.POST("", h.Appointments.Schedule, staff)
	consultas.GET("", h.Appointments.List, staff)
	consultas.GET("/notificacoes", h.Appointments.ListPendingNotification, staff)
	consultas.GET("/periodo", h.Appointments.ListByPeriod, staff)
	consultas.GET("/status/:status", h.Appointments.ListByStatus, staff)
	consultas.GET("/medico/:medicoId", h.Appointments.ListByDoctor, staff)
	consultas.GET("/paciente/:pacienteId", h.Appointments.ListByPatient, anyRole)
	consultas.GET("/paciente/:pacienteId/futuras", h.Appointments.ListUpcomingByPatient, anyRole)
	consultas.GET("/paciente/:pacienteId/historico", h.Appointments.ListHistoryByPatient, anyRole)
	consultas.GET("/:id", h.Appointments.GetByID, anyRole)
	consultas.PUT("/:id", h.Appointments.Update, staff)
	consultas.PUT("/:id/status", h.Appointments.UpdateStatus, staff)
	consultas.PUT("/:id/cancelar", h.Appointments.Cancel, staff)
	consultas.DELETE("/:id", h.Appointments.Delete, medicoOnly)
}
