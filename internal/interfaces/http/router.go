package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dailyprofit-api/internal/application/auth"
	"github.com/jhoicas/dailyprofit-api/internal/application/business"
	"github.com/jhoicas/dailyprofit-api/internal/application/collab"
	"github.com/jhoicas/dailyprofit-api/internal/application/sync"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	SyncUC     *sync.ReconcileUseCase
	BusinessUC *business.BusinessUseCase
	CollabUC   *collab.CollabUseCase
	UserRepo   repository.UserRepository
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/google", authHandler.GoogleLogin)
	authGroup.Post("/apple", authHandler.AppleLogin)
	authGroup.Post("/guest", authHandler.GuestLogin)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	protected.Get("/auth/me", authHandler.Me)

	// Sync (protegido): cosecha completa del dispositivo, 200 o 409
	syncHandler := NewSyncHandler(deps.SyncUC, deps.UserRepo)
	protected.Post("/auth/sync", syncHandler.Sync)

	// Businesses (protegido)
	businesses := protected.Group("/businesses")
	businessHandler := NewBusinessHandler(deps.BusinessUC, deps.UserRepo)
	businesses.Get("/", businessHandler.List)
	businesses.Post("/", businessHandler.Create)
	businesses.Patch("/:id", businessHandler.Update)
	businesses.Delete("/:id", businessHandler.Delete)
	businesses.Put("/:id/pin", businessHandler.SetPin)
	businesses.Post("/:id/pin/verify", businessHandler.VerifyPin)
	businesses.Get("/:id/data", businessHandler.Data)

	// Colaboración (protegido): invitaciones y roster
	collabHandler := NewCollaboratorHandler(deps.CollabUC, deps.UserRepo)
	businesses.Post("/join", collabHandler.Join)
	businesses.Post("/:id/invite", collabHandler.GenerateInvite)
	businesses.Patch("/:id/collaborators/:userId", collabHandler.UpdateCollaborator)
	businesses.Delete("/:id/collaborators/:userId", collabHandler.RemoveCollaborator)
	businesses.Post("/:id/leave", collabHandler.Leave)
}
