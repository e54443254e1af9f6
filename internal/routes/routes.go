package routes

import (
	"time"

	"project-management-api/internal/auth"
	"project-management-api/internal/authz"
	"project-management-api/internal/config"
	"project-management-api/internal/handlers"
	"project-management-api/internal/middleware"
	"project-management-api/internal/realtime"
	"project-management-api/internal/services"
	"project-management-api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Setup wires services and handlers and returns the configured engine.
func Setup(cfg *config.Config, db *gorm.DB, log *logrus.Logger) (*gin.Engine, error) {
	uploads, err := storage.New(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, time.Duration(cfg.JWT.TTL))
	resolver := authz.NewResolver(db)
	hub := realtime.NewHub()
	activity := services.NewActivityRecorder(db, log)

	userSvc := services.NewUserService(db, tokens, activity, log)
	projectSvc := services.NewProjectService(db, activity, log)
	taskSvc := services.NewTaskService(db, activity, log)
	calendarSvc := services.NewCalendarService(db, activity, log)

	authHandler := handlers.NewAuthHandler(userSvc, log)
	userHandler := handlers.NewUserHandler(userSvc, activity, log)
	projectHandler := handlers.NewProjectHandler(projectSvc, resolver, uploads, hub, log)
	taskHandler := handlers.NewTaskHandler(taskSvc, projectSvc, resolver, uploads, hub, log)
	calendarHandler := handlers.NewCalendarHandler(calendarSvc, log)
	wsHandler := handlers.NewWSHandler(hub, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.CORSOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes (no authentication required)
	api := router.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
	}

	// Protected routes. The config toggle mirrors the router-level auth
	// dependency; handlers still refuse requests without a principal.
	protected := api.Group("")
	if cfg.RequireAuth {
		protected.Use(middleware.JWTAuthMiddleware(tokens, db))
	}
	{
		protected.GET("/me", authHandler.Me)

		protected.GET("/users", userHandler.List)
		protected.GET("/users/:id", userHandler.Get)
		protected.GET("/users/:id/activity", userHandler.Activity)
		protected.POST("/users/:id/roles",
			middleware.RequirePermission(resolver, "user", "update"),
			userHandler.AssignRole)

		protected.GET("/projects", projectHandler.List)
		protected.GET("/projects/:id", projectHandler.Get)
		protected.POST("/projects", projectHandler.Create)
		protected.PUT("/projects/:id", projectHandler.Update)
		protected.DELETE("/projects/:id", projectHandler.Delete)
		protected.GET("/projects/:id/members", projectHandler.Members)
		protected.POST("/projects/:id/members", projectHandler.AddMember)
		protected.GET("/projects/:id/comments", projectHandler.Comments)
		protected.POST("/projects/:id/comments", projectHandler.AddComment)
		protected.POST("/projects/:id/attachments", projectHandler.Upload)

		protected.GET("/tasks", taskHandler.List)
		protected.GET("/tasks/:id", taskHandler.Get)
		protected.POST("/tasks", taskHandler.Create)
		protected.PUT("/tasks/:id", taskHandler.Update)
		protected.POST("/tasks/:id/assign", taskHandler.Assign)
		protected.GET("/tasks/:id/assignees", taskHandler.Assignees)
		protected.GET("/tasks/:id/comments", taskHandler.Comments)
		protected.POST("/tasks/:id/comments", taskHandler.AddComment)
		protected.POST("/tasks/:id/attachments", taskHandler.Upload)
		protected.GET("/tasks/:id/tags", taskHandler.Tags)
		protected.POST("/tasks/:id/tags", taskHandler.TagTask)
		protected.POST("/tags", taskHandler.CreateTag)

		protected.GET("/calendars", calendarHandler.List)
		protected.POST("/calendars", calendarHandler.Create)
		protected.GET("/calendars/:id/events", calendarHandler.Events)
		protected.POST("/calendars/:id/events", calendarHandler.CreateEvent)

		protected.GET("/ws", wsHandler.Stream)
	}

	return router, nil
}

// corsMiddleware applies the configured allowed origins.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if _, ok := allowed[origin]; ok {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
