package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"friendnet/config"
	"friendnet/internal/handler"
	"friendnet/internal/model"
	"friendnet/internal/repository"
	"friendnet/internal/service"
	"friendnet/pkg/cache"
	dbPkg "friendnet/pkg/db"
	"friendnet/pkg/jwt"
	"friendnet/pkg/logger"
	"friendnet/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("friendnet starting",
		zap.String("port", cfg.Server.Port),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
	)

	if _, err := dbPkg.InitDB(cfg.Database); err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("closing database failed", zap.Error(err))
		}
	}()

	if err := dbPkg.AutoMigrate(
		&model.User{},
		&model.Friendship{},
		&model.FriendRequest{},
		&model.Dismissal{},
		&model.Group{},
		&model.Membership{},
		&model.Post{},
		&model.PostLike{},
	); err != nil {
		log.Fatal("auto migration failed", zap.Error(err))
	}

	// The cache is an optimization; the server runs without it.
	if err := cache.InitCache(cfg.Redis); err != nil {
		log.Warn("cache unavailable, running without it", zap.Error(err))
	} else {
		defer cache.Close()
	}

	jwtSvc := jwt.NewJWTService(cfg.JWT)

	orm := dbPkg.GetDB()
	userRepo := repository.NewUserRepository(orm)
	graphRepo := repository.NewGraphRepository(orm)
	relationshipRepo := repository.NewRelationshipRepository(orm)
	groupRepo := repository.NewGroupRepository(orm)
	postRepo := repository.NewPostRepository(orm)

	userSvc := service.NewUserService(userRepo, jwtSvc)
	relationshipSvc := service.NewRelationshipService(relationshipRepo, graphRepo, userRepo)
	suggestionSvc := service.NewSuggestionService(userRepo, graphRepo, groupRepo, cfg.Engine)
	insightSvc := service.NewInsightService(userRepo, graphRepo, suggestionSvc, cfg.Engine)
	feedSvc := service.NewFeedService(postRepo, graphRepo, userRepo, cfg.Engine)
	groupSvc := service.NewGroupService(groupRepo, userRepo, graphRepo)

	userHandler := handler.NewUserHandler(userSvc, insightSvc)
	friendHandler := handler.NewFriendHandler(relationshipSvc, suggestionSvc)
	postHandler := handler.NewPostHandler(feedSvc)
	groupHandler := handler.NewGroupHandler(groupSvc, suggestionSvc)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logger.LoggerMiddleware())
	router.Use(logger.ErrorLoggerMiddleware())

	setupBasicRoutes(router)

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			authUsers := users.Group("")
			authUsers.Use(jwtSvc.AuthMiddleware())
			{
				authUsers.GET("/me", userHandler.Me)
				authUsers.PUT("/me", userHandler.UpdateProfile)
				authUsers.GET("/me/insights", userHandler.Insights)
				authUsers.GET("/search", friendHandler.Search)
				authUsers.GET("/:user_id", userHandler.GetProfile)
			}
		}

		friends := v1.Group("/friends")
		friends.Use(jwtSvc.AuthMiddleware())
		{
			friends.GET("", friendHandler.List)
			friends.GET("/suggestions", friendHandler.Suggestions)
			friends.GET("/requests", friendHandler.Requests)
			friends.POST("/requests", friendHandler.SendRequest)
			friends.POST("/requests/:request_id/accept", friendHandler.Accept)
			friends.POST("/requests/:request_id/reject", friendHandler.Reject)
			friends.DELETE("/requests/:request_id", friendHandler.Cancel)
			friends.POST("/dismiss/:user_id", friendHandler.Dismiss)
		}

		posts := v1.Group("/posts")
		posts.Use(jwtSvc.AuthMiddleware())
		{
			posts.GET("/feed", postHandler.Feed)
			posts.GET("/mine", postHandler.Mine)
			posts.POST("", postHandler.Create)
			posts.GET("/:post_id", postHandler.Get)
			posts.POST("/:post_id/like", postHandler.ToggleLike)
		}

		groups := v1.Group("/groups")
		groups.Use(jwtSvc.AuthMiddleware())
		{
			groups.GET("/mine", groupHandler.Mine)
			groups.GET("/suggestions", groupHandler.Suggestions)
			groups.GET("/search", groupHandler.Search)
			groups.POST("", groupHandler.Create)
			groups.GET("/:group_id", groupHandler.Detail)
			groups.GET("/:group_id/members", groupHandler.Members)
			groups.GET("/:group_id/similar", groupHandler.Similar)
			groups.GET("/:group_id/member-suggestions", groupHandler.MemberSuggestions)
			groups.POST("/:group_id/join", groupHandler.Join)
			groups.POST("/:group_id/leave", groupHandler.Leave)
		}
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}

func setupBasicRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := dbPkg.HealthCheck(); err != nil {
			status = "db-down"
		}
		cacheStatus := "ok"
		if err := cache.HealthCheck(); err != nil {
			cacheStatus = "down"
		}
		response.Success(c, gin.H{
			"status": status,
			"cache":  cacheStatus,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "friendnet API",
			"version": "1.0.0",
		})
	})
}
