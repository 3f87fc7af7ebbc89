package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/member-directory/pkg/logger"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type RouterDeps struct {
	Members      *MemberHandler
	Institutions *InstitutionHandler
	Achievements *AchievementHandler

	Logger             logger.Logger
	AllowedOrigins     []string
	RequestTimeout     time.Duration
	MaxMultipartMemory int64
	Checks             map[string]HealthCheck
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	if deps.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = deps.MaxMultipartMemory
	}

	router.Use(
		Recovery(deps.Logger),
		Tracing(),
		RequestLogger(deps.Logger),
		CORS(deps.AllowedOrigins),
		Timeout(deps.RequestTimeout),
		ErrorMiddleware(deps.Logger),
	)

	router.GET("/health", health(deps.Checks))

	router.POST("/upload", deps.Members.Upload)
	router.GET("/members", deps.Members.List)
	router.GET("/members/:key", deps.Members.Lookup)
	router.PUT("/members/:key", deps.Members.Update)
	router.DELETE("/members/:id", deps.Members.Delete)
	router.GET("/member/:slug", deps.Members.Get)
	router.GET("/users", deps.Members.LegacyUsers)
	router.GET("/export/members.xlsx", deps.Members.Export)

	router.PUT("/addCollege", deps.Institutions.Upsert)
	router.GET("/colleges", deps.Institutions.List)
	router.GET("/colleges/:name", deps.Institutions.Get)
	router.POST("/addProject", deps.Institutions.AddProject)
	router.GET("/getProjects", deps.Institutions.ListProjects)

	achievements := router.Group("/achievements")
	{
		achievements.POST("", deps.Achievements.Create)
		achievements.GET("", deps.Achievements.List)
		achievements.GET("/:id", deps.Achievements.Get)
		achievements.PUT("/:id", deps.Achievements.Update)
		achievements.DELETE("/:id", deps.Achievements.Delete)
	}

	return router
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		results := gin.H{}
		for name, check := range checks {
			if err := check(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "UP"
		}
		state := "UP"
		if status != http.StatusOK {
			state = "DOWN"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
