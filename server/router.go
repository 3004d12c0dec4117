package server

import (
	"fmt"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/techagentng/incidentx/models"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 32 << 20
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 10,
	})
	loginLimiter := limitRateForLogin(store)

	apirouter := router.Group("/api/v1")
	apirouter.POST("/auth/signup", s.handleSignup())
	apirouter.POST("/auth/admin-signup", s.handlePrivilegedSignup(models.RoleAdmin))
	apirouter.POST("/auth/authority-signup", s.handlePrivilegedSignup(models.RoleAuthority))
	apirouter.POST("/auth/login", loginLimiter, s.handleLogin())
	apirouter.POST("/auth/check-approval", s.handleCheckApproval())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/logout", s.handleLogout())
	authorized.GET("/me", s.handleShowProfile())
	authorized.PUT("/me/profile-pic", s.handleUpdateProfilePicture())
	authorized.PUT("/me/password", s.handleChangePassword())
	authorized.POST("/user/report-incident", s.handleReportIncident())
	authorized.GET("/incidents", s.handleViewIncidents())
	authorized.GET("/incidents/:id", s.handleViewIncident())
	authorized.GET("/user/incidents", s.handleUserIncidents())
	authorized.POST("/incidents/feedback", s.handleSubmitFeedback())
	authorized.POST("/incidents/:id/message", s.handleSendMessage())
	authorized.GET("/messages", s.handleGetMessages())
	authorized.GET("/notifications", s.handleGetNotifications())
	authorized.PUT("/notifications/:id/read", s.handleMarkNotificationRead())
	authorized.PUT("/notifications/read-all", s.handleMarkAllNotificationsRead())
	authorized.DELETE("/notifications", s.handleClearNotifications())
	authorized.GET("/ws", s.handleWebSocket())

	admin := apirouter.Group("/admin")
	admin.Use(s.Authorize(), s.RequireRoles(models.RoleAdmin))
	admin.PUT("/verify/:id", s.handleVerifyRegistration())
	admin.GET("/registrations", s.handleViewRegistrations())
	admin.GET("/users", s.handleGetAllUsers())
	admin.GET("/authorities", s.handleGetAllAuthorities())
	admin.DELETE("/users/:id", s.handleRemoveUser())
	admin.PUT("/incidents/:id/assign", s.handleAssignIncident())
	admin.GET("/dashboard", s.handleAdminDashboard())

	authority := apirouter.Group("/authority")
	authority.Use(s.Authorize(), s.RequireRoles(models.RoleAdmin, models.RoleAuthority))
	authority.PUT("/incidents/:id/status", s.handleUpdateIncidentStatus())
	authority.GET("/assigned-incidents", s.handleAssignedIncidents())
	authority.GET("/user/:id", s.handleGetUserByID())
	authority.GET("/feedback", s.handleIncidentFeedback())
	authority.GET("/dashboard", s.handleAuthorityDashboard())
}
