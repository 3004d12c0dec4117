package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/techagentng/incidentx/errors"
	"github.com/techagentng/incidentx/models"
	"github.com/techagentng/incidentx/server/response"
)

// handleVerifyRegistration settles a pending registration with an explicit
// approve or reject decision.
func (s *Server) handleVerifyRegistration() gin.HandlerFunc {
	return func(c *gin.Context) {
		registrationID, err := parseUintParam(c, "id")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid registration id", http.StatusBadRequest))
			return
		}
		var req models.VerifyRegistrationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		reg, apiErr := s.AuthService.VerifyRegistration(registrationID, *req.Approval)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		message := "registration rejected"
		if reg.Status == models.StatusApproved {
			message = "registration approved"
		}
		response.JSON(c, message, http.StatusOK, reg, nil)
	}
}

func (s *Server) handleViewRegistrations() gin.HandlerFunc {
	return func(c *gin.Context) {
		regs, err := s.AuthRepository.GetAllRegistrations()
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "", http.StatusOK, regs, nil)
	}
}

func (s *Server) handleGetAllUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, apiErr := s.AuthService.GetAllUsersByRole(models.RoleUser)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		views := make([]models.UserResponse, 0, len(users))
		for i := range users {
			views = append(views, users[i].UserView())
		}
		response.JSON(c, "", http.StatusOK, views, nil)
	}
}

func (s *Server) handleGetAllAuthorities() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, apiErr := s.AuthService.GetAllUsersByRole(models.RoleAuthority)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		views := make([]models.UserResponse, 0, len(users))
		for i := range users {
			views = append(views, users[i].UserView())
		}
		response.JSON(c, "", http.StatusOK, views, nil)
	}
}

func (s *Server) handleRemoveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseUintParam(c, "id")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid user id", http.StatusBadRequest))
			return
		}
		if apiErr := s.AuthService.DeleteUser(userID); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "user removed", http.StatusOK, nil, nil)
	}
}

// handleAssignIncident hands an incident to an authority and notifies both
// the authority and the reporter.
func (s *Server) handleAssignIncident() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		incidentID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid incident id", http.StatusBadRequest))
			return
		}
		var req models.AssignIncidentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		incident, apiErr := s.IncidentService.AssignIncident(user, incidentID, req.AuthorityID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "incident assigned", http.StatusOK, incident, nil)
	}
}

func (s *Server) handleAdminDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, recent, monthly, apiErr := s.IncidentService.AdminDashboard()
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{
			"stats":            stats,
			"recent_incidents": recent,
			"monthly_counts":   monthly,
		}, nil)
	}
}
