package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/techagentng/incidentx/errors"
	"github.com/techagentng/incidentx/models"
	"github.com/techagentng/incidentx/server/response"
)

// handleUpdateIncidentStatus moves an incident to a new status. Admins may
// update any incident; authorities only those assigned to them, which the
// service enforces.
func (s *Server) handleUpdateIncidentStatus() gin.HandlerFunc {
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
		var req models.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		incident, apiErr := s.IncidentService.UpdateIncidentStatus(user, incidentID, &req)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "status updated", http.StatusOK, incident, nil)
	}
}

func (s *Server) handleAssignedIncidents() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		incidents, apiErr := s.IncidentService.AssignedIncidents(user.ID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, incidents, nil)
	}
}

// handleGetUserByID serves a user's public profile so authorities can see
// who reported an incident.
func (s *Server) handleGetUserByID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseUintParam(c, "id")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid user id", http.StatusBadRequest))
			return
		}
		user, apiErr := s.AuthService.GetUserProfile(userID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, user.UserView(), nil)
	}
}

// handleIncidentFeedback lists only incidents that carry feedback.
func (s *Server) handleIncidentFeedback() gin.HandlerFunc {
	return func(c *gin.Context) {
		incidents, apiErr := s.IncidentService.IncidentsWithFeedback()
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, incidents, nil)
	}
}

func (s *Server) handleAuthorityDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		stats, recent, apiErr := s.IncidentService.AuthorityDashboard(user.ID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{
			"stats":            stats,
			"recent_incidents": recent,
		}, nil)
	}
}
