package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/techagentng/incidentx/errors"
	"github.com/techagentng/incidentx/models"
	"github.com/techagentng/incidentx/server/response"
)

// handleReportIncident files an incident from a multipart form carrying the
// incident fields and a photo.
func (s *Server) handleReportIncident() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}

		var req models.ReportIncidentRequest
		if err := c.ShouldBind(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}

		imageFile, err := c.FormFile("image")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("incident image is required", http.StatusBadRequest))
			return
		}
		imageURL, thumbnailURL, err := s.MediaService.ProcessIncidentImage(imageFile, user.ID)
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}

		incident, apiErr := s.IncidentService.ReportIncident(user, &req, imageURL, thumbnailURL)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "incident reported", http.StatusCreated, incident, nil)
	}
}

func (s *Server) handleViewIncidents() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		incidents, apiErr := s.IncidentService.ViewIncidents(user)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, incidents, nil)
	}
}

func (s *Server) handleViewIncident() gin.HandlerFunc {
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
		incident, apiErr := s.IncidentService.ViewIncident(user, incidentID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, incident, nil)
	}
}

func (s *Server) handleUserIncidents() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		incidents, apiErr := s.IncidentService.UserIncidents(user.ID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, incidents, nil)
	}
}

// handleSendMessage appends a message to an incident's conversation thread.
func (s *Server) handleSendMessage() gin.HandlerFunc {
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
		var req models.SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		message, apiErr := s.IncidentService.SendMessage(user, incidentID, req.Message)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "message sent", http.StatusCreated, message, nil)
	}
}

// handleGetMessages lists the caller's message threads, scoped by role the
// same way the incident list is.
func (s *Server) handleGetMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		messages, apiErr := s.IncidentService.UserMessages(user)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, messages, nil)
	}
}

func (s *Server) handleSubmitFeedback() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		var req models.SubmitFeedbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		incidentID, err := uuid.Parse(req.IncidentID)
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid incident id", http.StatusBadRequest))
			return
		}
		feedback, apiErr := s.IncidentService.SubmitFeedback(user, incidentID, req.Feedback)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "feedback submitted", http.StatusCreated, feedback, nil)
	}
}
