package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/incidentx/errors"
	"github.com/techagentng/incidentx/models"
	"github.com/techagentng/incidentx/server/response"
	"github.com/techagentng/incidentx/services/jwt"
)

// handleSignup files a citizen registration from a multipart form. The
// identity document and the profile picture are both mandatory.
func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		reg := &models.Registration{
			FirstName: c.PostForm("first_name"),
			LastName:  c.PostForm("last_name"),
			Email:     c.PostForm("email"),
			Mobile:    c.PostForm("mobile"),
			Address:   c.PostForm("address"),
		}
		password := c.PostForm("password")
		if reg.FirstName == "" || reg.LastName == "" || reg.Email == "" || reg.Mobile == "" || reg.Address == "" || password == "" {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("all fields are required", http.StatusBadRequest))
			return
		}

		aadhaarFile, aadhaarErr := c.FormFile("aadhaar_card")
		picFile, picErr := c.FormFile("profile_pic")
		if aadhaarErr != nil || picErr != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("aadhaar card and profile picture are required", http.StatusBadRequest))
			return
		}

		aadhaarURL, err := s.MediaService.UploadDocument(aadhaarFile, 0, "aadhaar")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		reg.AadhaarURL = aadhaarURL

		picURL, err := s.MediaService.ProcessProfilePicture(picFile, 0)
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		reg.ProfilePicURL = picURL

		created, apiErr := s.AuthService.SignupUser(reg, password)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "Registration submitted. You can log in once an admin approves your account.", http.StatusCreated, created, nil)
	}
}

// handlePrivilegedSignup creates an admin or authority account directly.
func (s *Server) handlePrivilegedSignup(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PrivilegedSignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		user, apiErr := s.AuthService.SignupPrivileged(&req, role)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "Signup successful", http.StatusCreated, user.UserView(), nil)
	}
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		resp, apiErr := s.AuthService.LoginUser(&req)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie("jwt", resp.AccessToken, int(jwt.AccessTokenValidity/time.Second), "/", "", false, true)
		response.JSON(c, "login successful", http.StatusOK, resp, nil)
	}
}

// handleCheckApproval lets the signup page poll the registration state for
// an email without authenticating.
func (s *Server) handleCheckApproval() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CheckApprovalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		status, apiErr := s.AuthService.CheckApproval(req.Email)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{"status": status}, nil)
	}
}

// handleLogout blacklists the access token and clears the session cookie.
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := c.GetString("access_token")
		if err := s.AuthRepository.AddToBlackList(&models.Blacklist{Token: accessToken}); err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		c.SetCookie("jwt", "", -1, "/", "", false, true)
		response.JSON(c, "logout successful", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		profile, apiErr := s.AuthService.GetUserProfile(user.ID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, profile, nil)
	}
}

func (s *Server) handleUpdateProfilePicture() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		picFile, err := c.FormFile("profile_pic")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("profile_pic file is required", http.StatusBadRequest))
			return
		}
		picURL, err := s.MediaService.ProcessProfilePicture(picFile, user.ID)
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		if err := s.AuthRepository.UpdateProfilePic(user.ID, picURL); err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "profile picture updated", http.StatusOK, gin.H{"profile_pic": picURL}, nil)
	}
}

func (s *Server) handleChangePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		var req models.ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		if apiErr := s.AuthService.ChangePassword(user.ID, req.OldPassword, req.NewPassword); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "password changed", http.StatusOK, nil, nil)
	}
}

// parseUintParam reads a numeric path parameter.
func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
