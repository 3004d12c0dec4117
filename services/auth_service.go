package services

import (
	"log"
	"net/http"

	"github.com/techagentng/incidentx/config"
	"github.com/techagentng/incidentx/db"
	apiError "github.com/techagentng/incidentx/errors"
	"github.com/techagentng/incidentx/mailingservices"
	"github.com/techagentng/incidentx/models"
	"github.com/techagentng/incidentx/services/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles signup, the registration approval pipeline, login and
// account management.
type AuthService interface {
	SignupUser(reg *models.Registration, password string) (*models.Registration, *apiError.Error)
	SignupPrivileged(req *models.PrivilegedSignupRequest, role models.Role) (*models.User, *apiError.Error)
	LoginUser(req *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	CheckApproval(email string) (models.ApprovalStatus, *apiError.Error)
	VerifyRegistration(registrationID uint, approve bool) (*models.Registration, *apiError.Error)
	GetUserProfile(userID uint) (*models.User, *apiError.Error)
	GetAllUsersByRole(role models.Role) ([]models.User, *apiError.Error)
	DeleteUser(userID uint) *apiError.Error
	ChangePassword(userID uint, oldPassword, newPassword string) *apiError.Error
}

type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
	mail     mailingservices.Mailer
}

func NewAuthService(authRepo db.AuthRepository, mail mailingservices.Mailer, conf *config.Config) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
		mail:     mail,
	}
}

// SignupUser files a citizen registration. The account stays pending until an
// admin approves it; no User row exists before then.
func (s *authService) SignupUser(reg *models.Registration, password string) (*models.Registration, *apiError.Error) {
	if err := models.ValidateWhiteSpaces(reg); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}
	if err := models.ValidatePassword(password); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}
	if err := s.authRepo.IsEmailExist(reg.Email); err != nil {
		return nil, apiError.GetUniqueContraintError(err)
	}
	if err := s.authRepo.IsMobileExist(reg.Mobile); err != nil {
		return nil, apiError.GetUniqueContraintError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("bcrypt error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	reg.HashedPassword = string(hashed)
	reg.Status = models.StatusPending

	created, err := s.authRepo.CreateRegistration(reg)
	if err != nil {
		return nil, apiError.New("unable to create registration", http.StatusInternalServerError)
	}
	return created, nil
}

// SignupPrivileged creates an admin or authority account directly, skipping
// the approval pipeline.
func (s *authService) SignupPrivileged(req *models.PrivilegedSignupRequest, role models.Role) (*models.User, *apiError.Error) {
	if !models.ValidRole(role) || role == models.RoleUser {
		return nil, apiError.New("invalid role", http.StatusBadRequest)
	}
	if err := models.ValidatePassword(req.Password); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Mobile:    req.Mobile,
		Address:   req.Address,
		Role:      role,
		Status:    models.StatusApproved,
	}
	if err := models.ValidateWhiteSpaces(user); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}
	if err := s.authRepo.IsEmailExist(user.Email); err != nil {
		return nil, apiError.GetUniqueContraintError(err)
	}
	if err := s.authRepo.IsMobileExist(user.Mobile); err != nil {
		return nil, apiError.GetUniqueContraintError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("bcrypt error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	user.HashedPassword = string(hashed)

	created, err := s.authRepo.CreateUser(user)
	if err != nil {
		return nil, apiError.New("unable to create user", http.StatusInternalServerError)
	}

	if s.mail != nil {
		if _, err := s.mail.SendWelcomeMessage(created.Email, "Welcome to the Incident Reporting System"); err != nil {
			log.Printf("Welcome email to %s failed: %v", created.Email, err)
		}
	}
	return created, nil
}

// LoginUser authenticates by email and password. Accounts still in the
// approval pipeline cannot log in and get a message naming their state.
func (s *authService) LoginUser(req *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	user, err := s.authRepo.FindUserByEmail(req.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			reg, regErr := s.authRepo.FindRegistrationByEmail(req.Email)
			if regErr == nil {
				switch reg.Status {
				case models.StatusPending:
					return nil, apiError.New("Your registration is pending approval. Please wait for an admin to approve your account.", http.StatusUnauthorized)
				case models.StatusRejected:
					return nil, apiError.New("Your registration was rejected. Please contact support.", http.StatusUnauthorized)
				}
			}
			return nil, apiError.New("User doesn't exist", http.StatusNotFound)
		}
		log.Printf("LoginUser error: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	if err := user.VerifyPassword(req.Password); err != nil {
		return nil, apiError.ErrInvalidPassword
	}

	accessToken, refreshToken, err := jwt.GenerateTokenPair(user.Email, s.Config.JWTSecret, user.ID, string(user.Role))
	if err != nil {
		log.Printf("Token generation error: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	return &models.LoginResponse{
		UserResponse: user.UserView(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// CheckApproval reports the registration state for an email, letting the
// signup page poll without authenticating.
func (s *authService) CheckApproval(email string) (models.ApprovalStatus, *apiError.Error) {
	if _, err := s.authRepo.FindUserByEmail(email); err == nil {
		return models.StatusApproved, nil
	}
	reg, err := s.authRepo.FindRegistrationByEmail(email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", apiError.New("no registration found for this email", http.StatusNotFound)
		}
		return "", apiError.ErrInternalServerError
	}
	return reg.Status, nil
}

// VerifyRegistration settles a pending registration. Approval copies it into
// a citizen account; either way the registration keeps its final status so a
// settled registration cannot be settled twice.
func (s *authService) VerifyRegistration(registrationID uint, approve bool) (*models.Registration, *apiError.Error) {
	reg, err := s.authRepo.FindRegistrationByID(registrationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("registration not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	if reg.Status != models.StatusPending {
		return nil, apiError.New("User is already "+string(reg.Status), http.StatusBadRequest)
	}

	if !approve {
		if err := s.authRepo.UpdateRegistrationStatus(reg.ID, models.StatusRejected); err != nil {
			return nil, apiError.ErrInternalServerError
		}
		reg.Status = models.StatusRejected
		return reg, nil
	}

	user := &models.User{
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		Email:          reg.Email,
		Mobile:         reg.Mobile,
		Address:        reg.Address,
		HashedPassword: reg.HashedPassword,
		AadhaarURL:     reg.AadhaarURL,
		ProfilePicURL:  reg.ProfilePicURL,
		Role:           models.RoleUser,
		Status:         models.StatusApproved,
	}
	if _, err := s.authRepo.CreateUser(user); err != nil {
		return nil, apiError.New("unable to approve registration", http.StatusInternalServerError)
	}
	if err := s.authRepo.UpdateRegistrationStatus(reg.ID, models.StatusApproved); err != nil {
		return nil, apiError.ErrInternalServerError
	}
	reg.Status = models.StatusApproved

	if s.mail != nil {
		if _, err := s.mail.SendWelcomeMessage(user.Email, "Your account has been approved"); err != nil {
			log.Printf("Approval email to %s failed: %v", user.Email, err)
		}
	}
	return reg, nil
}

func (s *authService) GetUserProfile(userID uint) (*models.User, *apiError.Error) {
	user, err := s.authRepo.FindUserByIDWithRelations(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("user not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	return user, nil
}

func (s *authService) GetAllUsersByRole(role models.Role) ([]models.User, *apiError.Error) {
	if !models.ValidRole(role) {
		return nil, apiError.New("invalid role", http.StatusBadRequest)
	}
	users, err := s.authRepo.GetUsersByRole(role)
	if err != nil {
		return nil, apiError.New("unable to fetch users", http.StatusInternalServerError)
	}
	return users, nil
}

func (s *authService) DeleteUser(userID uint) *apiError.Error {
	if err := s.authRepo.DeleteUser(userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError.New("user not found", http.StatusNotFound)
		}
		return apiError.ErrInternalServerError
	}
	return nil
}

func (s *authService) ChangePassword(userID uint, oldPassword, newPassword string) *apiError.Error {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError.New("user not found", http.StatusNotFound)
		}
		return apiError.ErrInternalServerError
	}
	if err := user.VerifyPassword(oldPassword); err != nil {
		return apiError.New("old password is incorrect", http.StatusUnauthorized)
	}
	if err := models.ValidatePassword(newPassword); err != nil {
		return apiError.New(err.Error(), http.StatusBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("bcrypt error: %v", err)
		return apiError.ErrInternalServerError
	}
	if err := s.authRepo.UpdatePassword(userID, string(hashed)); err != nil {
		return apiError.ErrInternalServerError
	}
	return nil
}
