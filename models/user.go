package models

import (
	"errors"
	"fmt"

	goval "github.com/go-passwd/validator"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/leebenson/conform"
	"golang.org/x/crypto/bcrypt"
)

// ApprovalStatus is the registration pipeline state.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// User represents an approved account. Citizen accounts come out of the
// Registration pipeline; admin and authority accounts are created directly
// with StatusApproved.
type User struct {
	Model
	FirstName      string         `json:"first_name" conform:"trim" binding:"required,min=2"`
	LastName       string         `json:"last_name" conform:"trim" binding:"required,min=2"`
	Email          string         `json:"email" conform:"trim,lower" gorm:"unique;not null" binding:"required,email"`
	Mobile         string         `json:"mobile" conform:"trim" gorm:"unique;not null" binding:"required"`
	Address        string         `json:"address" conform:"trim" binding:"required"`
	Password       string         `json:"password,omitempty" gorm:"-"`
	HashedPassword string         `json:"-"`
	AadhaarURL     string         `json:"aadhaar_card,omitempty"`
	ProfilePicURL  string         `json:"profile_pic,omitempty"`
	Role           Role           `json:"role" gorm:"type:varchar(16);default:'user';index"`
	Status         ApprovalStatus `json:"status" gorm:"type:varchar(16);default:'approved'"`

	Notifications     []Notification `json:"notifications,omitempty" gorm:"foreignKey:UserID"`
	ReportedIncidents []Incident     `json:"reported_incidents,omitempty" gorm:"foreignKey:ReportedByID"`
	AssignedIncidents []Incident     `json:"assigned_incidents,omitempty" gorm:"foreignKey:AssignedToID"`
}

// Registration is a pending citizen signup. Approval copies it into User
// with role "user"; the record itself is kept with its final status.
type Registration struct {
	Model
	FirstName      string         `json:"first_name" conform:"trim"`
	LastName       string         `json:"last_name" conform:"trim"`
	Email          string         `json:"email" conform:"trim,lower" gorm:"unique;not null"`
	Mobile         string         `json:"mobile" conform:"trim" gorm:"unique;not null"`
	Address        string         `json:"address" conform:"trim"`
	HashedPassword string         `json:"-"`
	AadhaarURL     string         `json:"aadhaar_card"`
	ProfilePicURL  string         `json:"profile_pic"`
	Status         ApprovalStatus `json:"status" gorm:"type:varchar(16);default:'pending'"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	UserResponse
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Mobile     string `json:"mobile"`
	Address    string `json:"address"`
	ProfilePic string `json:"profile_pic,omitempty"`
	Role       Role   `json:"role"`
}

// PrivilegedSignupRequest is the JSON body for admin and authority signup.
// No document uploads; those accounts skip the approval pipeline.
type PrivilegedSignupRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2"`
	LastName  string `json:"last_name" binding:"required,min=2"`
	Email     string `json:"email" binding:"required,email"`
	Mobile    string `json:"mobile" binding:"required"`
	Address   string `json:"address" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type CheckApprovalRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type VerifyRegistrationRequest struct {
	Approval *bool `json:"approval" binding:"required"`
}

// UserView strips credential and relation fields for listing endpoints.
func (u *User) UserView() UserResponse {
	return UserResponse{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Mobile:     u.Mobile,
		Address:    u.Address,
		ProfilePic: u.ProfilePicURL,
		Role:       u.Role,
	}
}

// VerifyPassword compares the supplied password with the stored hash.
func (u *User) VerifyPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
}

// ValidatePassword enforces the signup password policy.
func ValidatePassword(password string) error {
	passwordValidator := goval.New(goval.MinLength(6, errors.New("password cant be less than 6 characters")),
		goval.MaxLength(64, errors.New("password cant be more than 64 characters")))
	return passwordValidator.Validate(password)
}

// ValidateWhiteSpaces applies the conform tags (trim, lower) in place.
func ValidateWhiteSpaces(data interface{}) error {
	return conform.Strings(data)
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans) + "; ")
		errs = append(errs, translatedErr)
	}
	return errs
}
