package db

import (
	"fmt"
	"log"
	"strings"

	"github.com/pkg/errors"
	"github.com/techagentng/incidentx/models"
	"gorm.io/gorm"
)

type AuthRepository interface {
	CreateUser(user *models.User) (*models.User, error)
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id uint) (*models.User, error)
	FindUserByIDWithRelations(id uint) (*models.User, error)
	IsEmailExist(email string) error
	IsMobileExist(mobile string) error
	GetUsersByRole(role models.Role) ([]models.User, error)
	DeleteUser(userID uint) error
	UpdatePassword(userID uint, hashedPassword string) error
	UpdateProfilePic(userID uint, url string) error
	CountUsersByRole(role models.Role) (int64, error)

	CreateRegistration(reg *models.Registration) (*models.Registration, error)
	FindRegistrationByID(id uint) (*models.Registration, error)
	FindRegistrationByEmail(email string) (*models.Registration, error)
	GetAllRegistrations() ([]models.Registration, error)
	UpdateRegistrationStatus(id uint, status models.ApprovalStatus) error
	CountPendingRegistrations() (int64, error)

	AddToBlackList(blacklist *models.Blacklist) error
	IsTokenInBlacklist(token string) bool
}

type authRepo struct {
	DB *gorm.DB
}

func NewAuthRepo(db *GormDB) AuthRepository {
	return &authRepo{db.DB}
}

func (a *authRepo) CreateUser(user *models.User) (*models.User, error) {
	if user == nil {
		log.Println("CreateUser error: user is nil")
		return nil, errors.New("user is nil")
	}

	result := a.DB.Create(user)
	if result.Error != nil {
		log.Printf("CreateUser error: %v", result.Error)
		return nil, result.Error
	}
	return user, nil
}

func (a *authRepo) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := a.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	return &user, nil
}

func (a *authRepo) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	err := a.DB.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByIDWithRelations loads the user together with their incidents and
// notification log for the profile endpoint.
func (a *authRepo) FindUserByIDWithRelations(id uint) (*models.User, error) {
	var user models.User
	err := a.DB.
		Preload("ReportedIncidents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("AssignedIncidents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Notifications", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) IsEmailExist(email string) error {
	var count int64
	err := a.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "gorm count error")
	}
	if count == 0 {
		err = a.DB.Model(&models.Registration{}).Where("email = ?", email).Count(&count).Error
		if err != nil {
			return errors.Wrap(err, "gorm count error")
		}
	}
	if count > 0 {
		return errors.New("email already in use")
	}
	return nil
}

func (a *authRepo) IsMobileExist(mobile string) error {
	var count int64
	err := a.DB.Model(&models.User{}).Where("mobile = ?", mobile).Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "gorm count error")
	}
	if count == 0 {
		err = a.DB.Model(&models.Registration{}).Where("mobile = ?", mobile).Count(&count).Error
		if err != nil {
			return errors.Wrap(err, "gorm count error")
		}
	}
	if count > 0 {
		return errors.New("mobile already in use")
	}
	return nil
}

func (a *authRepo) GetUsersByRole(role models.Role) ([]models.User, error) {
	var users []models.User
	result := a.DB.Where("role = ?", role).Find(&users)
	if result.Error != nil {
		log.Printf("Error fetching users by role %s: %v", role, result.Error)
		return nil, result.Error
	}
	return users, nil
}

func (a *authRepo) DeleteUser(userID uint) error {
	result := a.DB.Delete(&models.User{}, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *authRepo) UpdatePassword(userID uint, hashedPassword string) error {
	result := a.DB.Model(&models.User{}).Where("id = ?", userID).Update("hashed_password", hashedPassword)
	return result.Error
}

func (a *authRepo) UpdateProfilePic(userID uint, url string) error {
	result := a.DB.Model(&models.User{}).Where("id = ?", userID).Update("profile_pic_url", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *authRepo) CountUsersByRole(role models.Role) (int64, error) {
	var count int64
	err := a.DB.Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (a *authRepo) CreateRegistration(reg *models.Registration) (*models.Registration, error) {
	if err := a.DB.Create(reg).Error; err != nil {
		log.Printf("CreateRegistration error: %v", err)
		return nil, err
	}
	return reg, nil
}

func (a *authRepo) FindRegistrationByID(id uint) (*models.Registration, error) {
	var reg models.Registration
	err := a.DB.Where("id = ?", id).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (a *authRepo) FindRegistrationByEmail(email string) (*models.Registration, error) {
	var reg models.Registration
	err := a.DB.Where("email = ?", email).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (a *authRepo) GetAllRegistrations() ([]models.Registration, error) {
	var regs []models.Registration
	result := a.DB.Order("created_at DESC").Find(&regs)
	if result.Error != nil {
		log.Printf("Error fetching registrations: %v", result.Error)
		return nil, result.Error
	}
	return regs, nil
}

func (a *authRepo) UpdateRegistrationStatus(id uint, status models.ApprovalStatus) error {
	result := a.DB.Model(&models.Registration{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *authRepo) CountPendingRegistrations() (int64, error) {
	var count int64
	err := a.DB.Model(&models.Registration{}).Where("status = ?", models.StatusPending).Count(&count).Error
	return count, err
}

func (a *authRepo) AddToBlackList(blacklist *models.Blacklist) error {
	result := a.DB.Create(blacklist)
	return result.Error
}

func normalizeToken(token string) string {
	return strings.TrimSpace(token)
}

func (a *authRepo) IsTokenInBlacklist(token string) bool {
	var count int64
	a.DB.Model(&models.Blacklist{}).Where("token = ?", normalizeToken(token)).Count(&count)
	return count > 0
}
