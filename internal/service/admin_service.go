package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/repository"
)

type AdminService interface {
	Authenticate(username, password string) (*models.AdminAccount, error)
}

type adminService struct {
	adminRepo repository.AdminRepository
}

func NewAdminService(adminRepo repository.AdminRepository) AdminService {
	return &adminService{adminRepo: adminRepo}
}

func (s *adminService) Authenticate(username, password string) (*models.AdminAccount, error) {
	admin, err := s.adminRepo.GetAdminByUsername(username)
	if err != nil {
		return nil, err
	}
	if admin == nil || admin.Disabled || admin.Role != models.RoleAdmin {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}
