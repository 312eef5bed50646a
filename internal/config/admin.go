package config

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/repository"
)

func EnsureAdminUser(adminRepo repository.AdminRepository, adminUser, adminPass string, log *zap.Logger) error {
	admin, err := adminRepo.GetAdminByUsername(adminUser)
	if err != nil {
		return err
	}
	if admin != nil {
		log.Info("admin user already exists", zap.String("username", adminUser))
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin = &models.AdminAccount{
		ID:        primitive.NewObjectID(),
		Username:  adminUser,
		Password:  string(hashedPassword),
		Role:      models.RoleAdmin,
		CreatedAt: time.Now(),
	}
	if err := adminRepo.SaveAdmin(admin); err != nil {
		return err
	}

	log.Info("default admin user created", zap.String("username", adminUser))
	return nil
}
