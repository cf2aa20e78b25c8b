package user

import (
	"context"
	"fmt"

	"github.com/troop127/portal/internal/errdef"
	"github.com/troop127/portal/pkg/model"
)

// CreateAdminUser provisions the bootstrap administrator from configuration.
// It is idempotent: an existing user with the same email only has its role and
// password asserted.
func CreateAdminUser(ctx context.Context, email, password string, service *Service) error {
	hashedPassword, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %v", err)
	}

	u, err := service.repository.findByEmail(ctx, email)
	if err != nil {
		if !errdef.IsNotFound(err) {
			return fmt.Errorf("error creating admin user: %v", err)
		}
		u = &model.User{
			Email:    email,
			Name:     "Administrator",
			Role:     model.RoleAdmin,
			Password: hashedPassword,
		}
		if err := service.repository.create(ctx, u); err != nil {
			return fmt.Errorf("error creating admin user: %v", err)
		}
		return nil
	}

	u.Role = model.RoleAdmin
	u.Password = hashedPassword

	err = service.Save(ctx, u)
	if err != nil {
		return fmt.Errorf("error saving admin user: %v", err)
	}

	return nil
}
