package repository

import "github.com/jhoicas/mealtrace-api/internal/domain/entity"

// UserRepository define el puerto de persistencia de usuarios.
type UserRepository interface {
	Create(user *entity.User) error
	FindByEmail(email string) (*entity.User, error)
	GetByEmailAndOrg(email, organizationID string) (*entity.User, error)
}
