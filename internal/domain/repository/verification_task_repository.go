package repository

import "github.com/jhoicas/mealtrace-api/internal/domain/entity"

// VerificationTaskRepository define el puerto de tareas de revisión humana.
type VerificationTaskRepository interface {
	OpenTask(task *entity.VerificationTask) error
}
