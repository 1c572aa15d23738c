package auth

import (
	"context"

	"portal/backend/internal/entity"
)

type Directory interface {
	Lookup(ctx context.Context, employeeName string) (entity.Employee, error)
}
