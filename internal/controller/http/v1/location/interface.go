package location

import (
	"context"

	"portal/backend/internal/entity"
)

type Tracker interface {
	Log(ctx context.Context, employee entity.Employee, sample entity.LocationSample, reference string) (bool, error)
}
