package attendance

import (
	"context"

	"portal/backend/internal/entity"
	"portal/backend/internal/repository/sheet/attendance"
)

type Attendance interface {
	CheckIn(ctx context.Context, request attendance.CheckInRequest) (entity.AttendanceRecord, error)
	CheckOut(ctx context.Context, employeeCode string) (entity.AttendanceRecord, error)
	RequestLeave(ctx context.Context, request attendance.LeaveRequest) (entity.AttendanceRecord, error)
	Today(ctx context.Context, employeeCode string) (*entity.AttendanceRecord, error)
	History(ctx context.Context, employeeCode string) ([]entity.AttendanceRecord, error)
}
