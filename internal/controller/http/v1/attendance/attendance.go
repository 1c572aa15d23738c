package attendance

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"portal/backend/internal/entity"
	"portal/backend/internal/middleware"
	"portal/backend/internal/pkg/repository/spreadsheet"
	"portal/backend/internal/repository/sheet/attendance"
	"portal/backend/internal/repository/sheet/person"
	"portal/backend/internal/service/location"
)

type Controller struct {
	attendance Attendance
	geocoder   location.Geocoder
}

func NewController(attendance Attendance, geocoder location.Geocoder) *Controller {
	return &Controller{attendance: attendance, geocoder: geocoder}
}

type coordinates struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Accuracy  float64 `json:"accuracy"`
}

type checkInRequest struct {
	Status       string       `json:"status" binding:"required"`
	LocationLink string       `json:"location_link"`
	Location     *coordinates `json:"location"`
}

type leaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

func (uc *Controller) CheckIn(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var request checkInRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}

	// A pasted map link wins; otherwise derive the reference from the
	// posted browser coordinates.
	reference := request.LocationLink
	if reference == "" && request.Location != nil {
		sample := entity.LocationSample{
			Latitude:   request.Location.Latitude,
			Longitude:  request.Location.Longitude,
			Accuracy:   request.Location.Accuracy,
			CapturedAt: time.Now(),
		}
		reference = location.Reference(c.Request.Context(), uc.geocoder, sample)
	}

	record, err := uc.attendance.CheckIn(c.Request.Context(), attendance.CheckInRequest{
		EmployeeCode: claims.EmployeeCode,
		Status:       request.Status,
		LocationLink: reference,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "data": record})
}

func (uc *Controller) CheckOut(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	record, err := uc.attendance.CheckOut(c.Request.Context(), claims.EmployeeCode)
	if errors.Is(err, attendance.ErrClockSkew) {
		// The check-out was persisted with a blank duration; tell the
		// caller why the duration is missing.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": true, "data": record, "warning": "check-out recorded before check-in; duration not stored"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "data": record})
}

func (uc *Controller) RequestLeave(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var request leaveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "leave_type and reason required"})
		return
	}

	record, err := uc.attendance.RequestLeave(c.Request.Context(), attendance.LeaveRequest{
		EmployeeCode: claims.EmployeeCode,
		Reason:       request.LeaveType + ": " + request.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "data": record})
}

func (uc *Controller) Today(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	record, err := uc.attendance.Today(c.Request.Context(), claims.EmployeeCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "data": record})
}

func (uc *Controller) History(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	records, err := uc.attendance.History(c.Request.Context(), claims.EmployeeCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "data": gin.H{"results": records, "count": len(records)}})
}

// respondError maps business outcomes and store failures onto HTTP
// statuses. Terminal store failures carry a human-readable cause;
// recovery details stay in the logs.
func respondError(c *gin.Context, err error) {
	var terminal *spreadsheet.TerminalError

	switch {
	case errors.Is(err, attendance.ErrDuplicateAttendance):
		c.JSON(http.StatusConflict, gin.H{"error": "attendance already recorded for today"})
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		c.JSON(http.StatusConflict, gin.H{"error": "already checked out today"})
	case errors.Is(err, attendance.ErrNoOpenCheckIn):
		c.JSON(http.StatusConflict, gin.H{"error": "no open check-in for today"})
	case errors.Is(err, attendance.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be Present or Half Day"})
	case errors.Is(err, person.ErrUnknownEmployee):
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
	case errors.As(err, &terminal):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": terminal.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "attendance operation failed"})
	}
}
