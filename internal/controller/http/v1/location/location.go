package location

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"portal/backend/internal/entity"
	"portal/backend/internal/middleware"
	"portal/backend/internal/pkg/repository/spreadsheet"
	"portal/backend/internal/service/location"
)

type Controller struct {
	tracker  Tracker
	geocoder location.Geocoder
}

func NewController(tracker Tracker, geocoder location.Geocoder) *Controller {
	return &Controller{tracker: tracker, geocoder: geocoder}
}

type logRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Accuracy  float64 `json:"accuracy"`
}

// Log appends the signed-in employee's current position to the location
// log. Repeated posts within the same hour are debounced into a single
// row.
func (uc *Controller) Log(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var request logRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude required"})
		return
	}

	sample := entity.LocationSample{
		Latitude:   request.Latitude,
		Longitude:  request.Longitude,
		Accuracy:   request.Accuracy,
		CapturedAt: time.Now(),
	}

	employee := entity.Employee{
		EmployeeName: claims.EmployeeName,
		EmployeeCode: claims.EmployeeCode,
		Designation:  claims.Designation,
	}

	reference := location.Reference(c.Request.Context(), uc.geocoder, sample)

	logged, err := uc.tracker.Log(c.Request.Context(), employee, sample, reference)
	if err != nil {
		var terminal *spreadsheet.TerminalError
		if errors.As(err, &terminal) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": terminal.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "location log failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "data": gin.H{"logged": logged, "reference": reference}})
}
