package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"portal/backend/internal/auth"
	"portal/backend/internal/repository/sheet/person"
)

type Controller struct {
	directory Directory
	auth      *auth.Auth
}

func NewController(directory Directory, auth *auth.Auth) *Controller {
	return &Controller{directory: directory, auth: auth}
}

type signInRequest struct {
	EmployeeName string `json:"employee_name" binding:"required"`
	Passkey      string `json:"passkey" binding:"required"`
}

// SignIn authenticates an employee the way the portal always has: the
// passkey must match the Employee Code the directory carries for the
// selected name.
func (uc *Controller) SignIn(c *gin.Context) {
	var request signInRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee_name and passkey required"})
		return
	}

	employee, err := uc.directory.Lookup(c.Request.Context(), request.EmployeeName)
	if errors.Is(err, person.ErrUnknownEmployee) {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "employee directory unavailable"})
		return
	}

	if request.Passkey != employee.EmployeeCode {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := uc.auth.GenerateToken(employee)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"data": gin.H{
			"access_token":  token,
			"employee_name": employee.EmployeeName,
			"designation":   employee.Designation,
		},
	})
}
