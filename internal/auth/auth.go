package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"portal/backend/internal/entity"
)

// Claims carries the signed-in employee's identity through a request.
// EmployeeCode is the identity key every attendance operation uses.
type Claims struct {
	EmployeeCode string `json:"employee_code"`
	EmployeeName string `json:"employee_name"`
	Designation  string `json:"designation"`
	jwt.RegisteredClaims
}

type Auth struct {
	key []byte
	ttl time.Duration
}

func New(key string, ttl time.Duration) *Auth {
	return &Auth{key: []byte(key), ttl: ttl}
}

func (a *Auth) GenerateToken(employee entity.Employee) (string, error) {
	now := time.Now()

	claims := Claims{
		EmployeeCode: employee.EmployeeCode,
		EmployeeName: employee.EmployeeName,
		Designation:  employee.Designation,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employee.EmployeeCode,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return token, nil
}

func (a *Auth) ValidateToken(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
