package auth

import (
	"testing"
	"time"

	"portal/backend/internal/entity"
)

func TestTokenRoundTrip(t *testing.T) {
	a := New("test-signing-key", time.Hour)

	token, err := a.GenerateToken(entity.Employee{
		EmployeeName: "Asha",
		EmployeeCode: "E01",
		Designation:  "Sales Executive",
	})
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	claims, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("validating token: %v", err)
	}
	if claims.EmployeeCode != "E01" || claims.EmployeeName != "Asha" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Subject != "E01" {
		t.Fatalf("expected subject E01, got %q", claims.Subject)
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := New("key-one", time.Hour).GenerateToken(entity.Employee{EmployeeCode: "E01"})
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	if _, err := New("key-two", time.Hour).ValidateToken(token); err == nil {
		t.Fatal("expected validation with a different key to fail")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	a := New("test-signing-key", -time.Minute)

	token, err := a.GenerateToken(entity.Employee{EmployeeCode: "E01"})
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	if _, err := a.ValidateToken(token); err == nil {
		t.Fatal("expected an expired token to be rejected")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	if _, err := New("test-signing-key", time.Hour).ValidateToken("not-a-token"); err == nil {
		t.Fatal("expected a malformed token to be rejected")
	}
}
