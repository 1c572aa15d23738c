package person

import (
	"context"

	"github.com/pkg/errors"

	"portal/backend/internal/entity"
	"portal/backend/internal/pkg/repository/spreadsheet"
)

// Collection is the employee directory. It is read-only during
// attendance operations; people are added to it out of band.
const Collection = "Person"

const (
	colEmployeeName     = "Employee Name"
	colEmployeeCode     = "Employee Code"
	colDesignation      = "Designation"
	colDiscountCategory = "Discount Category"
)

// Columns is the directory schema registered with the store.
var Columns = []string{colEmployeeName, colEmployeeCode, colDesignation, colDiscountCategory}

// ErrUnknownEmployee identifies lookups for names or codes the
// directory does not carry. This is a caller error, not a store fault.
var ErrUnknownEmployee = errors.New("unknown employee")

type Repository struct {
	store spreadsheet.Store
}

func NewRepository(store spreadsheet.Store) *Repository {
	return &Repository{store: store}
}

// Lookup resolves an employee by display name, the key the sign-in
// form works with.
func (r *Repository) Lookup(ctx context.Context, employeeName string) (entity.Employee, error) {
	return r.find(ctx, colEmployeeName, employeeName)
}

// LookupByCode resolves an employee by the stable identity key every
// attendance operation uses.
func (r *Repository) LookupByCode(ctx context.Context, employeeCode string) (entity.Employee, error) {
	return r.find(ctx, colEmployeeCode, employeeCode)
}

func (r *Repository) find(ctx context.Context, column, value string) (entity.Employee, error) {
	rows, err := r.store.Read(ctx, Collection)
	if err != nil {
		return entity.Employee{}, errors.Wrap(err, "reading employee directory")
	}

	for _, row := range rows {
		if row[column] == value {
			return entity.Employee{
				EmployeeName:     row[colEmployeeName],
				EmployeeCode:     row[colEmployeeCode],
				Designation:      row[colDesignation],
				DiscountCategory: row[colDiscountCategory],
			}, nil
		}
	}

	return entity.Employee{}, errors.Wrapf(ErrUnknownEmployee, "%s %q", column, value)
}
