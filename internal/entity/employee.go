package entity

// Employee is one row of the Person collection. EmployeeCode is the
// identity key; EmployeeName is the display alias the directory is
// looked up by at sign-in.
type Employee struct {
	EmployeeName     string `json:"employee_name"`
	EmployeeCode     string `json:"employee_code"`
	Designation      string `json:"designation"`
	DiscountCategory string `json:"discount_category"`
}
