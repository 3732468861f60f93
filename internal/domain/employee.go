package domain

// Employee is the payload accepted for insertion into hr.employees. Lengths
// are counted in characters; alphanum admits ASCII letters and digits only.
type Employee struct {
	LastName        string `json:"lastname" validate:"required,min=1,max=20,alphanum"`
	FirstName       string `json:"firstname" validate:"required,min=1,max=10,alphanum"`
	Title           string `json:"title" validate:"required,min=1,max=50"`
	TitleOfCourtesy string `json:"titleofcourtesy" validate:"required,min=1,max=30"`
	BirthDate       string `json:"birthdate" validate:"required,datetime=2006-01-02"`
	HireDate        string `json:"hiredate" validate:"required,datetime=2006-01-02"`
	Address         string `json:"address" validate:"required,min=1,max=50"`
	City            string `json:"city" validate:"required,min=1,max=60,alphanum"`
	Region          string `json:"region" validate:"required,min=1,max=50,alphanum"`
	PostalCode      string `json:"postalcode" validate:"required,min=1,max=10,alphanum"`
	Country         string `json:"country" validate:"required,min=1,max=15,alphanum"`
	Phone           string `json:"phone" validate:"required,min=1,max=24"`
	ManagerID       *int32 `json:"mgrid"`
}
