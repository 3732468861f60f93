package domain

// OrdersReport is one shipped order with its customer, employee and shipper.
type OrdersReport struct {
	CustomerName        string  `json:"customer_name" db:"customer_name"`
	CustomerContactName string  `json:"customer_contact_name" db:"customer_contact_name"`
	CustomerCountry     string  `json:"customer_country" db:"customer_country"`
	EmployeeName        string  `json:"employee_name" db:"employee_name"`
	EmployeeTitle       string  `json:"employee_title" db:"employee_title"`
	ShipperName         string  `json:"shipper_name" db:"shipper_name"`
	ShipName            string  `json:"ship_name" db:"ship_name"`
	OrderDate           string  `json:"order_date" db:"order_date"`
	DeliveryDate        string  `json:"delivery_date" db:"delivery_date"`
	FreightValue        float64 `json:"freight_value" db:"freight_value"`
	OrderValue          float64 `json:"order_value" db:"order_value"`
	BillableValue       float64 `json:"billable_value" db:"billable_value"`
}

// CustomerByYear pivots customer sales into one column per year.
type CustomerByYear struct {
	CustomerName string  `json:"customer_name" db:"customer_name"`
	Sales2021    float64 `json:"sales_2021" db:"sales_2021"`
	Sales2022    float64 `json:"sales_2022" db:"sales_2022"`
	Sales2023    float64 `json:"sales_2023" db:"sales_2023"`
}

// TopPerformer ranks an employee by sales within one order year.
type TopPerformer struct {
	OrderYear    int32   `json:"order_year" db:"order_year"`
	EmployeeName string  `json:"employee_name" db:"employee_name"`
	TotalSales   float64 `json:"total_sales" db:"total_sales"`
	SalesRank    int64   `json:"sales_rank" db:"sales_rank"`
}

// SalesChoropleth aggregates 2023 sales per customer country.
type SalesChoropleth struct {
	Country   string  `json:"country" db:"country"`
	Sales2023 float64 `json:"sales_2023" db:"sales_2023"`
}

// CorrelationRow relates the worst shipping delay of a customer to the change
// in its yearly sales.
type CorrelationRow struct {
	CompanyName            string  `json:"company_name" db:"company_name"`
	MaxDateDiffForShipping int32   `json:"max_date_diff_for_shipping" db:"max_date_diff_for_shipping"`
	Sales2022              float64 `json:"sales_2022" db:"sales_2022"`
	Sales2023              float64 `json:"sales_2023" db:"sales_2023"`
	SalesDiff              float64 `json:"sales_diff" db:"sales_diff"`
	TrueFalse              int32   `json:"true_false" db:"true_false"`
}

// CorrelationStats summarises CorrelationRow flags on one side of zero sales change.
type CorrelationStats struct {
	TrueCount    int32   `json:"true_count" db:"true_count"`
	FalseCount   int32   `json:"false_count" db:"false_count"`
	PercentTrue  float64 `json:"percent_true" db:"percent_true"`
	PercentFalse float64 `json:"percent_false" db:"percent_false"`
}
