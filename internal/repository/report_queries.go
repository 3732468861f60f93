package repository

import (
	"fmt"
	"maps"
	"slices"
)

// Report names double as route suffixes and export keys.
const (
	ReportOrders                = "orders_report"
	ReportCustomerSalesByYear   = "customer_sales_by_year"
	ReportTopPerformers         = "top_performers"
	ReportSalesChoropleth       = "sales_choropleth"
	ReportYearBuiltTotal        = "year_built_total"
	ReportSalesByBedroom        = "sales_by_bedroom"
	ReportAvgPricePerAcreage    = "avg_price_per_acreage"
	ReportCurrencies            = "currencies"
	ReportCorrelationTable      = "correlation_table"
	ReportCorrelationStatsAbove = "correlation_stats_above_zero"
	ReportCorrelationStatsBelow = "correlation_stats_below_zero"
)

// ShippingDelayThresholdDays flags customers whose slowest shipment took longer.
const ShippingDelayThresholdDays = 15

// Report is a fixed, parameterless query and the label used in error messages.
type Report struct {
	Name  string
	Label string
	SQL   string
}

const orderValuesCTE = `order_values AS (
    SELECT o.orderid,
           o.custid,
           o.empid,
           o.orderdate::date   AS orderdate,
           o.shippeddate::date AS shippeddate,
           SUM(od.qty * od.unitprice * (1 - od.discount)) AS val
    FROM sales.orders o
    JOIN sales.orderdetails od ON od.orderid = o.orderid
    GROUP BY o.orderid, o.custid, o.empid, o.orderdate, o.shippeddate
)`

var correlationCTE = fmt.Sprintf(`%s,
customer_stats AS (
    SELECT c.companyname AS company_name,
           COALESCE(MAX(v.shippeddate - v.orderdate), 0)::int AS max_date_diff_for_shipping,
           COALESCE(SUM(v.val) FILTER (WHERE EXTRACT(YEAR FROM v.orderdate) = 2022), 0)::float8 AS sales_2022,
           COALESCE(SUM(v.val) FILTER (WHERE EXTRACT(YEAR FROM v.orderdate) = 2023), 0)::float8 AS sales_2023
    FROM sales.customers c
    JOIN order_values v ON v.custid = c.custid
    GROUP BY c.companyname
),
correlation AS (
    SELECT company_name,
           max_date_diff_for_shipping,
           sales_2022,
           sales_2023,
           (sales_2023 - sales_2022)::float8 AS sales_diff,
           CASE WHEN max_date_diff_for_shipping > %d THEN 1 ELSE 0 END AS true_false
    FROM customer_stats
)`, orderValuesCTE, ShippingDelayThresholdDays)

const correlationStatsSelect = `SELECT COUNT(*) FILTER (WHERE true_false = 1)::int AS true_count,
       COUNT(*) FILTER (WHERE true_false = 0)::int AS false_count,
       COALESCE(100.0 * COUNT(*) FILTER (WHERE true_false = 1) / NULLIF(COUNT(*), 0), 0)::float8 AS percent_true,
       COALESCE(100.0 * COUNT(*) FILTER (WHERE true_false = 0) / NULLIF(COUNT(*), 0), 0)::float8 AS percent_false
FROM correlation`

var reportCatalog = map[string]Report{
	ReportOrders: {
		Name:  ReportOrders,
		Label: "Orders",
		SQL: `SELECT c.companyname AS customer_name,
       c.contactname AS customer_contact_name,
       c.country AS customer_country,
       e.firstname || ' ' || e.lastname AS employee_name,
       e.title AS employee_title,
       s.companyname AS shipper_name,
       o.shipname AS ship_name,
       to_char(o.orderdate, 'YYYY-MM-DD') AS order_date,
       COALESCE(to_char(o.shippeddate, 'YYYY-MM-DD'), '') AS delivery_date,
       o.freight::float8 AS freight_value,
       SUM(od.qty * od.unitprice * (1 - od.discount))::float8 AS order_value,
       (SUM(od.qty * od.unitprice * (1 - od.discount)) + o.freight)::float8 AS billable_value
FROM sales.orders o
JOIN sales.customers c ON c.custid = o.custid
JOIN hr.employees e ON e.empid = o.empid
JOIN sales.shippers s ON s.shipperid = o.shipperid
JOIN sales.orderdetails od ON od.orderid = o.orderid
GROUP BY o.orderid, c.companyname, c.contactname, c.country, e.firstname, e.lastname,
         e.title, s.companyname, o.shipname, o.orderdate, o.shippeddate, o.freight
ORDER BY o.orderdate DESC, o.orderid DESC`,
	},
	ReportCustomerSalesByYear: {
		Name:  ReportCustomerSalesByYear,
		Label: "Customer",
		SQL: `WITH ` + orderValuesCTE + `
SELECT c.companyname AS customer_name,
       COALESCE(SUM(v.val) FILTER (WHERE EXTRACT(YEAR FROM v.orderdate) = 2021), 0)::float8 AS sales_2021,
       COALESCE(SUM(v.val) FILTER (WHERE EXTRACT(YEAR FROM v.orderdate) = 2022), 0)::float8 AS sales_2022,
       COALESCE(SUM(v.val) FILTER (WHERE EXTRACT(YEAR FROM v.orderdate) = 2023), 0)::float8 AS sales_2023
FROM sales.customers c
JOIN order_values v ON v.custid = c.custid
GROUP BY c.companyname
ORDER BY c.companyname`,
	},
	ReportTopPerformers: {
		Name:  ReportTopPerformers,
		Label: "Top Performers",
		SQL: `WITH ` + orderValuesCTE + `,
employee_sales AS (
    SELECT EXTRACT(YEAR FROM v.orderdate)::int AS order_year,
           e.firstname || ' ' || e.lastname AS employee_name,
           SUM(v.val)::float8 AS total_sales
    FROM order_values v
    JOIN hr.employees e ON e.empid = v.empid
    GROUP BY 1, 2
),
ranked AS (
    SELECT order_year,
           employee_name,
           total_sales,
           RANK() OVER (PARTITION BY order_year ORDER BY total_sales DESC) AS sales_rank
    FROM employee_sales
)
SELECT order_year, employee_name, total_sales, sales_rank
FROM ranked
WHERE sales_rank <= 3
ORDER BY order_year DESC, sales_rank`,
	},
	ReportSalesChoropleth: {
		Name:  ReportSalesChoropleth,
		Label: "Sales Choropleth",
		SQL: `WITH ` + orderValuesCTE + `
SELECT c.country AS country,
       COALESCE(SUM(v.val) FILTER (WHERE EXTRACT(YEAR FROM v.orderdate) = 2023), 0)::float8 AS sales_2023
FROM sales.customers c
JOIN order_values v ON v.custid = c.custid
GROUP BY c.country
ORDER BY sales_2023 DESC`,
	},
	ReportYearBuiltTotal: {
		Name:  ReportYearBuiltTotal,
		Label: "Year Built",
		SQL: `SELECT COALESCE(yearbuilt::text, '') AS year_built,
       COUNT(*)::int AS total_houses
FROM nashousing
GROUP BY yearbuilt
ORDER BY yearbuilt DESC NULLS LAST`,
	},
	ReportSalesByBedroom: {
		Name:  ReportSalesByBedroom,
		Label: "Sales By Bedroom",
		SQL: `SELECT COALESCE(yearbuilt::text, '') AS year_built,
       to_char(saledate, 'YYYY') AS sales_date,
       AVG(saleprice)::float8 AS avg_sale_price,
       bedrooms::smallint AS bedrooms
FROM nashousing
WHERE bedrooms IS NOT NULL AND saledate IS NOT NULL
GROUP BY 1, 2, 4
ORDER BY 1 DESC, 2, 4`,
	},
	ReportAvgPricePerAcreage: {
		Name:  ReportAvgPricePerAcreage,
		Label: "Average Price Per Acreage",
		SQL: `SELECT acreage::float8 AS acreage,
       AVG(saleprice)::float8 AS avg_price
FROM nashousing
WHERE acreage IS NOT NULL
GROUP BY acreage
ORDER BY acreage`,
	},
	ReportCurrencies: {
		Name:  ReportCurrencies,
		Label: "Currency",
		SQL: `SELECT code, numeric_id, country_name, unit_basis, mid_rate, rate_date
FROM ` + currencyTable + `
ORDER BY code`,
	},
	ReportCorrelationTable: {
		Name:  ReportCorrelationTable,
		Label: "Correlation",
		SQL: `WITH ` + correlationCTE + `
SELECT company_name, max_date_diff_for_shipping, sales_2022, sales_2023, sales_diff, true_false
FROM correlation
ORDER BY sales_diff DESC`,
	},
	ReportCorrelationStatsAbove: {
		Name:  ReportCorrelationStatsAbove,
		Label: "Correlation Stats",
		SQL:   `WITH ` + correlationCTE + "\n" + correlationStatsSelect + "\nWHERE sales_diff > 0",
	},
	ReportCorrelationStatsBelow: {
		Name:  ReportCorrelationStatsBelow,
		Label: "Correlation Stats",
		SQL:   `WITH ` + correlationCTE + "\n" + correlationStatsSelect + "\nWHERE sales_diff < 0",
	},
}

// LookupReport returns the catalogued report with the given name.
func LookupReport(name string) (Report, bool) {
	report, ok := reportCatalog[name]
	return report, ok
}

// ReportNames lists every catalogued report.
func ReportNames() []string {
	return slices.Sorted(maps.Keys(reportCatalog))
}
