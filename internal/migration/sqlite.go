package migration

import (
	attendancedomain "github.com/sitekhata/sitekhata/internal/attendance/domain"
	invoicedomain "github.com/sitekhata/sitekhata/internal/invoice/domain"
	khatabookdomain "github.com/sitekhata/sitekhata/internal/khatabook/domain"
	persondomain "github.com/sitekhata/sitekhata/internal/person/domain"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	wageratedomain "github.com/sitekhata/sitekhata/internal/wagerate/domain"
	"gorm.io/gorm"
)

// uniqueActiveIndexes enforce at-most-one active row per key while soft
// deleted rows keep their history. Declared as raw SQL because AutoMigrate
// cannot express partial indexes.
var uniqueActiveIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_projects_code
	 ON projects (code) WHERE NOT is_deleted`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_wage_rates_project_effective
	 ON wage_rates (project_id, effective_date) WHERE NOT is_deleted`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_wage_calculations_attendance
	 ON wage_calculations (attendance_id) WHERE NOT is_deleted`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_project_attendance_project_date
	 ON project_attendance (project_id, attendance_date) WHERE NOT is_deleted`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_invoices_number
	 ON invoices (invoice_number) WHERE NOT is_deleted`,
}

// AutoMigrate builds the schema with gorm for databases the SQL migrations do
// not target, sqlite in particular. Tests use it for in-memory databases.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&projectdomain.Project{},
		&wageratedomain.WageRate{},
		&attendancedomain.Attendance{},
		&attendancedomain.WageCalculation{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoicePayment{},
		&persondomain.Person{},
		&khatabookdomain.Entry{},
	); err != nil {
		return err
	}

	for _, stmt := range uniqueActiveIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
