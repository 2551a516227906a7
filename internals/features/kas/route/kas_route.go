package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	kasController "eschoolku_backend/internals/features/kas/controller"
)

// KasUserRoutes: buku kas per eschool (income/expense, settle, export).
func KasUserRoutes(app fiber.Router, db *gorm.DB) {
	ctrl := kasController.NewKasController(db)

	app.Post("/kas/income", ctrl.RecordIncome)
	app.Post("/kas/expense", ctrl.RecordExpense)
	app.Put("/kas/records/:id", ctrl.UpdateRecord)
	app.Delete("/kas/records/:id", ctrl.DeleteRecord)
	app.Put("/kas/payments/:id/mark-paid", ctrl.MarkPaymentPaid)
	app.Put("/kas/payments/:id/mark-unpaid", ctrl.MarkPaymentUnpaid)

	app.Get("/kas/summary", ctrl.GetSummary)
	app.Get("/kas/records", ctrl.ListRecords)
	app.Get("/kas/export/csv", ctrl.ExportCSV)
}
