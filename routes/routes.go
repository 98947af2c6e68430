package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/ayesh156/card-marking-system/config"
	"github.com/ayesh156/card-marking-system/handlers"
	"github.com/ayesh156/card-marking-system/middlewares"
)

// Register wires all HTTP routes.
func Register(e *echo.Echo, cfg *config.Config) {
	e.Validator = handlers.NewValidator()

	auth := handlers.NewAuthHandler(cfg)
	std := handlers.NewStudentHandler()
	chd := handlers.NewChildHandler()
	crp := handlers.NewChildReportHandler()
	rep := handlers.NewReportHandler(cfg)
	dash := handlers.NewDashboardHandler()
	rem := handlers.NewReminderHandler(cfg)
	msg := handlers.NewMessageHandler(cfg)
	cls := handlers.NewClassHandler()
	usr := handlers.NewUserHandler(cfg)

	// ===== Auth =====
	e.POST("/login", auth.Login)

	// ===== Students =====
	e.GET("/students", std.List)
	e.GET("/students/search", std.Search)
	e.GET("/students/:id", std.Get)
	e.POST("/students", std.Create)
	e.PUT("/students/:id", std.Update)
	e.PUT("/students/:id/status", std.Disable)
	e.PUT("/status/sno/:sno", std.SetStatusBySno)

	// ===== Reports (tuition-based, canonical) =====
	e.GET("/reports/:grade", rep.ByGrade)
	e.POST("/reports", rep.WeekStatus)
	e.POST("/paid", rep.PaidStatus)
	e.POST("/fetch-student-data", rep.FetchStudentData)
	e.GET("/history", rep.History)

	// ===== Dashboard =====
	e.GET("/dashboard-stats", dash.Stats)
	e.GET("/monthly-attendance-stats", dash.MonthlyAttendance)
	e.GET("/recent-payments", dash.RecentPayments)
	e.GET("/classes-count", dash.ClassesCount)

	// ===== Classes / reference data =====
	e.POST("/days", cls.UpsertDay)
	e.GET("/day", cls.GetDay)
	e.GET("/years", cls.Years)
	e.GET("/months", cls.Months)

	// ===== Legacy child flow (old marking UI) =====
	e.GET("/children", chd.List)
	e.POST("/children", chd.Create)
	e.PUT("/children/:id", chd.Update)
	e.POST("/save_report", crp.Save)
	e.POST("/update_paid_status", crp.UpdatePaid)
	e.GET("/child_reports/:childId", crp.ForChild)
	e.GET("/child-reports", crp.All)

	// ===== Protected: operator settings & messaging =====
	authMW := middlewares.RequireAuth(cfg.JWTSecret)

	g := e.Group("", authMW)
	g.GET("/users/:email", usr.Show)
	g.PUT("/users/:email", usr.Update)
	g.GET("/users/:email/mode", usr.GetMode)
	g.PUT("/users/:email/mode", usr.UpdateMode)

	g.POST("/send-whatsapp-messages", msg.Broadcast)
	g.POST("/send-message-to-tuition", msg.ToTuition)
	g.GET("/send-payment-reminders", rem.SendPaymentReminders)
}
