package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health *Handler
	Copies *CopyHandler
	Loans  *LoanHandler
	Borrow *BorrowHandler
	Fines  *FineHandler
}

// Register mounts the API. mutating wraps every non-GET route.
func Register(e *echo.Echo, h Handlers, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	e.POST("/book-copies", h.Copies.Register, mutating...)
	e.GET("/book-copies/:copy_id", h.Copies.Get)
	e.POST("/book-copies/:copy_id/damaged", h.Copies.MarkDamaged, mutating...)
	e.POST("/book-copies/:copy_id/reset", h.Copies.Reset, mutating...)

	e.POST("/loans", h.Loans.CreateLoan, mutating...)
	e.GET("/loans/:loan_id", h.Loans.GetLoan)
	e.GET("/users/:user_id/loans", h.Loans.ListByUser)
	e.POST("/loans/:loan_id/approve", h.Loans.ApproveLoan, mutating...)
	e.POST("/loans/:loan_id/reject", h.Loans.RejectLoan, mutating...)
	e.POST("/loan-details/:detail_id/approve", h.Loans.ApproveDetail, mutating...)
	e.POST("/loan-details/:detail_id/reject", h.Loans.RejectDetail, mutating...)

	e.POST("/loans/:loan_id/mark-borrowed", h.Borrow.MarkBorrowed, mutating...)
	e.GET("/borrows/:borrow_id", h.Borrow.Get)
	e.GET("/borrows/by-code/:code", h.Borrow.GetByCode)
	e.POST("/borrows/:borrow_id/returns", h.Borrow.RequestReturn, mutating...)
	e.POST("/borrows/:borrow_id/lost", h.Borrow.ReportLost, mutating...)
	e.GET("/borrows/:borrow_id/fines", h.Borrow.ListFines)

	e.POST("/fines", h.Fines.Assess, mutating...)
	e.GET("/fines/:fine_id", h.Fines.Get)
	e.POST("/fines/:fine_id/pay", h.Fines.Pay, mutating...)
	e.POST("/fines/:fine_id/waive", h.Fines.Waive, mutating...)
	e.DELETE("/fines/:fine_id", h.Fines.Delete, mutating...)

	e.POST("/fine-types", h.Fines.CreateType, mutating...)
	e.GET("/fine-types", h.Fines.ListTypes)
	e.GET("/fine-types/:fine_type_id", h.Fines.GetType)
	e.PUT("/fine-types/:fine_type_id", h.Fines.UpdateType, mutating...)
	e.DELETE("/fine-types/:fine_type_id", h.Fines.DeleteType, mutating...)
}
