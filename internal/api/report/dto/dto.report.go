package reportdto

// ReportQuery là tham số query của GET /reports/:type
type ReportQuery struct {
	Format     string `query:"format" json:"format" validate:"omitempty,oneof=json xlsx"`
	Department string `query:"department" json:"department" validate:"omitempty,object_id"`
	WeekStart  string `query:"weekStart" json:"weekStart" validate:"omitempty,datetime=2006-01-02"`
	From       int64  `query:"from" json:"from" validate:"omitempty,min=0"`
	To         int64  `query:"to" json:"to" validate:"omitempty,min=0,gtefield=From"`
}
