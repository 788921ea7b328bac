package auditdto

// AuditFilterInput là các tham số lọc nhật ký (query string)
type AuditFilterInput struct {
	User       string `query:"user" json:"user" validate:"omitempty,object_id"`
	Action     string `query:"action" json:"action" validate:"omitempty,oneof=create update delete view export login logout publish unpublish bulk_create bulk_update bulk_delete password_change generate_qr report"`
	TargetType string `query:"targetType" json:"targetType" validate:"omitempty,max=50"`
	From       int64  `query:"from" json:"from" validate:"omitempty,min=0"`
	To         int64  `query:"to" json:"to" validate:"omitempty,min=0,gtefield=From"`
}
