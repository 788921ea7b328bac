// Package models - model nhật ký thao tác (AuditLog).
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các action được ghi nhận
const (
	ActionCreate         = "create"
	ActionUpdate         = "update"
	ActionDelete         = "delete"
	ActionView           = "view"
	ActionExport         = "export"
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionPublish        = "publish"
	ActionUnpublish      = "unpublish"
	ActionBulkCreate     = "bulk_create"
	ActionBulkUpdate     = "bulk_update"
	ActionBulkDelete     = "bulk_delete"
	ActionPasswordChange = "password_change"
	ActionGenerateQR     = "generate_qr"
	ActionReport         = "report"
)

// Actions là danh sách action hợp lệ (dùng cho validate filter)
var Actions = []string{
	ActionCreate, ActionUpdate, ActionDelete, ActionView, ActionExport, ActionLogin, ActionLogout,
	ActionPublish, ActionUnpublish, ActionBulkCreate, ActionBulkUpdate, ActionBulkDelete,
	ActionPasswordChange, ActionGenerateQR, ActionReport,
}

// Target là đối tượng bị tác động
type Target struct {
	Type string `json:"type" bson:"type"`
	ID   string `json:"id,omitempty" bson:"id,omitempty"`
}

// AuditLog định nghĩa một dòng nhật ký
type AuditLog struct {
	ID        primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	User      *primitive.ObjectID    `json:"user,omitempty" bson:"user,omitempty" index:"single"`
	UserName  string                 `json:"userName,omitempty" bson:"userName,omitempty"`
	Action    string                 `json:"action" bson:"action" index:"single;compound:action_created"`
	Target    Target                 `json:"target" bson:"target"`
	Details   map[string]interface{} `json:"details,omitempty" bson:"details,omitempty"`
	IP        string                 `json:"ip,omitempty" bson:"ip,omitempty"`
	UserAgent string                 `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	CreatedAt int64                  `json:"createdAt" bson:"createdAt" index:"single,order:-1;compound:action_created,order:-1"`
	UpdatedAt int64                  `json:"-" bson:"updatedAt,omitempty"`
	ExpireAt  time.Time              `json:"-" bson:"expireAt" index:"ttl:0"`
}
