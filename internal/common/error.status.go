package common

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	StatusOK        = 200 // Thành công
	StatusCreated   = 201 // Tạo mới thành công
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	StatusBadRequest      = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized    = 401 // Chưa xác thực
	StatusForbidden       = 403 // Không có quyền truy cập
	StatusNotFound        = 404 // Không tìm thấy tài nguyên
	StatusConflict        = 409 // Xung đột dữ liệu
	StatusTooManyRequests = 429 // Quá nhiều yêu cầu

	StatusInternalServerError = 500 // Lỗi server
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
	StatusGatewayTimeout      = 504 // Timeout
)

// Response Messages (hiển thị trực tiếp cho người dùng QCED)
const (
	MsgSuccess = "Operation completed successfully"
	MsgCreated = "Created successfully"
	MsgUpdated = "Updated successfully"
	MsgDeleted = "Deleted successfully"

	MsgBadRequest      = "Invalid request"
	MsgUnauthorized    = "Please sign in"
	MsgForbidden       = "You do not have permission to perform this action"
	MsgNotFound        = "Resource not found"
	MsgConflict        = "Resource already exists"
	MsgTooManyRequests = "Too many requests, please try again later"
	MsgInternalError   = "Internal server error"

	MsgValidationError = "Validation failed"
	MsgInvalidFormat   = "Invalid data format"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: AUTH_001)
	Category    string // Phân loại lỗi (ví dụ: Authentication)
	SubCategory string // Phân loại con (ví dụ: Token)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{Code: "SYS_001", Category: "System", SubCategory: "Internal", Description: "Lỗi hệ thống nội bộ"}

	// Authentication Errors (AUTH_xxx)
	ErrCodeAuthToken       = ErrorCode{Code: "AUTH_001", Category: "Authentication", SubCategory: "Token", Description: "Thiếu token xác thực"}
	ErrCodeAuthInvalid     = ErrorCode{Code: "AUTH_002", Category: "Authentication", SubCategory: "Token", Description: "Token không hợp lệ hoặc đã hết hạn"}
	ErrCodeAuthRole        = ErrorCode{Code: "AUTH_003", Category: "Authentication", SubCategory: "Role", Description: "Vai trò không đủ quyền"}
	ErrCodeAuthCredentials = ErrorCode{Code: "AUTH_004", Category: "Authentication", SubCategory: "Credentials", Description: "Sai thông tin đăng nhập"}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput  = ErrorCode{Code: "VAL_001", Category: "Validation", SubCategory: "Input", Description: "Lỗi dữ liệu đầu vào"}
	ErrCodeValidationFormat = ErrorCode{Code: "VAL_002", Category: "Validation", SubCategory: "Format", Description: "Lỗi định dạng dữ liệu"}

	// Database Errors (DB_xxx)
	ErrCodeDatabaseConnection = ErrorCode{Code: "DB_001", Category: "Database", SubCategory: "Connection", Description: "Lỗi kết nối cơ sở dữ liệu"}
	ErrCodeDatabaseQuery      = ErrorCode{Code: "DB_002", Category: "Database", SubCategory: "Query", Description: "Lỗi truy vấn dữ liệu"}
	ErrCodeDatabaseTimeout    = ErrorCode{Code: "DB_003", Category: "Database", SubCategory: "Timeout", Description: "Truy vấn quá thời gian"}

	// Business Logic Errors (BIZ_xxx)
	ErrCodeBusinessState     = ErrorCode{Code: "BIZ_001", Category: "Business", SubCategory: "State", Description: "Lỗi trạng thái nghiệp vụ"}
	ErrCodeBusinessOperation = ErrorCode{Code: "BIZ_002", Category: "Business", SubCategory: "Operation", Description: "Lỗi thao tác nghiệp vụ"}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi (field errors, ...)
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is so khớp theo mã lỗi và message, cho phép errors.Is(err, common.ErrNotFound)
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code.Code == t.Code.Code && e.Message == t.Message
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors
var (
	// Authentication Errors
	ErrTokenMissing       = NewError(ErrCodeAuthToken, "Authentication token is missing", StatusUnauthorized, nil)
	ErrTokenInvalid       = NewError(ErrCodeAuthInvalid, "Invalid or expired token", StatusUnauthorized, nil)
	ErrForbidden          = NewError(ErrCodeAuthRole, MsgForbidden, StatusForbidden, nil)
	ErrInvalidCredentials = NewError(ErrCodeAuthCredentials, "Invalid email or password", StatusUnauthorized, nil)
	ErrAccountDisabled    = NewError(ErrCodeAuthCredentials, "This account has been deactivated", StatusUnauthorized, nil)

	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Invalid input data", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, MsgInvalidFormat, StatusBadRequest, nil)
	ErrInvalidID     = NewError(ErrCodeValidationFormat, "Invalid ID format", StatusBadRequest, nil)

	// Database Errors
	ErrNotFound   = NewError(ErrCodeDatabaseQuery, "Resource not found", StatusNotFound, nil)
	ErrDuplicate  = NewError(ErrCodeDatabaseQuery, "A record with the same unique value already exists", StatusConflict, nil)
	ErrConnection = NewError(ErrCodeDatabaseConnection, "Database connection error", StatusServiceUnavailable, nil)
	ErrTimeout    = NewError(ErrCodeDatabaseTimeout, "Database operation timed out", StatusGatewayTimeout, nil)

	// Business Logic Errors
	ErrInvalidState     = NewError(ErrCodeBusinessState, "Invalid state for this operation", StatusConflict, nil)
	ErrInvalidOperation = NewError(ErrCodeBusinessOperation, "Invalid operation", StatusBadRequest, nil)
)

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Lỗi đã là *Error thì giữ nguyên
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	// Duplicate key phải kiểm tra trước CommandError (mã 11000)
	if mongo.IsDuplicateKeyError(err) {
		return NewError(ErrCodeDatabaseQuery, ErrDuplicate.Error(), StatusConflict, duplicateField(err))
	}
	if mongo.IsTimeout(err) {
		return ErrTimeout
	}
	if mongo.IsNetworkError(err) {
		return ErrConnection
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return NewError(ErrCodeDatabaseQuery, "Database query error", StatusInternalServerError, cmdErr.Name)
	}

	// Nếu không tìm thấy lỗi cụ thể, trả về lỗi hệ thống chung
	return NewError(ErrCodeDatabaseQuery, "Database error", StatusInternalServerError, nil)
}

// duplicateField lấy tên index bị trùng từ message "E11000 ... index: email_1 dup key"
func duplicateField(err error) map[string]string {
	msg := err.Error()
	idx := strings.Index(msg, "index: ")
	if idx < 0 {
		return nil
	}
	rest := msg[idx+len("index: "):]
	if end := strings.IndexAny(rest, " "); end > 0 {
		rest = rest[:end]
	}
	field := rest
	if cut := strings.LastIndex(rest, "_"); cut > 0 {
		field = rest[:cut]
	}
	return map[string]string{"index": rest, "field": field}
}

// StatusOf trả về HTTP status tương ứng với một error bất kỳ
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return StatusInternalServerError
}
