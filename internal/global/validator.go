package global

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	extensionRegex = regexp.MustCompile(`^[0-9]{2,6}$`)
	hhmmRegex      = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Roles hợp lệ trong hệ thống
var Roles = []string{"admin", "hr", "manager", "employee"}

// DepartmentLevels theo thứ tự từ cao xuống thấp
var DepartmentLevels = []string{"board", "administration", "department", "sub_department", "team"}

// FieldError là lỗi của một field, trả về trong "errors" của response
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// Dùng tên json trong thông báo lỗi
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("strong_password", validateStrongPassword)
	_ = Validate.RegisterValidation("extension", validateExtension)
	_ = Validate.RegisterValidation("hhmm", validateHHMM)
	_ = Validate.RegisterValidation("object_id", validateObjectID)
	_ = Validate.RegisterValidation("role", validateRole)
	_ = Validate.RegisterValidation("dept_level", validateDepartmentLevel)
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"onmouseover=",
		"eval(",
		"document.cookie",
		"document.write",
		"<iframe",
		"<object",
		"<embed",
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateStrongPassword: tối thiểu 8 ký tự, có cả chữ và số
func validateStrongPassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) < 8 {
		return false
	}
	var hasLetter, hasNumber bool
	for _, char := range value {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}
	return hasLetter && hasNumber
}

// validateExtension: số máy lẻ 2-6 chữ số
func validateExtension(fl validator.FieldLevel) bool {
	return extensionRegex.MatchString(fl.Field().String())
}

// validateHHMM: giờ dạng 24h "HH:MM"
func validateHHMM(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

// validateObjectID: chuỗi hex 24 ký tự của ObjectID
func validateObjectID(fl validator.FieldLevel) bool {
	return primitive.IsValidObjectID(fl.Field().String())
}

func validateRole(fl validator.FieldLevel) bool {
	return IsValidRole(fl.Field().String())
}

func validateDepartmentLevel(fl validator.FieldLevel) bool {
	return DepartmentLevelRank(fl.Field().String()) >= 0
}

// IsValidRole kiểm tra role có thuộc danh sách Roles
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// DepartmentLevelRank trả về thứ hạng của level (board = 0), -1 nếu không hợp lệ
func DepartmentLevelRank(level string) int {
	for i, l := range DepartmentLevels {
		if l == level {
			return i
		}
	}
	return -1
}

// FormatValidationErrors chuyển lỗi của validator thành danh sách FieldError
func FormatValidationErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	result := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		result = append(result, FieldError{
			Field:   fieldPath(fe),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return result
}

// fieldPath bỏ tên struct gốc: "CreateEmployeeInput.email" -> "email"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_without", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "no_xss":
		return fmt.Sprintf("%s contains forbidden content", field)
	case "strong_password":
		return fmt.Sprintf("%s must be at least 8 characters and contain letters and digits", field)
	case "extension":
		return fmt.Sprintf("%s must be 2 to 6 digits", field)
	case "hhmm":
		return fmt.Sprintf("%s must be a time in HH:MM format", field)
	case "object_id":
		return fmt.Sprintf("%s must be a valid id", field)
	case "role":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.Join(Roles, " "))
	case "dept_level":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.Join(DepartmentLevels, " "))
	}
	return fmt.Sprintf("%s is invalid", field)
}
