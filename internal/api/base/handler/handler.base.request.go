// Package basehdl cung cấp các tiện ích chung cho handler: parse/validate request,
// phân trang, lấy thông tin user hiện tại và chuẩn hóa response.
package basehdl

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basemodels "qced_directory/internal/api/base/models"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
	"qced_directory/internal/utility"
)

// MaxPageLimit giới hạn số bản ghi mỗi trang
const MaxPageLimit = 200

// ParseRequestBody parse body JSON vào input (json.Decoder với UseNumber) rồi validate.
// Lỗi validate được trả về với Details là lỗi validator để response liệt kê từng field.
func ParseRequestBody(c fiber.Ctx, input interface{}) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgInvalidFormat, common.StatusBadRequest, nil)
	}
	return ValidateInput(input)
}

// ValidateInput validate struct với global.Validate
func ValidateInput(input interface{}) error {
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return nil
}

// ParsePagination đọc page/limit từ query string
func ParsePagination(c fiber.Ctx) (int64, int64) {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	return basemodels.NormalizePaging(page, limit, MaxPageLimit)
}

// ParamObjectID đọc ObjectID từ URI params
func ParamObjectID(c fiber.Ctx, name string) (primitive.ObjectID, error) {
	return utility.ParseObjectID(c.Params(name))
}

// QueryBool đọc query dạng bool, trả về nil nếu không có hoặc không hợp lệ
func QueryBool(c fiber.Ctx, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// QueryInt64 đọc query dạng số, trả về def nếu không có hoặc không hợp lệ
func QueryInt64(c fiber.Ctx, name string, def int64) int64 {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}

// CurrentUserID lấy ObjectID của user đã xác thực (middleware gán Locals "user_id")
func CurrentUserID(c fiber.Ctx) primitive.ObjectID {
	if id, ok := c.Locals("user_id").(string); ok {
		return utility.String2ObjectID(id)
	}
	return primitive.NilObjectID
}

// CurrentRole lấy role của user đã xác thực
func CurrentRole(c fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}
