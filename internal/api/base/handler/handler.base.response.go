package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"qced_directory/internal/common"
	"qced_directory/internal/global"
	"qced_directory/internal/logger"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// ErrorBody dựng envelope lỗi {success:false, code, message, errors, status}
func ErrorBody(err error) (int, fiber.Map) {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		return customErr.StatusCode, fiber.Map{
			"success": false,
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"errors":  errorDetails(customErr.Details),
			"status":  "error",
		}
	}
	return common.StatusInternalServerError, fiber.Map{
		"success": false,
		"code":    common.ErrCodeInternalServer.Code,
		"message": common.MsgInternalError,
		"errors":  []interface{}{},
		"status":  "error",
	}
}

// errorDetails chuẩn hóa Details: lỗi validator thành danh sách field, nil thành mảng rỗng
func errorDetails(details interface{}) interface{} {
	switch d := details.(type) {
	case nil:
		return []interface{}{}
	case error:
		if fieldErrs := global.FormatValidationErrors(d); fieldErrs != nil {
			return fieldErrs
		}
		return []interface{}{}
	}
	return details
}

// HandleErrorResponse ghi envelope lỗi. Lỗi 5xx được log kèm request context.
func HandleErrorResponse(c fiber.Ctx, err error) error {
	status, body := ErrorBody(err)
	if status >= common.StatusInternalServerError {
		logger.WithRequest(c).WithError(err).Error("Request failed")
	}
	return JSONResponse(c, status, body)
}

// HandleResponse chuẩn hóa response: lỗi thì envelope lỗi, còn lại 200 với data
func HandleResponse(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		return HandleErrorResponse(c, err)
	}
	return JSONResponse(c, common.StatusOK, fiber.Map{
		"success": true,
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}

// HandleCreated trả về 201 cho thao tác tạo mới
func HandleCreated(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		return HandleErrorResponse(c, err)
	}
	return JSONResponse(c, common.StatusCreated, fiber.Map{
		"success": true,
		"code":    common.StatusCreated,
		"message": common.MsgCreated,
		"data":    data,
		"status":  "success",
	})
}

// SafeHandler bọc handler với recover, panic được trả về như lỗi 500
func SafeHandler(c fiber.Ctx, handler func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequest(c).WithField("panic", r).WithField("stack", string(debug.Stack())).Error("Handler panic")
			err = HandleErrorResponse(c, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Unexpected error: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}
