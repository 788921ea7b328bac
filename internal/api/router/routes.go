// Package router gom route của các domain dưới prefix /api.
package router

import (
	"github.com/gofiber/fiber/v3"

	auditrouter "qced_directory/internal/api/audit/router"
	authrouter "qced_directory/internal/api/auth/router"
	departmentrouter "qced_directory/internal/api/department/router"
	employeerouter "qced_directory/internal/api/employee/router"
	messagerouter "qced_directory/internal/api/message/router"
	qrrouter "qced_directory/internal/api/qr/router"
	reportrouter "qced_directory/internal/api/report/router"
	schedulerouter "qced_directory/internal/api/schedule/router"
	systemrouter "qced_directory/internal/api/system/router"
)

// APIPrefix là prefix chung của REST API
const APIPrefix = "/api"

// RegisterFunc đăng ký route của một domain vào group /api
type RegisterFunc func(api fiber.Router) error

// DefaultRegistrars là danh sách domain của ứng dụng, theo thứ tự đăng ký
func DefaultRegistrars() []RegisterFunc {
	return []RegisterFunc{
		systemrouter.Register,
		authrouter.Register,
		employeerouter.Register,
		departmentrouter.Register,
		schedulerouter.Register,
		messagerouter.Register,
		auditrouter.Register,
		qrrouter.Register,
		reportrouter.Register,
	}
}

// SetupRoutes tạo group /api và gọi lần lượt các RegisterFunc. Không truyền regs thì dùng DefaultRegistrars.
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	if len(regs) == 0 {
		regs = DefaultRegistrars()
	}
	api := app.Group(APIPrefix)
	for _, reg := range regs {
		if err := reg(api); err != nil {
			return err
		}
	}
	return nil
}
