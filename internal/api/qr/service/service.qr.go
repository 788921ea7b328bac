// Package qrsvc - sinh mã QR cho nhân viên (vCard), phòng ban và lịch làm việc.
package qrsvc

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "qced_directory/internal/api/base/service"
	deptmodels "qced_directory/internal/api/department/models"
	empmodels "qced_directory/internal/api/employee/models"
	schedulemodels "qced_directory/internal/api/schedule/models"
	schedulesvc "qced_directory/internal/api/schedule/service"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
)

// Các loại QR
const (
	TypeEmployee   = "employee"
	TypeDepartment = "department"
	TypeSchedule   = "schedule"
)

// Kích thước ảnh (px)
const (
	DefaultSize = 256
	MinSize     = 128
	MaxSize     = 1024
)

// Organization là tên tổ chức ghi trong vCard
const Organization = "QCED"

// Result là kết quả dạng JSON
type Result struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Payload string `json:"payload"`
	DataURL string `json:"dataUrl"`
	Size    int    `json:"size"`
}

// QRService sinh mã QR
type QRService struct {
	employeeService   *basesvc.BaseServiceMongoImpl[empmodels.Employee]
	departmentService *basesvc.BaseServiceMongoImpl[deptmodels.Department]
	scheduleService   *basesvc.BaseServiceMongoImpl[schedulemodels.Schedule]
}

// NewQRService tạo mới QRService
func NewQRService() (*QRService, error) {
	employees, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Employees)
	if !exist {
		return nil, fmt.Errorf("failed to get employees collection: %v", common.ErrNotFound)
	}
	departments, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Departments)
	if !exist {
		return nil, fmt.Errorf("failed to get departments collection: %v", common.ErrNotFound)
	}
	schedules, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Schedules)
	if !exist {
		return nil, fmt.Errorf("failed to get schedules collection: %v", common.ErrNotFound)
	}
	return &QRService{
		employeeService:   basesvc.NewBaseServiceMongo[empmodels.Employee](employees),
		departmentService: basesvc.NewBaseServiceMongo[deptmodels.Department](departments),
		scheduleService:   basesvc.NewBaseServiceMongo[schedulemodels.Schedule](schedules),
	}, nil
}

// ClampSize đưa kích thước về khoảng cho phép
func ClampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

// DirectoryURL là link tới trang chi tiết trên frontend
func DirectoryURL(kind, id string) string {
	base := ""
	if cfg := global.MongoDB_ServerConfig; cfg != nil {
		base = strings.TrimSuffix(cfg.FrontendURL, "/")
	}
	return fmt.Sprintf("%s/%ss/%s", base, kind, id)
}

var vcardEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// BuildVCard dựng vCard 3.0 cho nhân viên
func BuildVCard(emp empmodels.Employee, departmentName, url string) string {
	esc := vcardEscaper.Replace
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		fmt.Sprintf("N:%s;%s;;;", esc(emp.LastName), esc(emp.FirstName)),
		"FN:" + esc(emp.Name),
	}
	org := esc(Organization)
	if departmentName != "" {
		org += ";" + esc(departmentName)
	}
	lines = append(lines, "ORG:"+org)
	if emp.Position != "" {
		lines = append(lines, "TITLE:"+esc(emp.Position))
	}
	if emp.Email != "" {
		lines = append(lines, "EMAIL;TYPE=INTERNET,WORK:"+esc(emp.Email))
	}
	if emp.Phone != "" {
		lines = append(lines, "TEL;TYPE=CELL:"+esc(emp.Phone))
	}
	if emp.Extension != "" {
		lines = append(lines, "TEL;TYPE=WORK,VOICE:ext. "+esc(emp.Extension))
	}
	if url != "" {
		lines = append(lines, "URL:"+url)
	}
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\r\n")
}

// Payload trả về nội dung mã hóa vào QR. content=url với nhân viên để lấy link thay vì vCard.
func (s *QRService) Payload(ctx context.Context, kind string, id primitive.ObjectID, content string, actor empmodels.Employee) (string, error) {
	switch kind {
	case TypeEmployee:
		emp, err := s.employeeService.FindOneById(ctx, id)
		if err != nil {
			return "", err
		}
		if !emp.IsActive && !actor.IsStaff() {
			return "", common.ErrNotFound
		}
		url := DirectoryURL(TypeEmployee, id.Hex())
		if content == "url" {
			return url, nil
		}
		departmentName := ""
		if emp.Department != nil {
			if dept, err := s.departmentService.FindOneById(ctx, *emp.Department); err == nil {
				departmentName = dept.Name
			}
		}
		return BuildVCard(emp, departmentName, url), nil

	case TypeDepartment:
		if _, err := s.departmentService.FindOneById(ctx, id); err != nil {
			return "", err
		}
		return DirectoryURL(TypeDepartment, id.Hex()), nil

	case TypeSchedule:
		schedule, err := s.scheduleService.FindOneById(ctx, id)
		if err != nil {
			return "", err
		}
		if !schedulesvc.CanView(actor, &schedule) {
			return "", common.ErrForbidden
		}
		return DirectoryURL(TypeSchedule, id.Hex()), nil
	}
	return "", common.NewError(common.ErrCodeValidationInput, "type must be employee, department or schedule", common.StatusBadRequest, nil)
}

// EncodePNG mã hóa payload thành ảnh PNG
func EncodePNG(payload string, size int) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, ClampSize(size))
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Failed to generate QR code", common.StatusInternalServerError, nil)
	}
	return png, nil
}

// NewResult dựng kết quả JSON với data URL
func NewResult(kind, id, payload string, png []byte, size int) Result {
	return Result{
		Type:    kind,
		ID:      id,
		Payload: payload,
		DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		Size:    ClampSize(size),
	}
}
