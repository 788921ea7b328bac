package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	deptsvc "qced_directory/internal/api/department/service"
	employeesvc "qced_directory/internal/api/employee/service"
	"qced_directory/internal/global"
	"qced_directory/internal/logger"
)

// RootDepartmentName là tên phòng ban gốc tạo khi khởi động lần đầu
const RootDepartmentName = "Board"

func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("🔄 [INIT] Starting InitDefaultData...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	departmentService, err := deptsvc.NewDepartmentService()
	if err != nil {
		log.Fatalf("Failed to initialize department service: %v", err)
	}
	employeeService, err := employeesvc.NewEmployeeService()
	if err != nil {
		log.Fatalf("Failed to initialize employee service: %v", err)
	}

	// 1. Phòng ban gốc (PHẢI LÀM TRƯỚC để gán cho admin)
	root, created, err := departmentService.EnsureRoot(ctx, RootDepartmentName)
	if err != nil {
		log.Fatalf("Failed to initialize root department: %v", err)
	}
	if created {
		log.Infof("✅ [INIT] Step 1: Root department %q created", root.Name)
	} else {
		log.Info("✅ [INIT] Step 1: Root department already exists")
	}

	// 2. Admin đầu tiên, chỉ khi chưa có admin nào
	cfg := global.MongoDB_ServerConfig
	password := cfg.AdminPassword
	generated := password == ""
	if generated {
		password = "Qc" + uuid.NewString()[:12] + "!9"
	}
	rootID := root.ID
	created, err = employeeService.EnsureAdmin(ctx, cfg.AdminEmail, password, &rootID)
	if err != nil {
		log.Fatalf("Failed to initialize admin account: %v", err)
	}
	switch {
	case created && generated:
		log.Warnf("✅ [INIT] Step 2: Admin %s created with generated password %s, change it after first login", cfg.AdminEmail, password)
	case created:
		log.Infof("✅ [INIT] Step 2: Admin %s created", cfg.AdminEmail)
	default:
		log.Info("✅ [INIT] Step 2: Admin account already exists")
	}

	log.Info("✅ [INIT] InitDefaultData completed successfully")
}
