// Package departmentsvc - service phòng ban: kiểm tra cấp, vòng lặp cha-con, trưởng phòng và cây tổ chức.
package departmentsvc

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "qced_directory/internal/api/base/service"
	departmentdto "qced_directory/internal/api/department/dto"
	models "qced_directory/internal/api/department/models"
	empmodels "qced_directory/internal/api/employee/models"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
	"qced_directory/internal/utility"
)

// DepartmentService là service phòng ban
type DepartmentService struct {
	*basesvc.BaseServiceMongoImpl[models.Department]
	employeeService *basesvc.BaseServiceMongoImpl[empmodels.Employee]
}

// NewDepartmentService tạo mới DepartmentService
func NewDepartmentService() (*DepartmentService, error) {
	departmentCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Departments)
	if !exist {
		return nil, fmt.Errorf("failed to get departments collection: %v", common.ErrNotFound)
	}
	employeeCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Employees)
	if !exist {
		return nil, fmt.Errorf("failed to get employees collection: %v", common.ErrNotFound)
	}
	return &DepartmentService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Department](departmentCollection),
		employeeService:      basesvc.NewBaseServiceMongo[empmodels.Employee](employeeCollection),
	}, nil
}

// ValidateLevel kiểm tra cấp của phòng ban con phải thấp hơn (sâu hơn) cấp của cha
func ValidateLevel(parentLevel, childLevel string) error {
	parentRank := global.DepartmentLevelRank(parentLevel)
	childRank := global.DepartmentLevelRank(childLevel)
	if childRank < 0 {
		return common.NewError(common.ErrCodeValidationInput, fmt.Sprintf("Unknown department level '%s'", childLevel), common.StatusBadRequest, nil)
	}
	if parentRank >= 0 && childRank <= parentRank {
		return common.NewError(common.ErrCodeValidationInput,
			fmt.Sprintf("A '%s' cannot be placed under a '%s'", childLevel, parentLevel), common.StatusBadRequest,
			map[string]string{"field": "level"})
	}
	return nil
}

// DetectCycle kiểm tra việc gán newParent làm cha của id có tạo vòng lặp không.
// parentOf ánh xạ phòng ban -> cha hiện tại.
func DetectCycle(id, newParent primitive.ObjectID, parentOf map[primitive.ObjectID]primitive.ObjectID) bool {
	visited := map[primitive.ObjectID]bool{}
	current := newParent
	for !current.IsZero() {
		if current == id {
			return true
		}
		if visited[current] {
			return true
		}
		visited[current] = true
		current = parentOf[current]
	}
	return false
}

// BuildTree dựng cây phòng ban từ danh sách phẳng. Phòng ban mất cha được đưa lên gốc.
func BuildTree(departments []models.Department, employeeCounts map[primitive.ObjectID]int64) []*models.DepartmentNode {
	nodes := make(map[primitive.ObjectID]*models.DepartmentNode, len(departments))
	for _, d := range departments {
		nodes[d.ID] = &models.DepartmentNode{Department: d, EmployeeCount: employeeCounts[d.ID], Children: []*models.DepartmentNode{}}
	}

	roots := []*models.DepartmentNode{}
	for _, d := range departments {
		node := nodes[d.ID]
		if d.Parent != nil {
			if parent, ok := nodes[*d.Parent]; ok && *d.Parent != d.ID {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	var sortNodes func(list []*models.DepartmentNode)
	sortNodes = func(list []*models.DepartmentNode) {
		sort.SliceStable(list, func(i, j int) bool {
			ri, rj := global.DepartmentLevelRank(list[i].Level), global.DepartmentLevelRank(list[j].Level)
			if ri != rj {
				return ri < rj
			}
			return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
		})
		for _, n := range list {
			sortNodes(n.Children)
		}
	}
	sortNodes(roots)
	return roots
}

// List trả về danh sách phẳng theo tên
func (s *DepartmentService) List(ctx context.Context, level string, isActive *bool, q string) ([]models.Department, error) {
	filter := bson.M{}
	if level != "" {
		filter["level"] = level
	}
	if isActive != nil {
		filter["isActive"] = *isActive
	}
	if q = strings.TrimSpace(q); q != "" {
		filter["name"] = bson.M{"$regex": utility.EscapeRegex(q), "$options": "i"}
	}
	return s.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// EmployeeCounts đếm số nhân viên theo phòng ban
func (s *DepartmentService) EmployeeCounts(ctx context.Context) (map[primitive.ObjectID]int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"department": bson.M{"$ne": nil}}},
		{"$group": bson.M{"_id": "$department", "count": bson.M{"$sum": 1}}},
	}
	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err := s.employeeService.Aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	counts := make(map[primitive.ObjectID]int64, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

// Tree trả về cây phòng ban kèm số nhân viên
func (s *DepartmentService) Tree(ctx context.Context) ([]*models.DepartmentNode, error) {
	departments, err := s.Find(ctx, bson.M{}, nil)
	if err != nil {
		return nil, err
	}
	counts, err := s.EmployeeCounts(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(departments, counts), nil
}

// validateHead kiểm tra trưởng phòng tồn tại và đang hoạt động
func (s *DepartmentService) validateHead(ctx context.Context, headID primitive.ObjectID) error {
	head, err := s.employeeService.FindOneById(ctx, headID)
	if err != nil {
		if common.StatusOf(err) == common.StatusNotFound {
			return common.NewError(common.ErrCodeValidationInput, "Department head does not exist", common.StatusBadRequest, map[string]string{"field": "head"})
		}
		return err
	}
	if !head.IsActive {
		return common.NewError(common.ErrCodeValidationInput, "Department head must be an active employee", common.StatusBadRequest, map[string]string{"field": "head"})
	}
	return nil
}

func (s *DepartmentService) findParent(ctx context.Context, parentID primitive.ObjectID) (models.Department, error) {
	parent, err := s.FindOneById(ctx, parentID)
	if err != nil && common.StatusOf(err) == common.StatusNotFound {
		return parent, common.NewError(common.ErrCodeValidationInput, "Parent department does not exist", common.StatusBadRequest, map[string]string{"field": "parent"})
	}
	return parent, err
}

// Create tạo phòng ban mới
func (s *DepartmentService) Create(ctx context.Context, input *departmentdto.DepartmentCreateInput) (models.Department, error) {
	dept := models.Department{
		Name:               strings.TrimSpace(input.Name),
		Description:        strings.TrimSpace(input.Description),
		OrganizationalCode: strings.ToUpper(strings.TrimSpace(input.OrganizationalCode)),
		Level:              input.Level,
		IsActive:           input.IsActive == nil || *input.IsActive,
	}

	if input.Parent != "" {
		parentID, err := utility.ParseObjectID(input.Parent)
		if err != nil {
			return dept, err
		}
		parent, err := s.findParent(ctx, parentID)
		if err != nil {
			return dept, err
		}
		if err := ValidateLevel(parent.Level, dept.Level); err != nil {
			return dept, err
		}
		dept.Parent = &parentID
	}

	if input.Head != "" {
		headID, err := utility.ParseObjectID(input.Head)
		if err != nil {
			return dept, err
		}
		if err := s.validateHead(ctx, headID); err != nil {
			return dept, err
		}
		dept.Head = &headID
	}

	return s.InsertOne(ctx, dept)
}

// Update cập nhật phòng ban, kiểm tra cấp, vòng lặp cha-con và trưởng phòng
func (s *DepartmentService) Update(ctx context.Context, id primitive.ObjectID, input *departmentdto.DepartmentUpdateInput) (models.Department, error) {
	current, err := s.FindOneById(ctx, id)
	if err != nil {
		return current, err
	}

	update := &basesvc.UpdateData{Set: map[string]interface{}{}, Unset: map[string]interface{}{}}
	level := current.Level
	if input.Level != nil {
		level = *input.Level
		update.Set["level"] = level
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return current, common.NewError(common.ErrCodeValidationInput, "name is required", common.StatusBadRequest, map[string]string{"field": "name"})
		}
		update.Set["name"] = name
	}
	if input.Description != nil {
		update.Set["description"] = strings.TrimSpace(*input.Description)
	}
	if input.OrganizationalCode != nil {
		if code := strings.ToUpper(strings.TrimSpace(*input.OrganizationalCode)); code != "" {
			update.Set["organizationalCode"] = code
		} else {
			update.Unset["organizationalCode"] = ""
		}
	}
	if input.IsActive != nil {
		update.Set["isActive"] = *input.IsActive
	}

	// Cha: kiểm tra cấp và vòng lặp
	parentID := current.Parent
	if input.Parent != nil {
		parentID = nil
		if *input.Parent != "" {
			pid, err := utility.ParseObjectID(*input.Parent)
			if err != nil {
				return current, err
			}
			parentID = &pid
		}
	}
	if parentID != nil {
		if *parentID == id {
			return current, common.NewError(common.ErrCodeValidationInput, "A department cannot be its own parent", common.StatusBadRequest, map[string]string{"field": "parent"})
		}
		parent, err := s.findParent(ctx, *parentID)
		if err != nil {
			return current, err
		}
		if err := ValidateLevel(parent.Level, level); err != nil {
			return current, err
		}
		if input.Parent != nil {
			parentOf, err := s.parentMap(ctx)
			if err != nil {
				return current, err
			}
			if DetectCycle(id, *parentID, parentOf) {
				return current, common.NewError(common.ErrCodeValidationInput, "This parent would create a cycle in the hierarchy", common.StatusBadRequest, map[string]string{"field": "parent"})
			}
		}
	}
	if input.Parent != nil {
		if parentID != nil {
			update.Set["parent"] = *parentID
		} else {
			update.Unset["parent"] = ""
		}
	}

	// Đổi cấp thì các phòng ban con phải vẫn sâu hơn
	if input.Level != nil && level != current.Level {
		children, err := s.Find(ctx, bson.M{"parent": id}, nil)
		if err != nil {
			return current, err
		}
		for _, child := range children {
			if err := ValidateLevel(level, child.Level); err != nil {
				return current, err
			}
		}
	}

	if input.Head != nil {
		if *input.Head == "" {
			update.Unset["head"] = ""
		} else {
			headID, err := utility.ParseObjectID(*input.Head)
			if err != nil {
				return current, err
			}
			if err := s.validateHead(ctx, headID); err != nil {
				return current, err
			}
			update.Set["head"] = headID
		}
	}

	if len(update.Unset) == 0 {
		update.Unset = nil
	}
	return s.UpdateById(ctx, id, update)
}

func (s *DepartmentService) parentMap(ctx context.Context) (map[primitive.ObjectID]primitive.ObjectID, error) {
	all, err := s.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1, "parent": 1}))
	if err != nil {
		return nil, err
	}
	parentOf := make(map[primitive.ObjectID]primitive.ObjectID, len(all))
	for _, d := range all {
		if d.Parent != nil {
			parentOf[d.ID] = *d.Parent
		}
	}
	return parentOf, nil
}

// Employees trả về nhân viên của phòng ban theo tên
func (s *DepartmentService) Employees(ctx context.Context, id primitive.ObjectID, activeOnly bool) ([]empmodels.Employee, error) {
	if _, err := s.FindOneById(ctx, id); err != nil {
		return nil, err
	}
	filter := bson.M{"department": id}
	if activeOnly {
		filter["isActive"] = true
	}
	return s.employeeService.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// EnsureRoot tạo phòng ban gốc (cấp board) nếu chưa có
func (s *DepartmentService) EnsureRoot(ctx context.Context, name string) (models.Department, bool, error) {
	existing, err := s.FindOne(ctx, bson.M{"level": models.LevelBoard}, nil)
	if err == nil {
		return existing, false, nil
	}
	if common.StatusOf(err) != common.StatusNotFound {
		return existing, false, err
	}
	created, err := s.InsertOne(ctx, models.Department{
		Name:               name,
		Level:              models.LevelBoard,
		OrganizationalCode: "BOARD",
		IsActive:           true,
	})
	return created, err == nil, err
}
