package departmentsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "qced_directory/internal/api/department/models"
)

func TestValidateLevel(t *testing.T) {
	assert.NoError(t, ValidateLevel(models.LevelBoard, models.LevelAdministration))
	assert.NoError(t, ValidateLevel(models.LevelDepartment, models.LevelTeam))
	assert.NoError(t, ValidateLevel("", models.LevelBoard))

	assert.Error(t, ValidateLevel(models.LevelDepartment, models.LevelDepartment))
	assert.Error(t, ValidateLevel(models.LevelTeam, models.LevelSubDepartment))
	assert.Error(t, ValidateLevel(models.LevelBoard, "division"))
}

func TestDetectCycle(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	// a <- b <- c (c là con của b, b là con của a)
	parentOf := map[primitive.ObjectID]primitive.ObjectID{b: a, c: b}

	assert.True(t, DetectCycle(a, c, parentOf), "gán c làm cha của a tạo vòng lặp")
	assert.True(t, DetectCycle(a, a, parentOf))
	assert.False(t, DetectCycle(c, a, parentOf))

	// Dữ liệu hỏng đã có vòng lặp không làm treo
	broken := map[primitive.ObjectID]primitive.ObjectID{a: b, b: a}
	assert.True(t, DetectCycle(c, a, broken))
}

func TestBuildTree(t *testing.T) {
	board := models.Department{ID: primitive.NewObjectID(), Name: "Board", Level: models.LevelBoard}
	hr := models.Department{ID: primitive.NewObjectID(), Name: "Human Resources", Level: models.LevelDepartment, Parent: &board.ID}
	admin := models.Department{ID: primitive.NewObjectID(), Name: "Administration", Level: models.LevelAdministration, Parent: &board.ID}
	missing := primitive.NewObjectID()
	orphan := models.Department{ID: primitive.NewObjectID(), Name: "Orphan Team", Level: models.LevelTeam, Parent: &missing}

	roots := BuildTree([]models.Department{hr, orphan, admin, board}, map[primitive.ObjectID]int64{hr.ID: 4})

	require.Len(t, roots, 2)
	assert.Equal(t, "Board", roots[0].Name)
	assert.Equal(t, "Orphan Team", roots[1].Name)

	children := roots[0].Children
	require.Len(t, children, 2)
	assert.Equal(t, "Administration", children[0].Name, "cấp cao hơn đứng trước")
	assert.Equal(t, "Human Resources", children[1].Name)
	assert.Equal(t, int64(4), children[1].EmployeeCount)
	assert.NotNil(t, children[1].Children)
}
