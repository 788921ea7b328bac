package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"strong_password"`
	Extension string  `json:"extension,omitempty" validate:"omitempty,extension"`
	Role      string  `json:"role" validate:"role"`
	Level     string  `json:"level" validate:"dept_level"`
	Start     string  `json:"startTime" validate:"hhmm"`
	Dept      string  `json:"department" validate:"object_id"`
	Bio       string  `json:"bio" validate:"no_xss"`
	Items     []child `json:"items" validate:"dive"`
}

type child struct {
	Name string `json:"name" validate:"required"`
}

func TestCustomValidators(t *testing.T) {
	InitValidator()

	valid := sampleInput{
		Email:     "sara@qced.sa",
		Password:  "Passw0rdX",
		Extension: "1203",
		Role:      "manager",
		Level:     "sub_department",
		Start:     "08:30",
		Dept:      "65f1a2b3c4d5e6f7a8b9c0d1",
		Bio:       "Hello",
	}
	require.NoError(t, Validate.Struct(valid))

	invalid := sampleInput{
		Email:     "not-an-email",
		Password:  "password",
		Extension: "1",
		Role:      "owner",
		Level:     "division",
		Start:     "24:00",
		Dept:      "123",
		Bio:       "<script>alert(1)</script>",
		Items:     []child{{}},
	}
	errs := FormatValidationErrors(Validate.Struct(invalid))

	tags := map[string]string{}
	for _, e := range errs {
		tags[e.Field] = e.Tag
	}
	assert.Equal(t, map[string]string{
		"email":         "email",
		"password":      "strong_password",
		"extension":     "extension",
		"role":          "role",
		"level":         "dept_level",
		"startTime":     "hhmm",
		"department":    "object_id",
		"bio":           "no_xss",
		"items[0].name": "required",
	}, tags)
}

func TestDepartmentLevelRank(t *testing.T) {
	assert.Equal(t, 0, DepartmentLevelRank("board"))
	assert.Equal(t, 4, DepartmentLevelRank("team"))
	assert.Equal(t, -1, DepartmentLevelRank("unknown"))
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	assert.Nil(t, FormatValidationErrors(assert.AnError))
}
