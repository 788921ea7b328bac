package basesvc

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type relModel struct {
	_Relationships struct{} `relationship:"collection:employees,field:department,message:%d employee(s) still belong to this department|collection:schedules,field:department,optional:true"`
	ID             primitive.ObjectID `bson:"_id,omitempty"`
}

func TestParseRelationshipTag(t *testing.T) {
	rels := ParseRelationshipTag(reflect.TypeOf(&relModel{}))
	require.Len(t, rels, 2)

	assert.Equal(t, "employees", rels[0].CollectionName)
	assert.Equal(t, "department", rels[0].FieldName)
	assert.Equal(t, "3 employee(s) still belong to this department", RelationshipMessage(rels[0], 3))

	assert.True(t, rels[1].Optional)
	assert.Equal(t, "Cannot delete: 2 record(s) in 'schedules' still reference it", RelationshipMessage(rels[1], 2))
}

func TestToUpdateData(t *testing.T) {
	t.Run("plain map wraps in $set", func(t *testing.T) {
		u, err := ToUpdateData(bson.M{"phone": "0500000000"})
		require.NoError(t, err)
		assert.Equal(t, "0500000000", u.Set["phone"])
		assert.Nil(t, u.Unset)
	})

	t.Run("operators are kept", func(t *testing.T) {
		u, err := ToUpdateData(bson.M{"$set": bson.M{"isActive": false}, "$inc": bson.M{"tokenVersion": 1}})
		require.NoError(t, err)
		assert.Equal(t, false, u.Set["isActive"])
		assert.EqualValues(t, 1, u.Inc["tokenVersion"])
	})

	t.Run("UpdateData passes through", func(t *testing.T) {
		in := &UpdateData{Unset: map[string]interface{}{"head": ""}}
		u, err := ToUpdateData(in)
		require.NoError(t, err)
		assert.Same(t, in, u)
	})
}

func TestPrepareInsert(t *testing.T) {
	type doc struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		Email     string             `bson:"email"`
		Extension string             `bson:"extension"`
	}
	m, err := prepareInsert(doc{Email: "a@qced.sa"}, 1700000000000)
	require.NoError(t, err)

	assert.Equal(t, "a@qced.sa", m["email"])
	_, hasExt := m["extension"]
	assert.False(t, hasExt, "chuỗi rỗng phải bị bỏ để sparse index bỏ qua")
	_, hasID := m["_id"]
	assert.False(t, hasID)
	assert.Equal(t, int64(1700000000000), m["createdAt"])
}
