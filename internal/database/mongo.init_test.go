package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type indexedModel struct {
	ID        string `bson:"_id,omitempty"`
	Email     string `bson:"email" index:"unique"`
	Extension string `bson:"extension,omitempty" index:"unique,sparse"`
	Name      string `bson:"name" index:"text"`
	Position  string `bson:"position" index:"text"`
	Dept      string `bson:"department" index:"single;compound:dept_week_unique"`
	WeekStart string `bson:"weekStart" index:"compound:dept_week_unique,order:-1"`
	ExpireAt  int64  `bson:"expireAt" index:"ttl:3600"`
	Skipped   string `bson:"-" index:"single"`
}

func TestBuildIndexSpecs(t *testing.T) {
	specs, err := BuildIndexSpecs(&indexedModel{})
	require.NoError(t, err)

	byName := map[string]IndexSpec{}
	for _, s := range specs {
		byName[s.Name] = s
	}
	require.Len(t, byName, 6)

	assert.True(t, byName["email_unique"].Unique)
	assert.False(t, byName["email_unique"].Sparse)
	assert.True(t, byName["extension_unique"].Sparse)
	assert.Equal(t, bson.D{{Key: "department", Value: 1}}, byName["department_single"].Keys)

	compound := byName["dept_week_unique"]
	assert.True(t, compound.Unique)
	assert.Equal(t, bson.D{{Key: "department", Value: 1}, {Key: "weekStart", Value: -1}}, compound.Keys)

	require.NotNil(t, byName["expireAt_ttl"].TTL)
	assert.Equal(t, int32(3600), *byName["expireAt_ttl"].TTL)

	assert.Equal(t, bson.D{{Key: "name", Value: "text"}, {Key: "position", Value: "text"}}, byName["search_text"].Keys)
}

func TestBuildIndexSpecs_InvalidTTL(t *testing.T) {
	type bad struct {
		At int64 `bson:"at" index:"ttl:soon"`
	}
	_, err := BuildIndexSpecs(bad{})
	assert.Error(t, err)
}

func TestSameIndex(t *testing.T) {
	spec := IndexSpec{Name: "email_unique", Keys: bson.D{{Key: "email", Value: 1}}, Unique: true}
	assert.True(t, sameIndex(bson.M{"key": bson.M{"email": int32(1)}, "unique": true}, spec))
	assert.False(t, sameIndex(bson.M{"key": bson.M{"email": int32(1)}}, spec))
	assert.False(t, sameIndex(bson.M{"key": bson.M{"email": int32(-1)}, "unique": true}, spec))
}
