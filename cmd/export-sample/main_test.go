package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestConvertBSONToJSON_RedactsPassword(t *testing.T) {
	id := primitive.NewObjectID()
	out, err := convertBSONToJSON(bson.M{"_id": id, "email": "a@qced.org", "password": "$2a$10$hash"})
	require.NoError(t, err)
	assert.NotContains(t, out, "password")
	assert.Equal(t, "a@qced.org", out["email"])
	assert.Equal(t, map[string]interface{}{"$oid": id.Hex()}, out["_id"])
}
