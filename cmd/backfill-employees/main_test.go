package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEmployeeBackfill(t *testing.T) {
	set := employeeBackfill(bson.M{
		"firstName": "Layla",
		"lastName":  "Hassan",
		"email":     " Layla.Hassan@QCED.org",
	})
	assert.Equal(t, bson.M{
		"name":            "Layla Hassan",
		"email":           "layla.hassan@qced.org",
		"documentsStatus": "pending",
		"isActive":        true,
		"tokenVersion":    int64(0),
	}, set)
}

func TestEmployeeBackfill_AlreadyNormalized(t *testing.T) {
	set := employeeBackfill(bson.M{
		"name":            "Omar Aziz",
		"email":           "omar@qced.org",
		"documentsStatus": "complete",
		"isActive":        false,
		"tokenVersion":    int64(3),
	})
	assert.Empty(t, set)
}
