package basesvc

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"qced_directory/internal/common"
	"qced_directory/internal/global"
)

// RelationshipDefinition định nghĩa một quan hệ tham chiếu từ struct tag `relationship`.
//
// Khai báo trên field giả _Relationships của model:
//
//	_Relationships struct{} `relationship:"collection:employees,field:department,message:...|collection:schedules,field:department"`
type RelationshipDefinition struct {
	CollectionName string
	FieldName      string
	ErrorMessage   string // có thể chứa %d (số bản ghi tham chiếu)
	Optional       bool   // bỏ qua nếu collection chưa đăng ký
}

// ParseRelationshipTag đọc các định nghĩa quan hệ trên struct
func ParseRelationshipTag(structType reflect.Type) []RelationshipDefinition {
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return nil
	}

	var relationships []RelationshipDefinition
	for i := 0; i < structType.NumField(); i++ {
		tag := structType.Field(i).Tag.Get("relationship")
		if tag == "" {
			continue
		}
		relationships = append(relationships, parseRelationshipTagValue(tag)...)
	}
	return relationships
}

func parseRelationshipTagValue(tagValue string) []RelationshipDefinition {
	var relationships []RelationshipDefinition
	for _, part := range strings.Split(tagValue, "|") {
		rel := RelationshipDefinition{}
		for _, pair := range strings.Split(part, ",") {
			kv := strings.SplitN(strings.TrimSpace(pair), ":", 2)
			if len(kv) != 2 {
				continue
			}
			value := strings.TrimSpace(kv[1])
			switch strings.TrimSpace(kv[0]) {
			case "collection":
				rel.CollectionName = value
			case "field":
				rel.FieldName = value
			case "message", "msg":
				rel.ErrorMessage = value
			case "optional":
				rel.Optional = value == "true" || value == "1"
			}
		}
		if rel.CollectionName == "" || rel.FieldName == "" {
			continue
		}
		if rel.ErrorMessage == "" {
			rel.ErrorMessage = fmt.Sprintf("Cannot delete: %%d record(s) in '%s' still reference it", rel.CollectionName)
		}
		relationships = append(relationships, rel)
	}
	return relationships
}

// ValidateRelationshipsFromValue kiểm tra không còn bản ghi nào tham chiếu tới recordID
func ValidateRelationshipsFromValue(ctx context.Context, recordID primitive.ObjectID, record interface{}) error {
	relationships := ParseRelationshipTag(reflect.TypeOf(record))
	for _, rel := range relationships {
		collection, exists := global.RegistryCollections.Get(rel.CollectionName)
		if !exists {
			if rel.Optional {
				continue
			}
			return common.NewError(common.ErrCodeInternalServer,
				fmt.Sprintf("Collection '%s' is not registered", rel.CollectionName), common.StatusInternalServerError, nil)
		}

		count, err := collection.CountDocuments(ctx, bson.M{rel.FieldName: recordID})
		if err != nil {
			return common.ConvertMongoError(err)
		}
		if count > 0 {
			return common.NewError(common.ErrCodeBusinessOperation, RelationshipMessage(rel, count), common.StatusConflict,
				map[string]interface{}{"collection": rel.CollectionName, "field": rel.FieldName, "count": count})
		}
	}
	return nil
}

// RelationshipMessage điền số lượng vào message
func RelationshipMessage(rel RelationshipDefinition, count int64) string {
	if strings.Contains(rel.ErrorMessage, "%d") {
		return fmt.Sprintf(rel.ErrorMessage, count)
	}
	return rel.ErrorMessage
}
