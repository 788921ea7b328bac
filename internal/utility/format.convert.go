package utility

import (
	"fmt"

	"qced_directory/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// String2ObjectID chuyển đổi chuỗi thành ObjectID, trả về NilObjectID nếu không hợp lệ
func String2ObjectID(id string) primitive.ObjectID {
	objectId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return objectId
}

// ParseObjectID chuyển đổi chuỗi thành ObjectID, trả về common.ErrInvalidID nếu không hợp lệ
func ParseObjectID(id string) (primitive.ObjectID, error) {
	objectId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.ErrInvalidID
	}
	return objectId, nil
}

// ParseObjectIDs chuyển đổi mảng chuỗi thành mảng ObjectID, dừng ở id lỗi đầu tiên
func ParseObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := ParseObjectID(id)
		if err != nil {
			return nil, err
		}
		objectIDs = append(objectIDs, oid)
	}
	return objectIDs, nil
}

// ObjectIDPtr trả về con trỏ tới ObjectID, nil với chuỗi rỗng
func ObjectIDPtr(id string) (*primitive.ObjectID, error) {
	if id == "" {
		return nil, nil
	}
	oid, err := ParseObjectID(id)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

// ToMap chuyển struct thành map thông qua bson (giữ đúng tên field bson)
func ToMap(s interface{}) (map[string]interface{}, error) {
	raw, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("bson marshal failed: %w", err)
	}
	var result map[string]interface{}
	if err := bson.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return result, nil
}
