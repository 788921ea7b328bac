package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"qced_directory/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureDatabaseAndCollections tạo các collection còn thiếu trong database.
func EnsureDatabaseAndCollections(ctx context.Context, db *mongo.Database, collections []string) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, name := range collections {
		if name == "" || have[name] {
			continue
		}
		logger.WithModule("database").Infof("Collection %s chưa tồn tại, tạo mới", name)
		if err := db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}

	logger.WithModule("database").Infof("Database and collections are ensured in database: %s", db.Name())
	return nil
}

// IndexSpec là một index dựng từ struct tag `index:"..."`
type IndexSpec struct {
	Name   string
	Keys   bson.D
	Unique bool
	Sparse bool
	TTL    *int32
}

// options chuyển IndexSpec thành IndexOptions của driver
func (s IndexSpec) options() *options.IndexOptions {
	opts := options.Index().SetName(s.Name)
	if s.Unique {
		opts.SetUnique(true)
	}
	if s.Sparse {
		opts.SetSparse(true)
	}
	if s.TTL != nil {
		opts.SetExpireAfterSeconds(*s.TTL)
	}
	return opts
}

// parseOrder trích xuất thứ tự sắp xếp từ tag (1 hoặc -1)
func parseOrder(config map[string]string) int {
	if config["order"] == "-1" {
		return -1
	}
	return 1
}

// parseIndexTag tách tag index: các cấu hình phân cách bởi ';', thuộc tính bởi ','
//
//	index:"unique,sparse"            -> email_unique
//	index:"single,order:-1"          -> createdAt_single
//	index:"compound:dept_week_unique" -> compound unique (tên group chứa "_unique")
//	index:"ttl:0"                    -> TTL index
//	index:"text"                     -> text index
func parseIndexTag(tag string) []map[string]string {
	result := []map[string]string{}
	for _, part := range strings.Split(tag, ";") {
		entry := map[string]string{}
		for _, subPart := range strings.Split(part, ",") {
			subPart = strings.TrimSpace(subPart)
			if subPart == "" {
				continue
			}
			kv := strings.SplitN(subPart, ":", 2)
			if len(kv) == 2 {
				entry[kv[0]] = kv[1]
			} else {
				entry[kv[0]] = ""
			}
		}
		if len(entry) > 0 {
			result = append(result, entry)
		}
	}
	return result
}

// BuildIndexSpecs dựng danh sách index từ các field có tag `index`
func BuildIndexSpecs(model interface{}) ([]IndexSpec, error) {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	var specs []IndexSpec
	compound := map[string]*IndexSpec{}
	var textKeys bson.D

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}
		bsonField := strings.SplitN(field.Tag.Get("bson"), ",", 2)[0]
		if bsonField == "" || bsonField == "-" {
			continue
		}

		for _, config := range parseIndexTag(tag) {
			_, sparse := config["sparse"]

			if _, ok := config["text"]; ok {
				textKeys = append(textKeys, bson.E{Key: bsonField, Value: "text"})
			}
			if _, ok := config["single"]; ok {
				specs = append(specs, IndexSpec{
					Name: bsonField + "_single",
					Keys: bson.D{{Key: bsonField, Value: parseOrder(config)}},
				})
			}
			if _, ok := config["unique"]; ok {
				specs = append(specs, IndexSpec{
					Name:   bsonField + "_unique",
					Keys:   bson.D{{Key: bsonField, Value: 1}},
					Unique: true,
					Sparse: sparse,
				})
			}
			if ttlValue, ok := config["ttl"]; ok {
				ttl, err := strconv.Atoi(ttlValue)
				if err != nil {
					return nil, fmt.Errorf("TTL không hợp lệ ở field %s: %w", field.Name, err)
				}
				ttl32 := int32(ttl)
				specs = append(specs, IndexSpec{
					Name: bsonField + "_ttl",
					Keys: bson.D{{Key: bsonField, Value: 1}},
					TTL:  &ttl32,
				})
			}
			if groupName, ok := config["compound"]; ok && groupName != "" {
				spec, exists := compound[groupName]
				if !exists {
					spec = &IndexSpec{Name: groupName, Unique: strings.Contains(groupName, "_unique")}
					compound[groupName] = spec
				}
				spec.Keys = append(spec.Keys, bson.E{Key: bsonField, Value: parseOrder(config)})
				if sparse {
					spec.Sparse = true
				}
			}
		}
	}

	// Compound index sắp theo tên để kết quả ổn định
	groupNames := make([]string, 0, len(compound))
	for name := range compound {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)
	for _, name := range groupNames {
		specs = append(specs, *compound[name])
	}

	// MongoDB chỉ cho phép một text index mỗi collection
	if len(textKeys) > 0 {
		specs = append(specs, IndexSpec{Name: "search_text", Keys: textKeys})
	}
	return specs, nil
}

// sameIndex so sánh index hiện có với spec mới
func sameIndex(existing bson.M, spec IndexSpec) bool {
	existingKeys, ok := existing["key"].(bson.M)
	if !ok {
		if d, isD := existing["key"].(bson.D); isD {
			existingKeys = d.Map()
		} else {
			return false
		}
	}
	if spec.Keys[0].Value == "text" {
		// Text index lưu key dạng _fts/_ftsx, chỉ so theo tên
		return true
	}
	if len(existingKeys) != len(spec.Keys) {
		return false
	}
	for _, key := range spec.Keys {
		ev, exists := existingKeys[key.Key]
		if !exists || toInt(ev) != key.Value {
			return false
		}
	}

	unique, _ := existing["unique"].(bool)
	if unique != spec.Unique {
		return false
	}
	if spec.TTL != nil {
		if toInt(existing["expireAfterSeconds"]) != int(*spec.TTL) {
			return false
		}
	}
	return true
}

func toInt(v interface{}) interface{} {
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return v
}

// CreateIndexes tạo (hoặc thay thế khi cấu hình đổi) các index khai báo trên model
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	log := logger.WithModule("database").WithField("collection", collection.Name())

	specs, err := BuildIndexSpecs(model)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return nil
	}

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("không thể lấy danh sách index: %w", err)
	}
	defer cursor.Close(ctx)

	existingIndexes := map[string]bson.M{}
	for cursor.Next(ctx) {
		var indexInfo bson.M
		if err := cursor.Decode(&indexInfo); err != nil {
			return fmt.Errorf("không thể giải mã thông tin index: %w", err)
		}
		if name, ok := indexInfo["name"].(string); ok {
			existingIndexes[name] = indexInfo
		}
	}

	for _, spec := range specs {
		if existing, exists := existingIndexes[spec.Name]; exists {
			if sameIndex(existing, spec) {
				continue
			}
			if _, err := collection.Indexes().DropOne(ctx, spec.Name); err != nil {
				return fmt.Errorf("không thể xóa index %s: %w", spec.Name, err)
			}
			log.Infof("Đã xóa index cũ: %s", spec.Name)
		}

		if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: spec.Keys, Options: spec.options()}); err != nil {
			return fmt.Errorf("không thể tạo index %s: %w", spec.Name, err)
		}
		log.Infof("Đã tạo index: %s", spec.Name)
	}
	return nil
}
