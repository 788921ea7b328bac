// Tool xuất dữ liệu mẫu từ MongoDB ra thư mục JSON (mật khẩu bị bỏ).
// Chạy: go run ./cmd/export-sample -out sample-data -limit 20
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qced_directory/config"
)

// Các collection cần xuất (theo cmd/server/init.go)
var collections = []string{"employees", "departments", "schedules", "schedule_histories", "messages", "audit_logs"}

// Các field nhạy cảm không bao giờ được xuất
var redactedFields = map[string]bool{"password": true}

// convertBSONToJSON chuyển document BSON sang JSON (ObjectID -> $oid) và bỏ field nhạy cảm
func convertBSONToJSON(doc bson.M) (map[string]interface{}, error) {
	for field := range redactedFields {
		delete(doc, field)
	}
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func main() {
	outputDir := flag.String("out", "sample-data", "thư mục output")
	limit := flag.Int64("limit", 20, "số document tối đa mỗi collection")
	flag.Parse()

	cfg := config.NewConfig()
	if cfg == nil {
		log.Fatal("Cần MONGODB_CONNECTION_URI và JWT_SECRET trong config/env hoặc environment")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB_ConnectionURI))
	if err != nil {
		log.Fatalf("Kết nối MongoDB lỗi: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Tạo thư mục output lỗi: %v", err)
	}

	db := client.Database(cfg.MongoDB_DBName)
	success, skipped := 0, 0
	for _, colName := range collections {
		n, err := exportCollection(ctx, db.Collection(colName), *outputDir, *limit)
		switch {
		case err != nil:
			log.Printf("  [SKIP] %s: %v", colName, err)
			skipped++
		case n == 0:
			log.Printf("  [EMPTY] %s", colName)
			skipped++
		default:
			log.Printf("  [OK] %s: %d documents", colName, n)
			success++
		}
	}

	writeLinkageReport(*outputDir)
	log.Printf("Hoàn thành: %d collections, %d bỏ qua. Output: %s", success, skipped, *outputDir)
}

func exportCollection(ctx context.Context, coll *mongo.Collection, dir string, limit int64) (int, error) {
	cur, err := coll.Find(ctx, bson.M{}, options.Find().SetLimit(limit).SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return 0, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	jsonDocs := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		if j, err := convertBSONToJSON(d); err == nil {
			jsonDocs = append(jsonDocs, j)
		}
	}

	f, err := os.Create(filepath.Join(dir, coll.Name()+".json"))
	if err != nil {
		return 0, err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonDocs); err != nil {
		return 0, err
	}
	return len(jsonDocs), nil
}

// linkageReport mô tả các khóa liên kết giữa các collection
const linkageReport = `# Khóa liên kết dữ liệu

| Collection | Khóa | Liên kết với |
|------------|------|--------------|
| employees | department | departments |
| departments | parent, head | departments, employees |
| schedules | department, entries.employee, publishedBy | departments, employees |
| schedule_histories | schedule, changedBy | schedules, employees |
| messages | sender, recipient, participants, readBy | employees |
| audit_logs | user, target.id | employees, (target.type) |
`

func writeLinkageReport(dir string) {
	path := filepath.Join(dir, "_LINKAGE_KEYS.md")
	if err := os.WriteFile(path, []byte(linkageReport), 0644); err != nil {
		log.Printf("  [WARN] Không ghi _LINKAGE_KEYS.md: %v", err)
		return
	}
	log.Printf("  [OK] Ghi _LINKAGE_KEYS.md")
}
