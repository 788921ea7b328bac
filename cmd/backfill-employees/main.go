// Tool chuẩn hóa dữ liệu nhân viên cũ (import tay, bản trước):
// name rỗng -> ghép từ firstName/lastName, email -> chữ thường,
// thiếu documentsStatus -> pending, thiếu isActive -> true, thiếu tokenVersion -> 0.
// Chạy: go run ./cmd/backfill-employees [-dry-run]
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qced_directory/config"
	empmodels "qced_directory/internal/api/employee/models"
)

func stringField(doc bson.M, key string) (string, bool) {
	v, ok := doc[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// employeeBackfill trả về các field cần $set cho một document, rỗng nếu đã chuẩn
func employeeBackfill(doc bson.M) bson.M {
	set := bson.M{}

	name, _ := stringField(doc, "name")
	if strings.TrimSpace(name) == "" {
		first, _ := stringField(doc, "firstName")
		last, _ := stringField(doc, "lastName")
		if full := empmodels.FullName(first, last); full != "" {
			set["name"] = full
		}
	}
	if email, ok := stringField(doc, "email"); ok {
		if normalized := strings.ToLower(strings.TrimSpace(email)); normalized != email {
			set["email"] = normalized
		}
	}
	if status, _ := stringField(doc, "documentsStatus"); status == "" {
		set["documentsStatus"] = empmodels.DocumentsPending
	}
	if _, ok := doc["isActive"]; !ok {
		set["isActive"] = true
	}
	if _, ok := doc["tokenVersion"]; !ok {
		set["tokenVersion"] = int64(0)
	}
	return set
}

func main() {
	dryRun := flag.Bool("dry-run", false, "chỉ in ra thay đổi, không ghi")
	flag.Parse()

	cfg := config.NewConfig()
	if cfg == nil {
		log.Fatal("Cần MONGODB_CONNECTION_URI và JWT_SECRET trong config/env hoặc environment")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB_ConnectionURI))
	if err != nil {
		log.Fatalf("Kết nối MongoDB lỗi: %v", err)
	}
	defer client.Disconnect(ctx)

	coll := client.Database(cfg.MongoDB_DBName).Collection("employees")
	cur, err := coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"password": 0}))
	if err != nil {
		log.Fatalf("Đọc employees lỗi: %v", err)
	}
	defer cur.Close(ctx)

	scanned, updated, failed := 0, 0, 0
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			failed++
			continue
		}
		scanned++
		set := employeeBackfill(doc)
		if len(set) == 0 {
			continue
		}
		if *dryRun {
			log.Printf("  [DRY] %v: %v", doc["_id"], set)
			updated++
			continue
		}
		set["updatedAt"] = time.Now().UnixMilli()
		if _, err := coll.UpdateByID(ctx, doc["_id"], bson.M{"$set": set}); err != nil {
			// email trùng sau khi đổi chữ thường sẽ vướng unique index
			log.Printf("  [FAIL] %v: %v", doc["_id"], err)
			failed++
			continue
		}
		updated++
	}
	if err := cur.Err(); err != nil {
		log.Fatalf("Cursor lỗi: %v", err)
	}
	log.Printf("Hoàn thành: quét %d, cập nhật %d, lỗi %d (dry-run=%v)", scanned, updated, failed, *dryRun)
}
