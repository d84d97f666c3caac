package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/user/cinestream/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository 访客个性化文档（片单、继续观看、搜索历史）
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Load 读取文档，不存在时返回 nil
func (r *DocumentRepository) Load(ctx context.Context, visitorID, key string) ([]byte, error) {
	var doc model.PersonalDocument
	err := r.db.WithContext(ctx).
		Where("visitor_id = ? AND key = ?", visitorID, key).
		Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc.Value), nil
}

// Update 读取-修改-写回，整个过程持有行锁
func (r *DocumentRepository) Update(ctx context.Context, visitorID, key string, fn func(current []byte) ([]byte, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先确保行存在，之后的 FOR UPDATE 才能串行化首次写入
		seed := &model.PersonalDocument{VisitorID: visitorID, Key: key, Value: "[]", UpdatedAt: time.Now()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
			return err
		}

		var doc model.PersonalDocument
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("visitor_id = ? AND key = ?", visitorID, key).
			Take(&doc).Error; err != nil {
			return err
		}

		next, err := fn([]byte(doc.Value))
		if err != nil {
			return err
		}

		return tx.Model(&model.PersonalDocument{}).
			Where("visitor_id = ? AND key = ?", visitorID, key).
			Updates(map[string]interface{}{
				"value":      string(next),
				"updated_at": time.Now(),
			}).Error
	})
}

// Delete 删除文档
func (r *DocumentRepository) Delete(ctx context.Context, visitorID, key string) error {
	return r.db.WithContext(ctx).
		Where("visitor_id = ? AND key = ?", visitorID, key).
		Delete(&model.PersonalDocument{}).Error
}

// DeleteStale 清理指定时间之前未更新的文档
func (r *DocumentRepository) DeleteStale(ctx context.Context, before time.Time, keys []string) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM personal_documents
		WHERE updated_at < ? AND key = ANY(?)
	`, before, pq.Array(keys))
	return result.RowsAffected, result.Error
}
