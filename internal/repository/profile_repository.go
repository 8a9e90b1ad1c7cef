package repository

import (
	"context"
	"errors"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileStore 用户资料文档存储，字段级合并写入
type ProfileStore interface {
	Get(ctx context.Context, uid string) (*model.Profile, error)
	Upsert(ctx context.Context, profile *model.Profile) error
	Merge(ctx context.Context, uid string, fields map[string]interface{}) error
	Delete(ctx context.Context, uid string) error
}

const profileKeyPrefix = "mindtrack:profile:"

// RedisProfileRepository 每个资料保存为一个哈希
type RedisProfileRepository struct {
	Redis *redis.Client
}

func NewRedisProfileRepository(rdb *redis.Client) *RedisProfileRepository {
	return &RedisProfileRepository{Redis: rdb}
}

func profileKey(uid string) string {
	return profileKeyPrefix + uid
}

func (r *RedisProfileRepository) Get(ctx context.Context, uid string) (*model.Profile, error) {
	values, err := r.Redis.HGetAll(ctx, profileKey(uid)).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, util.ErrProfileNotFound
	}
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		fields[k] = v
	}
	return model.ProfileFromFields(uid, fields), nil
}

func (r *RedisProfileRepository) Upsert(ctx context.Context, profile *model.Profile) error {
	key := profileKey(profile.UID)
	_, err := r.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, profile.Fields())
		return nil
	})
	return err
}

func (r *RedisProfileRepository) Merge(ctx context.Context, uid string, fields map[string]interface{}) error {
	key := profileKey(uid)
	now := time.Now().UTC().Format(time.RFC3339)
	values := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values[model.ProfileFieldUpdatedAt] = now

	_, err := r.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, model.ProfileFieldCreatedAt, now)
		pipe.HSet(ctx, key, values)
		return nil
	})
	return err
}

func (r *RedisProfileRepository) Delete(ctx context.Context, uid string) error {
	return r.Redis.Del(ctx, profileKey(uid)).Err()
}

// SQLProfileRepository 以 JSON 文档列保存资料
type SQLProfileRepository struct {
	DB *gorm.DB
}

func NewSQLProfileRepository(db *gorm.DB) *SQLProfileRepository {
	return &SQLProfileRepository{DB: db}
}

func (r *SQLProfileRepository) Get(ctx context.Context, uid string) (*model.Profile, error) {
	var doc model.ProfileDoc
	err := r.DB.WithContext(ctx).Where("uid = ?", uid).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ProfileFromFields(uid, doc.Doc), nil
}

func (r *SQLProfileRepository) Upsert(ctx context.Context, profile *model.Profile) error {
	return r.DB.WithContext(ctx).Save(&model.ProfileDoc{
		UID:       profile.UID,
		Doc:       datatypes.JSONMap(profile.Fields()),
		UpdatedAt: time.Now().UTC(),
	}).Error
}

func (r *SQLProfileRepository) Merge(ctx context.Context, uid string, fields map[string]interface{}) error {
	now := time.Now().UTC()
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc model.ProfileDoc
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("uid = ?", uid).First(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			doc = model.ProfileDoc{
				UID: uid,
				Doc: datatypes.JSONMap{model.ProfileFieldCreatedAt: now.Format(time.RFC3339)},
			}
		} else if err != nil {
			return err
		}
		if doc.Doc == nil {
			doc.Doc = datatypes.JSONMap{}
		}
		for k, v := range fields {
			doc.Doc[k] = v
		}
		doc.Doc[model.ProfileFieldUpdatedAt] = now.Format(time.RFC3339)
		doc.UpdatedAt = now
		return tx.Save(&doc).Error
	})
}

func (r *SQLProfileRepository) Delete(ctx context.Context, uid string) error {
	return r.DB.WithContext(ctx).Where("uid = ?", uid).Delete(&model.ProfileDoc{}).Error
}
