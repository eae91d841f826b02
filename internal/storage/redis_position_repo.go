package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/annel0/afterlife-world/internal/vec"
	"github.com/go-redis/redis/v8"
)

// RedisPositionRepo хранит позиции игроков в Redis для быстрого доступа.
// Записи имеют TTL: устаревшая позиция бесполезна, игрок при
// следующем входе всё равно попадёт на точку спауна.
type RedisPositionRepo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни записей
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		Password:  "",
		DB:        0,
		KeyPrefix: "afterlife:pos:",
		TTL:       24 * time.Hour,
	}
}

// NewRedisPositionRepo создаёт новый Redis репозиторий для позиций
func NewRedisPositionRepo(cfg *RedisConfig) (*RedisPositionRepo, error) {
	if cfg == nil {
		cfg = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Проверяем подключение
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	return &RedisPositionRepo{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
	}, nil
}

// Save сохраняет позицию игрока в Redis
func (r *RedisPositionRepo) Save(ctx context.Context, playerID, worldName string, pos vec.Vec3Float) error {
	if playerID == "" {
		return fmt.Errorf("пустой playerID")
	}

	record := PlayerPosition{
		PlayerID:  playerID,
		World:     worldName,
		Pos:       pos,
		UpdatedAt: time.Now(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("ошибка сериализации позиции: %w", err)
	}

	key := r.keyPrefix + playerID
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения позиции в Redis: %w", err)
	}
	return nil
}

// Load загружает позицию игрока из Redis
func (r *RedisPositionRepo) Load(ctx context.Context, playerID string) (PlayerPosition, bool, error) {
	if playerID == "" {
		return PlayerPosition{}, false, fmt.Errorf("пустой playerID")
	}

	key := r.keyPrefix + playerID
	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return PlayerPosition{}, false, nil // Позиция не найдена
	}
	if err != nil {
		return PlayerPosition{}, false, fmt.Errorf("ошибка чтения позиции из Redis: %w", err)
	}

	var record PlayerPosition
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return PlayerPosition{}, false, fmt.Errorf("ошибка десериализации позиции: %w", err)
	}
	return record, true, nil
}

// Delete удаляет сохраненную позицию игрока
func (r *RedisPositionRepo) Delete(ctx context.Context, playerID string) error {
	if playerID == "" {
		return fmt.Errorf("пустой playerID")
	}

	key := r.keyPrefix + playerID
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("ошибка удаления позиции из Redis: %w", err)
	}
	return nil
}

// BatchSave сохраняет позиции нескольких игроков через pipeline
func (r *RedisPositionRepo) BatchSave(ctx context.Context, positions []PlayerPosition) error {
	if len(positions) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	now := time.Now()
	for _, pos := range positions {
		if pos.PlayerID == "" {
			return fmt.Errorf("пустой playerID в batch")
		}
		pos.UpdatedAt = now
		data, err := json.Marshal(pos)
		if err != nil {
			return fmt.Errorf("ошибка сериализации позиции для %s: %w", pos.PlayerID, err)
		}
		pipe.Set(ctx, r.keyPrefix+pos.PlayerID, data, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ошибка batch-сохранения в Redis: %w", err)
	}
	return nil
}

// Close закрывает подключение к Redis
func (r *RedisPositionRepo) Close() error {
	return r.client.Close()
}
