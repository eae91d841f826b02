package storage

import (
	"context"
	"time"

	"github.com/annel0/afterlife-world/internal/vec"
)

// PlayerPosition представляет последнюю известную позицию игрока
type PlayerPosition struct {
	PlayerID  string        `json:"player_id"`
	World     string        `json:"world"`
	Pos       vec.Vec3Float `json:"position"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PositionRepo определяет интерфейс для сохранения и загрузки позиций игроков.
// Позиции привязаны к PlayerID (постоянный идентификатор, UUID),
// что позволяет восстановить игрока между сессиями и после эвакуации.
type PositionRepo interface {
	// Save сохраняет позицию игрока в хранилище.
	Save(ctx context.Context, playerID, worldName string, pos vec.Vec3Float) error

	// Load загружает позицию игрока из хранилища.
	// Второй результат false означает первый вход игрока.
	Load(ctx context.Context, playerID string) (PlayerPosition, bool, error)

	// Delete удаляет сохраненную позицию игрока.
	Delete(ctx context.Context, playerID string) error

	// BatchSave сохраняет позиции нескольких игроков одновременно
	// (для автосохранения и массовой эвакуации).
	BatchSave(ctx context.Context, positions []PlayerPosition) error
}
