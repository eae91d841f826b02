package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/afterlife-world/internal/vec"
)

// MemoryPositionRepo реализует PositionRepo в памяти.
// Используется как fallback, когда Redis/MariaDB недоступны,
// или для CI/локальной разработки без БД.
// ВНИМАНИЕ: Данные теряются при перезапуске сервера!
type MemoryPositionRepo struct {
	mu   sync.RWMutex
	data map[string]PlayerPosition // playerID -> позиция
}

// NewMemoryPositionRepo создает новый репозиторий позиций в памяти
func NewMemoryPositionRepo() *MemoryPositionRepo {
	return &MemoryPositionRepo{
		data: make(map[string]PlayerPosition),
	}
}

// Save сохраняет позицию игрока в памяти
func (r *MemoryPositionRepo) Save(ctx context.Context, playerID, worldName string, pos vec.Vec3Float) error {
	if playerID == "" {
		return fmt.Errorf("пустой playerID")
	}
	if worldName == "" {
		return fmt.Errorf("пустое имя мира для игрока %s", playerID)
	}

	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[playerID] = PlayerPosition{
		PlayerID:  playerID,
		World:     worldName,
		Pos:       pos,
		UpdatedAt: time.Now(),
	}
	return nil
}

// Load загружает позицию игрока из памяти
func (r *MemoryPositionRepo) Load(ctx context.Context, playerID string) (PlayerPosition, bool, error) {
	if playerID == "" {
		return PlayerPosition{}, false, fmt.Errorf("пустой playerID")
	}

	select {
	case <-ctx.Done():
		return PlayerPosition{}, false, ctx.Err()
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, exists := r.data[playerID]
	return pos, exists, nil
}

// Delete удаляет сохраненную позицию игрока из памяти
func (r *MemoryPositionRepo) Delete(ctx context.Context, playerID string) error {
	if playerID == "" {
		return fmt.Errorf("пустой playerID")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[playerID]; !exists {
		return fmt.Errorf("позиция для игрока %s не найдена", playerID)
	}

	delete(r.data, playerID)
	return nil
}

// BatchSave сохраняет позиции нескольких игроков в памяти
func (r *MemoryPositionRepo) BatchSave(ctx context.Context, positions []PlayerPosition) error {
	if len(positions) == 0 {
		return nil // Нечего сохранять
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Валидация всех записей перед сохранением
	for _, pos := range positions {
		if pos.PlayerID == "" {
			return fmt.Errorf("пустой playerID в batch")
		}
		if pos.World == "" {
			return fmt.Errorf("пустое имя мира в batch для игрока %s", pos.PlayerID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, pos := range positions {
		pos.UpdatedAt = now
		r.data[pos.PlayerID] = pos
	}

	return nil
}

// Count возвращает количество сохраненных позиций (для отладки)
func (r *MemoryPositionRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Clear очищает все сохраненные позиции (для тестов)
func (r *MemoryPositionRepo) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = make(map[string]PlayerPosition)
}
