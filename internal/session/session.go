package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/afterlife-world/internal/logging"
	"github.com/annel0/afterlife-world/internal/storage"
	"github.com/annel0/afterlife-world/internal/vec"
	"github.com/google/uuid"
)

// Player — подключённый игрок и его положение в мирах сервера
type Player struct {
	ID       uuid.UUID
	Name     string
	World    string
	Pos      vec.Vec3Float
	JoinedAt time.Time
}

// Manager отслеживает подключённых игроков и их позиции.
// Позиции дублируются в PositionRepo, чтобы пережить перезапуск.
type Manager struct {
	mu        sync.RWMutex
	players   map[uuid.UUID]*Player
	positions storage.PositionRepo
	log       *logging.Logger
}

// NewManager создаёт менеджер сессий с указанным репозиторием позиций
func NewManager(positions storage.PositionRepo) *Manager {
	return &Manager{
		players:   make(map[uuid.UUID]*Player),
		positions: positions,
		log:       logging.GetSessionLogger(),
	}
}

// Join регистрирует игрока в указанном мире
func (m *Manager) Join(ctx context.Context, name, worldName string, pos vec.Vec3Float) (*Player, error) {
	if name == "" {
		return nil, fmt.Errorf("пустое имя игрока")
	}
	if worldName == "" {
		return nil, fmt.Errorf("пустое имя мира")
	}

	p := &Player{
		ID:       uuid.New(),
		Name:     name,
		World:    worldName,
		Pos:      pos,
		JoinedAt: time.Now(),
	}

	m.mu.Lock()
	m.players[p.ID] = p
	m.mu.Unlock()

	if err := m.positions.Save(ctx, p.ID.String(), worldName, pos); err != nil {
		m.log.Warn("Не удалось сохранить позицию игрока %s: %v", p.Name, err)
	}

	m.log.Info("Игрок %s (%s) вошёл в мир '%s'", p.Name, p.ID, worldName)
	return p, nil
}

// Leave удаляет игрока с сервера
func (m *Manager) Leave(ctx context.Context, playerID string) error {
	id, err := uuid.Parse(playerID)
	if err != nil {
		return fmt.Errorf("некорректный ID игрока: %w", err)
	}

	m.mu.Lock()
	p, ok := m.players[id]
	if ok {
		delete(m.players, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("игрок %s не подключён", playerID)
	}

	// Последняя позиция остаётся в репозитории для следующего входа
	if err := m.positions.Save(ctx, playerID, p.World, p.Pos); err != nil {
		m.log.Warn("Не удалось сохранить позицию при выходе %s: %v", p.Name, err)
	}

	m.log.Info("Игрок %s вышел", p.Name)
	return nil
}

// Get возвращает игрока по строковому ID
func (m *Manager) Get(playerID string) (*Player, bool) {
	id, err := uuid.Parse(playerID)
	if err != nil {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	return p, ok
}

// PlayersIn возвращает ID игроков, находящихся в указанном мире
func (m *Manager) PlayersIn(worldName string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0)
	for _, p := range m.players {
		if p.World == worldName {
			out = append(out, p.ID.String())
		}
	}
	return out
}

// Count возвращает количество подключённых игроков
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

// Teleport перемещает игрока в указанный мир и позицию.
// Новая позиция сразу сохраняется в репозиторий.
func (m *Manager) Teleport(ctx context.Context, playerID, worldName string, pos vec.Vec3Float) error {
	id, err := uuid.Parse(playerID)
	if err != nil {
		return fmt.Errorf("некорректный ID игрока: %w", err)
	}
	if worldName == "" {
		return fmt.Errorf("пустое имя мира")
	}

	m.mu.Lock()
	p, ok := m.players[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("игрок %s не подключён", playerID)
	}
	from := p.World
	p.World = worldName
	p.Pos = pos
	m.mu.Unlock()

	if err := m.positions.Save(ctx, playerID, worldName, pos); err != nil {
		return fmt.Errorf("ошибка сохранения позиции после телепортации: %w", err)
	}

	m.log.Debug("Игрок %s телепортирован: %s -> %s (%.1f, %.1f, %.1f)",
		p.Name, from, worldName, pos.X, pos.Y, pos.Z)
	return nil
}

// RestorePosition загружает последнюю сохранённую позицию игрока
func (m *Manager) RestorePosition(ctx context.Context, playerID string) (storage.PlayerPosition, bool, error) {
	return m.positions.Load(ctx, playerID)
}
