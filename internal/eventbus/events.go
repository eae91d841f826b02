package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Типы событий жизненного цикла миров
const (
	EventWorldCreated     = "world_created"
	EventWorldRegenerated = "world_regenerated"
	EventPlayersEvacuated = "players_evacuated"
	EventSpawnChanged     = "spawn_changed"
)

// WorldCreatedEvent публикуется после создания или загрузки мира
type WorldCreatedEvent struct {
	World       string `json:"world"`
	Environment string `json:"environment"`
	Generator   string `json:"generator"`
	Seed        int64  `json:"seed"`
}

// WorldRegeneratedEvent публикуется по завершении регенерации
type WorldRegeneratedEvent struct {
	World   string `json:"world"`
	OK      bool   `json:"ok"`
	Reason  string `json:"reason,omitempty"`
	NewSeed int64  `json:"new_seed"`
}

// PlayersEvacuatedEvent публикуется после эвакуации игроков из мира
type PlayersEvacuatedEvent struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Players int    `json:"players"`
}

// SpawnChangedEvent публикуется при изменении точки спавна мира
type SpawnChangedEvent struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// NewEnvelope упаковывает полезную нагрузку в контейнер события.
// Ошибка сериализации здесь невозможна для доменных типов выше,
// поэтому при ней возвращается конверт с пустым Payload.
func NewEnvelope(source, eventType string, priority int, payload interface{}) *Envelope {
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}
	return &Envelope{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Priority:  priority,
		Payload:   data,
	}
}

// PublishWorldCreated отправляет событие создания мира в глобальную шину
func PublishWorldCreated(ctx context.Context, ev WorldCreatedEvent) error {
	return Publish(ctx, NewEnvelope("world", EventWorldCreated, 5, ev))
}

// PublishWorldRegenerated отправляет событие регенерации в глобальную шину
func PublishWorldRegenerated(ctx context.Context, ev WorldRegeneratedEvent) error {
	return Publish(ctx, NewEnvelope("afterlife", EventWorldRegenerated, 7, ev))
}

// PublishPlayersEvacuated отправляет событие эвакуации в глобальную шину
func PublishPlayersEvacuated(ctx context.Context, ev PlayersEvacuatedEvent) error {
	return Publish(ctx, NewEnvelope("afterlife", EventPlayersEvacuated, 7, ev))
}
