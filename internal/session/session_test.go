package session

import (
	"context"
	"testing"

	"github.com/annel0/afterlife-world/internal/storage"
	"github.com/annel0/afterlife-world/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(storage.NewMemoryPositionRepo())
}

func TestManager_JoinAndGet(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	p, err := m.Join(ctx, "Steve", "world", vec.Vec3Float{X: 0.5, Y: 65, Z: 0.5})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(p.ID.String())
	require.True(t, ok)
	assert.Equal(t, "Steve", got.Name)
	assert.Equal(t, "world", got.World)
}

func TestManager_JoinValidation(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, err := m.Join(ctx, "", "world", vec.Vec3Float{})
	assert.Error(t, err, "Пустое имя игрока должно отклоняться")

	_, err = m.Join(ctx, "Steve", "", vec.Vec3Float{})
	assert.Error(t, err, "Пустое имя мира должно отклоняться")
}

func TestManager_PlayersIn(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	p1, err := m.Join(ctx, "Steve", "world", vec.Vec3Float{})
	require.NoError(t, err)
	p2, err := m.Join(ctx, "Alex", "afterlife", vec.Vec3Float{})
	require.NoError(t, err)
	p3, err := m.Join(ctx, "Herobrine", "afterlife", vec.Vec3Float{})
	require.NoError(t, err)

	inAfterlife := m.PlayersIn("afterlife")
	assert.Len(t, inAfterlife, 2)
	assert.Contains(t, inAfterlife, p2.ID.String())
	assert.Contains(t, inAfterlife, p3.ID.String())
	assert.NotContains(t, inAfterlife, p1.ID.String())

	assert.Empty(t, m.PlayersIn("ghost"), "Пустой мир — пустой список")
}

func TestManager_Teleport(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	p, err := m.Join(ctx, "Steve", "afterlife", vec.Vec3Float{Y: 70})
	require.NoError(t, err)

	dest := vec.Vec3Float{X: 0.5, Y: 65, Z: 0.5}
	require.NoError(t, m.Teleport(ctx, p.ID.String(), "world", dest))

	got, ok := m.Get(p.ID.String())
	require.True(t, ok)
	assert.Equal(t, "world", got.World)
	assert.Equal(t, dest, got.Pos)

	// Позиция сохранена в репозитории
	saved, found, err := m.RestorePosition(ctx, p.ID.String())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "world", saved.World)
	assert.Equal(t, dest, saved.Pos)
}

func TestManager_TeleportUnknownPlayer(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	err := m.Teleport(ctx, "не-uuid", "world", vec.Vec3Float{})
	assert.Error(t, err, "Некорректный ID должен отклоняться")

	err = m.Teleport(ctx, "00000000-0000-0000-0000-000000000001", "world", vec.Vec3Float{})
	assert.Error(t, err, "Неподключённый игрок должен отклоняться")
}

func TestManager_Leave(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	p, err := m.Join(ctx, "Steve", "afterlife", vec.Vec3Float{Y: 70})
	require.NoError(t, err)

	require.NoError(t, m.Leave(ctx, p.ID.String()))
	assert.Equal(t, 0, m.Count())

	_, ok := m.Get(p.ID.String())
	assert.False(t, ok)

	// Позиция переживает выход
	saved, found, err := m.RestorePosition(ctx, p.ID.String())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "afterlife", saved.World)

	// Повторный выход — ошибка
	assert.Error(t, m.Leave(ctx, p.ID.String()))
}
