package world

import (
	"fmt"
	"sync"
	"time"

	"github.com/annel0/afterlife-world/internal/storage"
	"github.com/annel0/afterlife-world/internal/vec"
	"github.com/annel0/afterlife-world/internal/world/block"
)

// Игровые правила мира
const (
	RuleDaylightCycle = "do-daylight-cycle"
	RuleMobSpawning   = "do-mob-spawning"
	RuleKeepInventory = "keep-inventory"
)

// Border описывает границу мира
type Border struct {
	CenterX         float64
	CenterZ         float64
	Size            float64
	WarningDistance int
}

// World — загруженный мир: ландшафт, правила и точка спавна.
// Дескриптор действителен только пока мир загружен; после выгрузки
// его нельзя переиспользовать — мир ищется заново по имени.
type World struct {
	mu sync.RWMutex

	name      string
	env       Environment
	seed      int64
	generator TerrainGenerator
	genMode   string
	maxHeight int
	createdAt time.Time

	chunks  map[vec.Vec2]*Chunk
	storage *storage.WorldStorage

	spawn             vec.Vec3Float
	pvp               bool
	keepSpawnResident bool
	rules             map[string]bool
	border            Border

	retained int // Счётчик удержаний: мир с retained > 0 выгрузить нельзя
}

// Name возвращает имя мира
func (w *World) Name() string { return w.name }

// Environment возвращает окружение мира
func (w *World) Environment() Environment { return w.env }

// Seed возвращает сид генерации мира
func (w *World) Seed() int64 { return w.seed }

// GeneratorMode возвращает имя режима генератора
func (w *World) GeneratorMode() string { return w.genMode }

// MaxHeight возвращает максимальную высоту мира
func (w *World) MaxHeight() int { return w.maxHeight }

// CreatedAt возвращает время создания мира
func (w *World) CreatedAt() time.Time { return w.createdAt }

// SpawnLocation возвращает текущую точку спавна мира
func (w *World) SpawnLocation() vec.Vec3Float {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.spawn
}

// SetSpawnLocation устанавливает точку спавна мира
func (w *World) SetSpawnLocation(pos vec.Vec3Float) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.spawn = pos
}

// PVP возвращает, разрешён ли PVP в мире
func (w *World) PVP() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pvp
}

// SetPVP включает или выключает PVP
func (w *World) SetPVP(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pvp = enabled
}

// KeepSpawnResident возвращает, удерживается ли область спавна в памяти
func (w *World) KeepSpawnResident() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.keepSpawnResident
}

// SetKeepSpawnResident управляет удержанием области спавна в памяти
func (w *World) SetKeepSpawnResident(keep bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.keepSpawnResident = keep
}

// GameRule возвращает значение игрового правила.
// Неустановленное правило считается выключенным.
func (w *World) GameRule(rule string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rules[rule]
}

// SetGameRule устанавливает значение игрового правила
func (w *World) SetGameRule(rule string, value bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rules[rule] = value
}

// WorldBorder возвращает текущие параметры границы мира
func (w *World) WorldBorder() Border {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.border
}

// SetBorderCenter устанавливает центр границы мира
func (w *World) SetBorderCenter(x, z float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.border.CenterX = x
	w.border.CenterZ = z
}

// SetBorderSize устанавливает диаметр границы мира
func (w *World) SetBorderSize(size float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.border.Size = size
}

// SetBorderWarningDistance устанавливает дистанцию предупреждения границы
func (w *World) SetBorderWarningDistance(blocks int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.border.WarningDistance = blocks
}

// Retain увеличивает счётчик удержаний мира.
// Удержанный мир нельзя выгрузить.
func (w *World) Retain() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.retained++
}

// Release уменьшает счётчик удержаний мира
func (w *World) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.retained > 0 {
		w.retained--
	}
}

// Retained возвращает, удерживается ли мир от выгрузки
func (w *World) Retained() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.retained > 0
}

// chunkAt возвращает чанк по координатам чанка, лениво генерируя его
// и применяя сохранённую дельту из хранилища
func (w *World) chunkAt(coords vec.Vec2) (*Chunk, error) {
	w.mu.RLock()
	chunk, ok := w.chunks[coords]
	w.mu.RUnlock()
	if ok {
		return chunk, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if chunk, ok := w.chunks[coords]; ok {
		return chunk, nil
	}

	chunk = w.generator.GenerateChunk(coords)
	if w.storage != nil {
		delta, err := w.storage.LoadChunkDelta(coords)
		if err != nil {
			return nil, fmt.Errorf("ошибка загрузки дельты чанка %v: %w", coords, err)
		}
		if err := chunk.ApplyChanges(delta.Blocks); err != nil {
			return nil, fmt.Errorf("повреждённая дельта чанка %v: %w", coords, err)
		}
	}
	w.chunks[coords] = chunk
	return chunk, nil
}

// BlockAt возвращает блок по глобальным координатам мира
func (w *World) BlockAt(pos vec.Vec3) (block.BlockID, error) {
	chunk, err := w.chunkAt(pos.Column().ToChunkCoords())
	if err != nil {
		return block.AirBlockID, err
	}
	local := pos.Column().LocalInChunk()
	return chunk.BlockAt(vec.Vec3{X: local.X, Y: pos.Y, Z: local.Z}), nil
}

// SetBlock устанавливает блок по глобальным координатам мира
func (w *World) SetBlock(pos vec.Vec3, id block.BlockID) error {
	if !block.IsValidBlockID(id) {
		return fmt.Errorf("неизвестный ID блока: %d", id)
	}
	if pos.Y < 0 || pos.Y >= w.maxHeight {
		return fmt.Errorf("координата Y за пределами мира: %d", pos.Y)
	}

	chunk, err := w.chunkAt(pos.Column().ToChunkCoords())
	if err != nil {
		return err
	}
	local := pos.Column().LocalInChunk()
	chunk.SetBlock(vec.Vec3{X: local.X, Y: pos.Y, Z: local.Z}, id)
	return nil
}

// SurfaceHeightAt возвращает высоту поверхности по глобальным координатам колонки
func (w *World) SurfaceHeightAt(column vec.Vec2) (int, error) {
	chunk, err := w.chunkAt(column.ToChunkCoords())
	if err != nil {
		return 0, err
	}
	local := column.LocalInChunk()
	return chunk.SurfaceAt(local.X, local.Z), nil
}

// Save сохраняет дельты всех изменённых чанков и метаданные мира
func (w *World) Save() error {
	if w.storage == nil {
		return nil
	}

	w.mu.RLock()
	dirty := make([]*Chunk, 0)
	for _, chunk := range w.chunks {
		if chunk.ChangeCount() > 0 {
			dirty = append(dirty, chunk)
		}
	}
	w.mu.RUnlock()

	for _, chunk := range dirty {
		delta := &storage.ChunkDelta{
			Coords: chunk.Coords,
			Blocks: chunk.EncodeChanges(),
		}
		if err := w.storage.SaveChunkDelta(delta); err != nil {
			return fmt.Errorf("ошибка сохранения чанка %v: %w", chunk.Coords, err)
		}
	}

	return w.storage.SaveWorldMeta(&storage.WorldMeta{
		Name:        w.name,
		Environment: w.env.String(),
		Generator:   w.genMode,
		Seed:        w.seed,
		CreatedAt:   w.createdAt,
	})
}
