package world

import (
	"fmt"
	"sync"

	"github.com/annel0/afterlife-world/internal/vec"
	"github.com/annel0/afterlife-world/internal/world/block"
)

// ChunkSize определяет размер чанка по горизонтали (16x16 колонок)
const ChunkSize = 16

// Chunk хранит ландшафт области 16x16 колонок.
// Колонка описывается высотой поверхности: всё от y=1 до Surface —
// заполнитель, y=0 — бедрок, выше — воздух. Точечные изменения
// (SetBlock) хранятся отдельно в Overrides и попадают в дельту
// для сохранения.
type Chunk struct {
	Coords vec.Vec2
	Mu     sync.RWMutex

	Surface [ChunkSize][ChunkSize]int     // Высота последнего твёрдого блока в колонке (0 = только бедрок)
	FillID  block.BlockID                 // Заполнитель колонок ниже поверхности
	TopID   block.BlockID                 // Верхний блок колонки (поверхность)
	Changes map[vec.Vec3]block.BlockID    // Точечные изменения, ключ - локальные координаты
}

// NewChunk создаёт пустой чанк с указанными координатами
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{
		Coords:  coords,
		FillID:  block.StoneBlockID,
		TopID:   block.GrassBlockID,
		Changes: make(map[vec.Vec3]block.BlockID),
	}
}

// BlockAt возвращает блок по локальным координатам чанка.
// Координаты за пределами высоты мира считаются воздухом.
func (c *Chunk) BlockAt(local vec.Vec3) block.BlockID {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.blockAtLocked(local)
}

func (c *Chunk) blockAtLocked(local vec.Vec3) block.BlockID {
	if id, ok := c.Changes[local]; ok {
		return id
	}
	if local.Y < 0 {
		return block.AirBlockID
	}
	if local.Y == 0 {
		return block.BedrockBlockID // Дно мира неразрушимо
	}

	surface := c.Surface[local.X][local.Z]
	switch {
	case local.Y < surface:
		return c.FillID
	case local.Y == surface && surface > 0:
		return c.TopID
	default:
		return block.AirBlockID
	}
}

// SetBlock записывает точечное изменение блока по локальным координатам
func (c *Chunk) SetBlock(local vec.Vec3, id block.BlockID) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Changes[local] = id
}

// SurfaceAt возвращает высоту поверхности колонки
func (c *Chunk) SurfaceAt(localX, localZ int) int {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.Surface[localX][localZ]
}

// ChangeCount возвращает количество несохранённых точечных изменений
func (c *Chunk) ChangeCount() int {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return len(c.Changes)
}

// EncodeChanges упаковывает точечные изменения в карту "x:y:z" -> ID
// для дельты хранилища
func (c *Chunk) EncodeChanges() map[string]block.BlockID {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	out := make(map[string]block.BlockID, len(c.Changes))
	for pos, id := range c.Changes {
		out[fmt.Sprintf("%d:%d:%d", pos.X, pos.Y, pos.Z)] = id
	}
	return out
}

// ApplyChanges применяет загруженную из хранилища дельту к чанку
func (c *Chunk) ApplyChanges(encoded map[string]block.BlockID) error {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	for key, id := range encoded {
		var x, y, z int
		if _, err := fmt.Sscanf(key, "%d:%d:%d", &x, &y, &z); err != nil {
			return fmt.Errorf("ошибка парсинга ключа '%s': %w", key, err)
		}
		if x < 0 || x >= ChunkSize || z < 0 || z >= ChunkSize {
			return fmt.Errorf("некорректные локальные координаты: %d,%d,%d", x, y, z)
		}
		c.Changes[vec.Vec3{X: x, Y: y, Z: z}] = id
	}
	return nil
}
