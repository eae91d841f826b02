package world

import (
	"strings"

	"github.com/annel0/afterlife-world/internal/util"
	"github.com/annel0/afterlife-world/internal/vec"
	"github.com/annel0/afterlife-world/internal/world/block"
)

// Режимы генератора. "default" — родной генератор хоста (шум Перлина),
// остальные — кастомные генераторы, допустимые только в NORMAL-окружении.
const (
	GeneratorDefault = "default"
	GeneratorFlat    = "flat"
	GeneratorVoid    = "void"
)

// Константы высот для генерации
const (
	BaseSurfaceHeight = 48 // Минимальная высота поверхности
	SurfaceVariation  = 32 // Амплитуда рельефа
	FlatSurfaceHeight = 64 // Высота поверхности flat-генератора
)

// TerrainGenerator порождает чанки ландшафта мира
type TerrainGenerator interface {
	// Mode возвращает имя режима генератора
	Mode() string
	// GenerateChunk генерирует чанк по его координатам
	GenerateChunk(coords vec.Vec2) *Chunk
}

// NewTerrainGenerator создаёт генератор для указанного режима.
// Неизвестный режим трактуется как flat: кастомный генератор
// держащей области должен давать предсказуемый ландшафт, а не падать.
func NewTerrainGenerator(mode string, seed int64, env Environment) TerrainGenerator {
	switch {
	case strings.EqualFold(mode, GeneratorDefault):
		return &PerlinGenerator{Seed: seed, Env: env, NoiseScale: 0.05}
	case strings.EqualFold(mode, GeneratorVoid):
		return &VoidGenerator{}
	default:
		return &FlatGenerator{Height: FlatSurfaceHeight}
	}
}

// PerlinGenerator — родной генератор хоста: высоты поверхности из шума Перлина
type PerlinGenerator struct {
	Seed       int64
	Env        Environment
	NoiseScale float64 // Масштаб шума (сглаженность ландшафта)
}

func (g *PerlinGenerator) Mode() string { return GeneratorDefault }

// GenerateChunk генерирует чанк по его координатам
func (g *PerlinGenerator) GenerateChunk(coords vec.Vec2) *Chunk {
	chunk := NewChunk(coords)
	chunk.FillID = block.StoneBlockID
	chunk.TopID = block.GrassBlockID
	if g.Env == EnvironmentNether {
		chunk.FillID = block.NetherrackID
		chunk.TopID = block.NetherrackID
	}

	globalStartX := coords.X << 4 // chunkX * 16
	globalStartZ := coords.Z << 4

	maxSurface := g.Env.MaxHeight() - SurfaceVariation
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			globalX := globalStartX + x
			globalZ := globalStartZ + z

			// Координаты для шума (масштабированные)
			noiseX := float64(globalX) * g.NoiseScale
			noiseZ := float64(globalZ) * g.NoiseScale

			// Генерация высоты на основе шума Перлина
			height := util.PerlinNoise2D(noiseX, noiseZ, g.Seed)

			surface := BaseSurfaceHeight + int(height*SurfaceVariation)
			if surface >= maxSurface {
				surface = maxSurface - 1
			}
			chunk.Surface[x][z] = surface
		}
	}

	return chunk
}

// FlatGenerator — кастомный генератор плоского мира с фиксированной высотой
type FlatGenerator struct {
	Height int
}

func (g *FlatGenerator) Mode() string { return GeneratorFlat }

func (g *FlatGenerator) GenerateChunk(coords vec.Vec2) *Chunk {
	chunk := NewChunk(coords)
	chunk.FillID = block.DirtBlockID
	chunk.TopID = block.GrassBlockID

	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			chunk.Surface[x][z] = g.Height
		}
	}
	return chunk
}

// VoidGenerator — кастомный генератор пустого мира: только бедрок на дне
type VoidGenerator struct{}

func (g *VoidGenerator) Mode() string { return GeneratorVoid }

func (g *VoidGenerator) GenerateChunk(coords vec.Vec2) *Chunk {
	chunk := NewChunk(coords)
	// Surface == 0: колонки состоят из одного бедрока на y=0
	return chunk
}
