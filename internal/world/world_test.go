package world

import (
	"testing"

	"github.com/annel0/afterlife-world/internal/vec"
	"github.com/annel0/afterlife-world/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, EnvironmentNether, ParseEnvironment("NETHER"))
	assert.Equal(t, EnvironmentNether, ParseEnvironment("nether"), "Сравнение должно быть регистронезависимым")
	assert.Equal(t, EnvironmentNormal, ParseEnvironment("NORMAL"))
	assert.Equal(t, EnvironmentNormal, ParseEnvironment("THE_END"), "Неизвестное окружение трактуется как NORMAL")
	assert.Equal(t, EnvironmentNormal, ParseEnvironment(""))
}

func TestEnvironmentMaxHeight(t *testing.T) {
	assert.Equal(t, 256, EnvironmentNormal.MaxHeight())
	assert.Equal(t, 128, EnvironmentNether.MaxHeight())
}

func TestPerlinGenerator_Deterministic(t *testing.T) {
	gen1 := NewTerrainGenerator(GeneratorDefault, 12345, EnvironmentNormal)
	gen2 := NewTerrainGenerator(GeneratorDefault, 12345, EnvironmentNormal)

	coords := vec.Vec2{X: 3, Z: -2}
	c1 := gen1.GenerateChunk(coords)
	c2 := gen2.GenerateChunk(coords)

	assert.Equal(t, c1.Surface, c2.Surface, "Одинаковый сид должен давать одинаковый ландшафт")
}

func TestPerlinGenerator_HeightBounds(t *testing.T) {
	gen := NewTerrainGenerator(GeneratorDefault, 777, EnvironmentNormal)
	chunk := gen.GenerateChunk(vec.Vec2{X: 0, Z: 0})

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			h := chunk.Surface[x][z]
			assert.GreaterOrEqual(t, h, BaseSurfaceHeight, "Высота не должна опускаться ниже базовой")
			assert.Less(t, h, EnvironmentNormal.MaxHeight(), "Высота не должна выходить за пределы мира")
		}
	}
}

func TestPerlinGenerator_NetherBlocks(t *testing.T) {
	gen := NewTerrainGenerator(GeneratorDefault, 1, EnvironmentNether)
	chunk := gen.GenerateChunk(vec.Vec2{X: 0, Z: 0})

	assert.Equal(t, block.NetherrackID, chunk.FillID, "Нижний мир заполняется незераком")
	assert.Equal(t, block.NetherrackID, chunk.TopID)
}

func TestFlatGenerator(t *testing.T) {
	gen := NewTerrainGenerator(GeneratorFlat, 0, EnvironmentNormal)
	chunk := gen.GenerateChunk(vec.Vec2{X: 5, Z: 5})

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			assert.Equal(t, FlatSurfaceHeight, chunk.Surface[x][z], "Плоский мир имеет постоянную высоту")
		}
	}
}

func TestVoidGenerator(t *testing.T) {
	gen := NewTerrainGenerator(GeneratorVoid, 0, EnvironmentNormal)
	chunk := gen.GenerateChunk(vec.Vec2{X: 0, Z: 0})

	// В пустом мире колонка состоит из одного бедрока на дне
	assert.Equal(t, 0, chunk.Surface[0][0])
	assert.Equal(t, block.BedrockBlockID, chunk.BlockAt(vec.Vec3{X: 0, Y: 0, Z: 0}))
	assert.Equal(t, block.AirBlockID, chunk.BlockAt(vec.Vec3{X: 0, Y: 1, Z: 0}))
	assert.Equal(t, block.AirBlockID, chunk.BlockAt(vec.Vec3{X: 0, Y: 64, Z: 0}))
}

func TestChunk_ColumnLayers(t *testing.T) {
	chunk := NewChunk(vec.Vec2{X: 0, Z: 0})
	chunk.Surface[4][7] = 60

	assert.Equal(t, block.BedrockBlockID, chunk.BlockAt(vec.Vec3{X: 4, Y: 0, Z: 7}), "Дно мира — бедрок")
	assert.Equal(t, block.StoneBlockID, chunk.BlockAt(vec.Vec3{X: 4, Y: 30, Z: 7}), "Ниже поверхности — заполнитель")
	assert.Equal(t, block.GrassBlockID, chunk.BlockAt(vec.Vec3{X: 4, Y: 60, Z: 7}), "На поверхности — верхний блок")
	assert.Equal(t, block.AirBlockID, chunk.BlockAt(vec.Vec3{X: 4, Y: 61, Z: 7}), "Над поверхностью — воздух")
	assert.Equal(t, block.AirBlockID, chunk.BlockAt(vec.Vec3{X: 4, Y: -1, Z: 7}), "Ниже дна — воздух")
}

func TestChunk_ChangesRoundTrip(t *testing.T) {
	chunk := NewChunk(vec.Vec2{X: 1, Z: 1})
	chunk.SetBlock(vec.Vec3{X: 2, Y: 65, Z: 3}, block.WaterBlockID)
	chunk.SetBlock(vec.Vec3{X: 0, Y: 1, Z: 0}, block.AirBlockID)

	encoded := chunk.EncodeChanges()
	require.Len(t, encoded, 2)

	restored := NewChunk(vec.Vec2{X: 1, Z: 1})
	require.NoError(t, restored.ApplyChanges(encoded))
	assert.Equal(t, block.WaterBlockID, restored.BlockAt(vec.Vec3{X: 2, Y: 65, Z: 3}))
	assert.Equal(t, block.AirBlockID, restored.BlockAt(vec.Vec3{X: 0, Y: 1, Z: 0}), "Изменение перекрывает даже бедрок")
}

func TestChunk_ApplyChangesRejectsBadKeys(t *testing.T) {
	chunk := NewChunk(vec.Vec2{})
	assert.Error(t, chunk.ApplyChanges(map[string]block.BlockID{"мусор": block.StoneBlockID}))
	assert.Error(t, chunk.ApplyChanges(map[string]block.BlockID{"99:1:0": block.StoneBlockID}), "Локальные координаты за пределами чанка должны отклоняться")
}

func TestRegistry_CreateAndFind(t *testing.T) {
	r := NewRegistry(t.TempDir())
	defer r.CloseAll()

	w, err := r.Create("afterlife", CreateOptions{Environment: EnvironmentNormal, Generator: GeneratorFlat})
	require.NoError(t, err)
	require.NotNil(t, w)

	assert.Equal(t, w, r.Find("afterlife"), "Созданный мир должен находиться по имени")
	assert.Nil(t, r.Find("ghost"), "Незагруженный мир не должен находиться")

	// Повторное создание возвращает тот же дескриптор
	again, err := r.Create("afterlife", CreateOptions{})
	require.NoError(t, err)
	assert.Same(t, w, again)
}

func TestRegistry_NaturalSpawn(t *testing.T) {
	r := NewRegistry(t.TempDir())
	defer r.CloseAll()

	w, err := r.Create("flatworld", CreateOptions{Generator: GeneratorFlat})
	require.NoError(t, err)

	spawn := w.SpawnLocation()
	assert.Equal(t, 0.5, spawn.X, "Спавн центрируется в колонке (0, 0)")
	assert.Equal(t, 0.5, spawn.Z)
	assert.Equal(t, float64(FlatSurfaceHeight+1), spawn.Y, "Спавн на один блок выше поверхности")
}

func TestRegistry_MetaSurvivesReload(t *testing.T) {
	root := t.TempDir()
	seed := int64(424242)

	r1 := NewRegistry(root)
	w1, err := r1.Create("afterlife", CreateOptions{
		Environment: EnvironmentNether,
		Generator:   GeneratorDefault,
		Seed:        &seed,
	})
	require.NoError(t, err)
	require.True(t, r1.Unload(w1, true))

	// Новый реестр с другими опциями: метаданные с диска имеют приоритет
	r2 := NewRegistry(root)
	defer r2.CloseAll()
	otherSeed := int64(1)
	w2, err := r2.Create("afterlife", CreateOptions{Seed: &otherSeed})
	require.NoError(t, err)

	assert.Equal(t, EnvironmentNether, w2.Environment())
	assert.Equal(t, seed, w2.Seed(), "Сохранённый сид должен пережить перезагрузку")
	assert.Equal(t, 128, w2.MaxHeight())
}

func TestRegistry_UnloadRefusesRetained(t *testing.T) {
	r := NewRegistry(t.TempDir())
	defer r.CloseAll()

	w, err := r.Create("afterlife", CreateOptions{Generator: GeneratorVoid})
	require.NoError(t, err)

	w.Retain()
	assert.False(t, r.Unload(w, false), "Удержанный мир нельзя выгрузить")
	assert.NotNil(t, r.Find("afterlife"), "Мир должен остаться загруженным")

	w.Release()
	assert.True(t, r.Unload(w, false), "После освобождения выгрузка проходит")
	assert.Nil(t, r.Find("afterlife"))

	// Повторная выгрузка того же дескриптора невозможна
	assert.False(t, r.Unload(w, false))
}

func TestRegistry_AllInCreationOrder(t *testing.T) {
	r := NewRegistry(t.TempDir())
	defer r.CloseAll()

	_, err := r.Create("world", CreateOptions{Generator: GeneratorVoid})
	require.NoError(t, err)
	_, err = r.Create("afterlife", CreateOptions{Generator: GeneratorVoid})
	require.NoError(t, err)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "world", all[0].Name(), "Первый созданный мир — главный")
	assert.Equal(t, "afterlife", all[1].Name())
}

func TestWorld_BlockChangesSurviveReload(t *testing.T) {
	root := t.TempDir()

	r1 := NewRegistry(root)
	w1, err := r1.Create("afterlife", CreateOptions{Generator: GeneratorFlat})
	require.NoError(t, err)

	pos := vec.Vec3{X: 10, Y: 70, Z: -5}
	require.NoError(t, w1.SetBlock(pos, block.SandBlockID))
	require.True(t, r1.Unload(w1, true))

	r2 := NewRegistry(root)
	defer r2.CloseAll()
	w2, err := r2.Create("afterlife", CreateOptions{})
	require.NoError(t, err)

	id, err := w2.BlockAt(pos)
	require.NoError(t, err)
	assert.Equal(t, block.SandBlockID, id, "Изменённый блок должен пережить выгрузку мира")
}

func TestWorld_SetBlockValidation(t *testing.T) {
	r := NewRegistry(t.TempDir())
	defer r.CloseAll()

	w, err := r.Create("afterlife", CreateOptions{Generator: GeneratorVoid})
	require.NoError(t, err)

	assert.Error(t, w.SetBlock(vec.Vec3{Y: -1}, block.StoneBlockID), "Y ниже дна должен отклоняться")
	assert.Error(t, w.SetBlock(vec.Vec3{Y: w.MaxHeight()}, block.StoneBlockID), "Y на максимальной высоте должен отклоняться")
	assert.Error(t, w.SetBlock(vec.Vec3{Y: 10}, block.BlockID(9999)), "Неизвестный блок должен отклоняться")
}

func BenchmarkPerlinGenerator(b *testing.B) {
	gen := NewTerrainGenerator(GeneratorDefault, 42, EnvironmentNormal)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gen.GenerateChunk(vec.Vec2{X: i, Z: -i})
	}
}

func TestWorld_RulesAndBorder(t *testing.T) {
	r := NewRegistry(t.TempDir())
	defer r.CloseAll()

	w, err := r.Create("afterlife", CreateOptions{Generator: GeneratorVoid})
	require.NoError(t, err)

	assert.False(t, w.GameRule(RuleKeepInventory), "Неустановленное правило выключено")
	w.SetGameRule(RuleKeepInventory, true)
	assert.True(t, w.GameRule(RuleKeepInventory))

	w.SetBorderCenter(0, 0)
	w.SetBorderSize(1000)
	w.SetBorderWarningDistance(20)
	b := w.WorldBorder()
	assert.Equal(t, float64(0), b.CenterX)
	assert.Equal(t, float64(1000), b.Size)
	assert.Equal(t, 20, b.WarningDistance)
}
