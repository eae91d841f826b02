package afterlife

import (
	"math"

	"github.com/annel0/afterlife-world/internal/vec"
	"github.com/annel0/afterlife-world/internal/world"
	"github.com/annel0/afterlife-world/internal/world/block"
)

// Location — точка спавна с привязкой к миру.
// Горизонтальные координаты центрированы в ячейке (+0.5).
type Location struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// FallbackOffset — смещение по Y при отсутствии безопасной высоты
const FallbackOffset = 3

// FindSafeSpawn возвращает точку, где игрок не окажется внутри твёрдых блоков.
//
// Кандидат центрируется в ячейке, затем проверяется предикатом безопасности;
// при неудаче колонка сканируется вверх до maxHeight-2. Если безопасной
// высоты нет вовсе, возвращается origin.Y+3 без каких-либо гарантий —
// лучше высадить игрока высоко, чем внутри породы.
func FindSafeSpawn(w *world.World, origin vec.Vec3Float) Location {
	cell := origin.ToBlock()
	loc := Location{
		World: w.Name(),
		X:     math.Floor(origin.X) + 0.5,
		Y:     float64(cell.Y),
		Z:     math.Floor(origin.Z) + 0.5,
	}

	if isSafeLocation(w, cell) {
		return loc
	}

	// Сканируем колонку вверх, горизонталь фиксирована
	for y := cell.Y; y <= w.MaxHeight()-2; y++ {
		candidate := vec.Vec3{X: cell.X, Y: y, Z: cell.Z}
		if isSafeLocation(w, candidate) {
			loc.Y = float64(y)
			return loc
		}
	}

	loc.Y = float64(cell.Y + FallbackOffset)
	return loc
}

// isSafeLocation — предикат безопасности: ячейка под ногами игрока
// и ячейка на уровне головы обе проходимы. Проверяются ровно две
// ячейки; блок под ногами не проверяется.
func isSafeLocation(w *world.World, pos vec.Vec3) bool {
	feet, err := w.BlockAt(pos)
	if err != nil {
		return false
	}
	head, err := w.BlockAt(pos.Above())
	if err != nil {
		return false
	}
	return block.IsPassable(feet) && block.IsPassable(head)
}
