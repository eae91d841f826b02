package vec

import "math"

// Vec3 представляет координаты блока в мире.
// Ось Y направлена вверх, X и Z задают горизонтальную плоскость.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Vec3Float представляет точную позицию в мире (для сущностей и точек спауна)
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// Column возвращает координаты колонки, в которой находится блок
func (v Vec3) Column() Vec2 {
	return Vec2{X: v.X, Z: v.Z}
}

// Above возвращает координаты блока непосредственно над данным
func (v Vec3) Above() Vec3 {
	return Vec3{X: v.X, Y: v.Y + 1, Z: v.Z}
}

// DistanceTo возвращает расстояние до другого блока
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	dz := float64(v.Z - other.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// ToBlock возвращает координаты блока, содержащего точку.
// Округление вниз, как в хост-окружении: блок (-1,…) начинается с -1.0.
func (v Vec3Float) ToBlock() Vec3 {
	return Vec3{
		X: int(math.Floor(v.X)),
		Y: int(math.Floor(v.Y)),
		Z: int(math.Floor(v.Z)),
	}
}

// FromBlock создаёт точную позицию из координат блока (угол блока, без центрирования)
func FromBlock(v Vec3) Vec3Float {
	return Vec3Float{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec3Float) DistanceTo(other Vec3Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
