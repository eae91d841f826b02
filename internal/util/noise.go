package util

import (
	"sync"

	"github.com/aquilax/go-perlin"
)

var (
	noiseMu     sync.Mutex
	perlinNoise *perlin.Perlin
	perlinSeed  int64
)

// InitPerlinNoise инициализирует генератор шума Перлина с указанным сидом
func InitPerlinNoise(seed int64) {
	noiseMu.Lock()
	defer noiseMu.Unlock()
	initLocked(seed)
}

func initLocked(seed int64) {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	perlinNoise = perlin.NewPerlin(alpha, beta, n, seed)
	perlinSeed = seed
}

// PerlinNoise2D возвращает значение шума Перлина для указанных координат (от 0 до 1).
// При смене сида генератор переинициализируется, чтобы ландшафт
// пересозданного мира не зависел от предыдущего.
func PerlinNoise2D(x, y float64, seed int64) float64 {
	noiseMu.Lock()
	if perlinNoise == nil || perlinSeed != seed {
		initLocked(seed)
	}
	p := perlinNoise
	noiseMu.Unlock()

	// Получаем значение шума (от -1 до 1)
	noise := p.Noise2D(x, y)

	// Преобразуем в диапазон от 0 до 1
	return (noise + 1.0) / 2.0
}
