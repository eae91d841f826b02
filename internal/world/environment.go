package world

import "strings"

// Environment представляет тип окружения мира
type Environment int

const (
	EnvironmentNormal Environment = iota
	EnvironmentNether
)

// String возвращает строковое представление окружения
func (e Environment) String() string {
	switch e {
	case EnvironmentNether:
		return "NETHER"
	default:
		return "NORMAL"
	}
}

// ParseEnvironment разбирает окружение из конфигурации.
// Сравнение регистронезависимое; неизвестные значения трактуются как NORMAL.
func ParseEnvironment(s string) Environment {
	if strings.EqualFold(s, "NETHER") {
		return EnvironmentNether
	}
	return EnvironmentNormal
}

// MaxHeight возвращает максимальную высоту мира для окружения
func (e Environment) MaxHeight() int {
	if e == EnvironmentNether {
		return 128
	}
	return 256
}
