package block

var registry = make(map[BlockID]Behavior)

// Register добавляет поведение блока в регистр
func Register(b Behavior) {
	registry[b.ID()] = b
}

// Get возвращает поведение для указанного ID
func Get(id BlockID) (Behavior, bool) {
	behavior, exists := registry[id]
	return behavior, exists
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := registry[id]
	return exists
}

// IsPassable сообщает, может ли игрок находиться внутри блока.
// Незарегистрированные ID считаются непроходимыми.
func IsPassable(id BlockID) bool {
	behavior, exists := registry[id]
	if !exists {
		return false
	}
	return id == AirBlockID || behavior.Passable()
}

// IsSolid сообщает, является ли блок твёрдым (опорой для игрока)
func IsSolid(id BlockID) bool {
	behavior, exists := registry[id]
	if !exists {
		return false
	}
	return behavior.Solid()
}

// BlockID представляет идентификатор блока
type BlockID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID     BlockID = iota // 0
	StoneBlockID                  // 1
	DirtBlockID                   // 2
	GrassBlockID                  // 3
	SandBlockID                   // 4
	WaterBlockID                  // 5
	BedrockBlockID                // 6 - Неразрушимое дно мира
	NetherrackID                  // 7 - Заполнитель NETHER-окружения
)
