package block

// Behavior определяет статические свойства типа блока.
// Контроллеру жизненного цикла от блока нужны только имя и свойства
// проходимости/твёрдости — ими пользуется предикат безопасного спауна.
type Behavior interface {
	ID() BlockID
	Name() string
	// Solid — блок служит опорой и не пропускает игрока
	Solid() bool
	// Passable — игрок может находиться внутри блока (вода, воздух)
	Passable() bool
}

// simpleBehavior покрывает блоки без собственной логики
type simpleBehavior struct {
	id       BlockID
	name     string
	solid    bool
	passable bool
}

func (b simpleBehavior) ID() BlockID    { return b.id }
func (b simpleBehavior) Name() string   { return b.name }
func (b simpleBehavior) Solid() bool    { return b.solid }
func (b simpleBehavior) Passable() bool { return b.passable }

func init() {
	Register(simpleBehavior{id: AirBlockID, name: "Air", solid: false, passable: true})
	Register(simpleBehavior{id: StoneBlockID, name: "Stone", solid: true, passable: false})
	Register(simpleBehavior{id: DirtBlockID, name: "Dirt", solid: true, passable: false})
	Register(simpleBehavior{id: GrassBlockID, name: "Grass", solid: true, passable: false})
	Register(simpleBehavior{id: SandBlockID, name: "Sand", solid: true, passable: false})
	Register(simpleBehavior{id: WaterBlockID, name: "Water", solid: false, passable: true})
	Register(simpleBehavior{id: BedrockBlockID, name: "Bedrock", solid: true, passable: false})
	Register(simpleBehavior{id: NetherrackID, name: "Netherrack", solid: true, passable: false})
}
