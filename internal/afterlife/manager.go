package afterlife

import (
	"context"
	"fmt"
	"strings"

	"github.com/annel0/afterlife-world/internal/config"
	"github.com/annel0/afterlife-world/internal/eventbus"
	"github.com/annel0/afterlife-world/internal/logging"
	"github.com/annel0/afterlife-world/internal/storage"
	"github.com/annel0/afterlife-world/internal/vec"
	"github.com/annel0/afterlife-world/internal/world"
)

// BorderWarningDistance — фиксированная дистанция предупреждения границы
const BorderWarningDistance = 20

// SessionService — сервис перемещения игроков, используется при эвакуации
type SessionService interface {
	PlayersIn(worldName string) []string
	Teleport(ctx context.Context, playerID, worldName string, pos vec.Vec3Float) error
}

// WorldConfig — снимок настроек загробного мира, читается заново
// при каждой операции
type WorldConfig struct {
	Enabled     bool
	WorldName   string
	Environment world.Environment
	Generator   string
	BorderSize  int
	SpawnY      *int
	AllowPVP    bool
	MobSpawning bool
	Seed        *int64
}

// Outcome — результат регенерации для обратной связи оператору
type Outcome struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Manager — контроллер жизненного цикла загробного мира: создание
// по требованию, настройка правил и границы, поиск безопасного спавна
// и протокол регенерации (эвакуация -> выгрузка -> удаление -> пересоздание).
//
// Дескриптор мира никогда не кэшируется между операциями: мир всегда
// ищется заново по имени, чтобы не работать с выгруженной ссылкой.
type Manager struct {
	cfg      *config.Store
	registry *world.Registry
	sessions SessionService
	log      *logging.Logger
}

// NewManager создаёт контроллер загробного мира
func NewManager(cfg *config.Store, registry *world.Registry, sessions SessionService) *Manager {
	return &Manager{
		cfg:      cfg,
		registry: registry,
		sessions: sessions,
		log:      logging.GetAfterlifeLogger(),
	}
}

// resolveConfig читает снимок настроек из конфигурации
func (m *Manager) resolveConfig() WorldConfig {
	wc := WorldConfig{
		Enabled:     m.cfg.GetBool("afterlife.enabled", false),
		WorldName:   m.cfg.GetString("afterlife.world-name", "afterlife"),
		Environment: world.ParseEnvironment(m.cfg.GetString("afterlife.environment", "NORMAL")),
		Generator:   m.cfg.GetString("afterlife.generator", "default"),
		BorderSize:  m.cfg.GetInt("afterlife.border-size", 256),
		AllowPVP:    m.cfg.GetBool("afterlife.allow-pvp", false),
		MobSpawning: m.cfg.GetBool("afterlife.mob-spawning", true),
	}
	if m.cfg.Has("afterlife.spawn-y") {
		y := m.cfg.GetInt("afterlife.spawn-y", 0)
		wc.SpawnY = &y
	}
	if m.cfg.Has("afterlife.seed") {
		s := m.cfg.GetInt64("afterlife.seed", 0)
		wc.Seed = &s
	}
	return wc
}

// generatorFor выбирает режим генератора: кастомный генератор допустим
// только в NORMAL-окружении, иначе используется родной генератор хоста
func generatorFor(wc WorldConfig) string {
	if wc.Environment == world.EnvironmentNormal && !strings.EqualFold(wc.Generator, world.GeneratorDefault) {
		return wc.Generator
	}
	return world.GeneratorDefault
}

// Init создаёт (при отсутствии) и настраивает загробный мир.
//
// При force=false и выключенной функции — no-op, не ошибка.
// Явный аргумент seed имеет приоритет над сидом из конфигурации.
// Операция идемпотентна для уже загруженного мира.
func (m *Manager) Init(force bool, seed *int64) error {
	wc := m.resolveConfig()

	if !force && !wc.Enabled {
		m.log.Debug("Загробный мир выключен в конфигурации, инициализация пропущена")
		return nil
	}

	w := m.registry.Find(wc.WorldName)
	if w == nil {
		effectiveSeed := wc.Seed
		if seed != nil {
			effectiveSeed = seed
		}

		var err error
		w, err = m.registry.Create(wc.WorldName, world.CreateOptions{
			Environment: wc.Environment,
			Generator:   generatorFor(wc),
			Seed:        effectiveSeed,
		})
		if err != nil {
			m.log.Error("Не удалось создать загробный мир '%s': %v", wc.WorldName, err)
			return fmt.Errorf("создание мира '%s': %w", wc.WorldName, err)
		}

		_ = eventbus.PublishWorldCreated(context.Background(), eventbus.WorldCreatedEvent{
			World:       w.Name(),
			Environment: w.Environment().String(),
			Generator:   w.GeneratorMode(),
			Seed:        w.Seed(),
		})
	}

	m.configureWorld(w, wc)
	m.log.Info("🌅 Загробный мир '%s' готов (env=%s, border=%d)", wc.WorldName, wc.Environment, wc.BorderSize)
	return nil
}

// configureWorld применяет правила к миру. Безопасно повторять
// для уже настроенного мира.
func (m *Manager) configureWorld(w *world.World, wc WorldConfig) {
	w.SetPVP(wc.AllowPVP)
	w.SetKeepSpawnResident(true)
	w.SetGameRule(world.RuleDaylightCycle, true)
	w.SetGameRule(world.RuleMobSpawning, wc.MobSpawning)
	w.SetGameRule(world.RuleKeepInventory, true)

	w.SetBorderCenter(0, 0)
	w.SetBorderSize(float64(wc.BorderSize))
	w.SetBorderWarningDistance(BorderWarningDistance)

	spawnY := w.SpawnLocation().Y
	if wc.SpawnY != nil {
		spawnY = float64(*wc.SpawnY)
	}
	w.SetSpawnLocation(vec.Vec3Float{X: 0.5, Y: spawnY, Z: 0.5})
}

// GetWorld возвращает загруженный загробный мир или nil
func (m *Manager) GetWorld() *world.World {
	return m.registry.Find(m.resolveConfig().WorldName)
}

// GetSpawnLocation ищет безопасную точку спавна в загробном мире.
// Второй результат false означает, что мир не загружен — для
// вызывающего это ожидаемая ситуация, не ошибка.
func (m *Manager) GetSpawnLocation() (Location, bool) {
	w := m.GetWorld()
	if w == nil {
		return Location{}, false
	}
	return FindSafeSpawn(w, w.SpawnLocation()), true
}

// IsAfterlifeWorld сообщает, является ли мир загробным.
// nil безопасен и даёт false.
func (m *Manager) IsAfterlifeWorld(w *world.World) bool {
	if w == nil {
		return false
	}
	return w.Name() == m.resolveConfig().WorldName
}

// RegenerateWorld полностью пересоздаёт загробный мир с нуля.
//
// Протокол из четырёх фаз, каждая зависит от успеха предыдущей:
// эвакуация игроков, выгрузка без сохранения, удаление данных с диска,
// пересоздание через Init(force=true). Фазы 2 и 3 прерывают протокол
// при первой же неудаче без повторных попыток.
func (m *Manager) RegenerateWorld(ctx context.Context, notifier Notifier, seed *int64) Outcome {
	wc := m.resolveConfig()
	notifier.Notify(NotifyInfo, fmt.Sprintf("Регенерация мира '%s' запущена...", wc.WorldName))

	// Фаза 1: эвакуация. Без гарантий — неудачная телепортация не
	// прерывает протокол.
	w := m.registry.Find(wc.WorldName)
	if w != nil {
		m.evacuate(ctx, w)
	}

	// Фаза 2: выгрузка без сохранения
	if w != nil {
		if !m.registry.Unload(w, false) {
			m.log.Error("Не удалось выгрузить мир '%s'", wc.WorldName)
			notifier.Notify(NotifyError, fmt.Sprintf("Не удалось выгрузить мир '%s'", wc.WorldName))
			return m.finish(ctx, Outcome{OK: false, Reason: "unload failed"}, wc, seed)
		}
	}

	// Фаза 3: удаление данных. Только после подтверждения выгрузки —
	// дескриптор не переиспользуется, мир ищется заново по имени.
	if m.registry.Find(wc.WorldName) != nil {
		notifier.Notify(NotifyError, fmt.Sprintf("Мир '%s' всё ещё загружен, удаление отменено", wc.WorldName))
		return m.finish(ctx, Outcome{OK: false, Reason: "still loaded, refusing delete"}, wc, seed)
	}
	if err := storage.DeleteWorldData(m.registry.StorageRoot(), wc.WorldName); err != nil {
		m.log.Error("Ошибка удаления данных мира '%s': %v", wc.WorldName, err)
		notifier.Notify(NotifyError, fmt.Sprintf("Ошибка удаления данных мира: %v", err))
		return m.finish(ctx, Outcome{OK: false, Reason: "delete failed"}, wc, seed)
	}

	// Фаза 4: пересоздание. Успех операции определяется тем,
	// что мир находится по имени после Init.
	if err := m.Init(true, seed); err != nil {
		m.log.Error("Ошибка пересоздания мира '%s': %v", wc.WorldName, err)
	}

	ok := m.registry.Find(wc.WorldName) != nil
	if ok {
		notifier.Notify(NotifyInfo, fmt.Sprintf("Мир '%s' пересоздан", wc.WorldName))
	} else {
		notifier.Notify(NotifyError, fmt.Sprintf("Мир '%s' отсутствует после пересоздания", wc.WorldName))
	}
	return m.finish(ctx, Outcome{OK: ok}, wc, seed)
}

// evacuate перемещает всех игроков загробного мира в первый мир
// из списка реестра. Если другого мира нет, эвакуация пропускается.
func (m *Manager) evacuate(ctx context.Context, w *world.World) {
	if m.sessions == nil {
		return
	}

	players := m.sessions.PlayersIn(w.Name())
	if len(players) == 0 {
		return
	}

	var fallback *world.World
	for _, candidate := range m.registry.All() {
		if candidate.Name() != w.Name() {
			fallback = candidate
			break
		}
	}
	if fallback == nil {
		m.log.Warn("Некуда эвакуировать %d игроков из '%s': нет другого мира", len(players), w.Name())
		return
	}

	spawn := fallback.SpawnLocation()
	evacuated := 0
	for _, playerID := range players {
		if err := m.sessions.Teleport(ctx, playerID, fallback.Name(), spawn); err != nil {
			m.log.Warn("Не удалось эвакуировать игрока %s: %v", playerID, err)
			continue
		}
		evacuated++
	}
	m.log.Info("Эвакуировано %d/%d игроков из '%s' в '%s'", evacuated, len(players), w.Name(), fallback.Name())

	_ = eventbus.PublishPlayersEvacuated(ctx, eventbus.PlayersEvacuatedEvent{
		From:    w.Name(),
		To:      fallback.Name(),
		Players: evacuated,
	})
}

// finish публикует событие регенерации и возвращает результат
func (m *Manager) finish(ctx context.Context, out Outcome, wc WorldConfig, seed *int64) Outcome {
	ev := eventbus.WorldRegeneratedEvent{
		World:  wc.WorldName,
		OK:     out.OK,
		Reason: out.Reason,
	}
	if seed != nil {
		ev.NewSeed = *seed
	}
	_ = eventbus.PublishWorldRegenerated(ctx, ev)
	return out
}
