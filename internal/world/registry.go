package world

import (
	"fmt"
	"sync"
	"time"

	"github.com/annel0/afterlife-world/internal/logging"
	"github.com/annel0/afterlife-world/internal/storage"
	"github.com/annel0/afterlife-world/internal/vec"
)

// CreateOptions задают параметры создания мира.
// Если мир уже существует на диске, его сохранённые метаданные
// имеют приоритет над опциями.
type CreateOptions struct {
	Environment Environment
	Generator   string // Режим генератора; пусто == GeneratorDefault
	Seed        *int64 // nil == сид по умолчанию (0)
}

// Registry держит загруженные миры сервера.
// Миры перечисляются в порядке создания: первый — главный мир сервера.
type Registry struct {
	mu          sync.RWMutex
	worlds      map[string]*World
	order       []string
	storageRoot string
	log         *logging.Logger
}

// NewRegistry создаёт реестр миров с контейнером хранилищ в storageRoot
func NewRegistry(storageRoot string) *Registry {
	return &Registry{
		worlds:      make(map[string]*World),
		order:       make([]string, 0),
		storageRoot: storageRoot,
		log:         logging.GetWorldLogger(),
	}
}

// StorageRoot возвращает корень контейнера хранилищ миров
func (r *Registry) StorageRoot() string {
	return r.storageRoot
}

// Find возвращает загруженный мир по имени или nil
func (r *Registry) Find(name string) *World {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.worlds[name]
}

// All возвращает загруженные миры в порядке создания
func (r *Registry) All() []*World {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*World, 0, len(r.order))
	for _, name := range r.order {
		if w, ok := r.worlds[name]; ok {
			out = append(out, w)
		}
	}
	return out
}

// Create загружает мир с диска или создаёт новый.
// Повторный вызов для уже загруженного мира возвращает его же.
func (r *Registry) Create(name string, opts CreateOptions) (*World, error) {
	if name == "" {
		return nil, fmt.Errorf("пустое имя мира")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.worlds[name]; ok {
		return w, nil
	}

	ws, err := storage.NewWorldStorage(r.storageRoot, name)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия хранилища мира %s: %w", name, err)
	}

	env := opts.Environment
	genMode := opts.Generator
	if genMode == "" {
		genMode = GeneratorDefault
	}
	var seed int64
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	createdAt := time.Now()

	// Существующий мир восстанавливается со своими метаданными
	meta, found, err := ws.LoadWorldMeta()
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("ошибка чтения метаданных мира %s: %w", name, err)
	}
	if found {
		env = ParseEnvironment(meta.Environment)
		genMode = meta.Generator
		seed = meta.Seed
		createdAt = meta.CreatedAt
		r.log.Info("Мир '%s' загружен с диска (env=%s, generator=%s, seed=%d)",
			name, env, genMode, seed)
	} else {
		r.log.Info("Мир '%s' создаётся заново (env=%s, generator=%s, seed=%d)",
			name, env, genMode, seed)
	}

	w := &World{
		name:      name,
		env:       env,
		seed:      seed,
		genMode:   genMode,
		generator: NewTerrainGenerator(genMode, seed, env),
		maxHeight: env.MaxHeight(),
		createdAt: createdAt,
		chunks:    make(map[vec.Vec2]*Chunk),
		storage:   ws,
		rules:     make(map[string]bool),
	}

	// Естественный спавн: центр колонки (0, 0) над поверхностью
	surface, err := w.SurfaceHeightAt(vec.Vec2{X: 0, Z: 0})
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("ошибка генерации спавн-чанка мира %s: %w", name, err)
	}
	w.spawn = vec.Vec3Float{X: 0.5, Y: float64(surface + 1), Z: 0.5}

	if !found {
		if err := w.Save(); err != nil {
			ws.Close()
			return nil, fmt.Errorf("ошибка сохранения метаданных мира %s: %w", name, err)
		}
	}

	r.worlds[name] = w
	r.order = append(r.order, name)
	return w, nil
}

// Unload выгружает мир из реестра, опционально сохраняя его.
// Возвращает false, если мир удержан или не зарегистрирован —
// в этом случае мир остаётся загруженным.
func (r *Registry) Unload(w *World, save bool) bool {
	if w == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.worlds[w.name] != w {
		r.log.Warn("Попытка выгрузить незарегистрированный мир '%s'", w.name)
		return false
	}
	if w.Retained() {
		r.log.Warn("Мир '%s' удержан, выгрузка отклонена", w.name)
		return false
	}

	if save {
		if err := w.Save(); err != nil {
			r.log.Error("Ошибка сохранения мира '%s' при выгрузке: %v", w.name, err)
			return false
		}
	}
	if w.storage != nil {
		if err := w.storage.Close(); err != nil {
			r.log.Error("Ошибка закрытия хранилища мира '%s': %v", w.name, err)
			return false
		}
	}

	delete(r.worlds, w.name)
	for i, n := range r.order {
		if n == w.name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.log.Info("Мир '%s' выгружен", w.name)
	return true
}

// CloseAll сохраняет и выгружает все миры (остановка сервера)
func (r *Registry) CloseAll() {
	for _, w := range r.All() {
		if err := w.Save(); err != nil {
			r.log.Error("Ошибка сохранения мира '%s': %v", w.Name(), err)
		}
		if w.storage != nil {
			if err := w.storage.Close(); err != nil {
				r.log.Error("Ошибка закрытия хранилища мира '%s': %v", w.Name(), err)
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.worlds = make(map[string]*World)
	r.order = r.order[:0]
}
