package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/annel0/afterlife-world/internal/vec"
	"github.com/annel0/afterlife-world/internal/world/block"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// WorldStorage представляет собой хранилище данных одного мира.
// Каждый мир получает собственную директорию BadgerDB
// <корень контейнера>/<имя мира>; регенерация удаляет её целиком.
type WorldStorage struct {
	db      *badger.DB
	dbPath  string
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	mutex   sync.RWMutex
	isReady bool
}

// ChunkDelta содержит точечные изменения блоков в чанке
type ChunkDelta struct {
	Coords vec.Vec2                 `json:"coords"`
	Blocks map[string]block.BlockID `json:"blocks"` // Ключ - упакованные локальные координаты "x:y:z"
}

// WorldMeta содержит метаданные мира, переживающие перезапуск сервера
type WorldMeta struct {
	Name        string    `json:"name"`
	Environment string    `json:"environment"`
	Generator   string    `json:"generator"`
	Seed        int64     `json:"seed"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewWorldStorage открывает (или создаёт) хранилище мира в директории
// <containerRoot>/<worldName>
func NewWorldStorage(containerRoot, worldName string) (*WorldStorage, error) {
	if worldName == "" {
		return nil, fmt.Errorf("пустое имя мира")
	}

	dbPath := filepath.Join(containerRoot, worldName)
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd-кодировщик: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd-декодировщик: %w", err)
	}

	return &WorldStorage{
		db:      db,
		dbPath:  dbPath,
		enc:     enc,
		dec:     dec,
		isReady: true,
	}, nil
}

// Path возвращает директорию хранилища на диске
func (ws *WorldStorage) Path() string {
	return ws.dbPath
}

// Close закрывает хранилище данных
func (ws *WorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	return ws.db.Close()
}

// SaveChunkDelta сохраняет изменения чанка (JSON, сжатый zstd)
func (ws *WorldStorage) SaveChunkDelta(delta *ChunkDelta) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	if delta == nil || len(delta.Blocks) == 0 {
		return nil // Нечего сохранять
	}

	data, err := json.Marshal(delta)
	if err != nil {
		return fmt.Errorf("ошибка сериализации дельты: %w", err)
	}
	compressed := ws.enc.EncodeAll(data, nil)

	key := fmt.Sprintf("chunk:%d:%d", delta.Coords.X, delta.Coords.Z)
	err = ws.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), compressed)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	return nil
}

// LoadChunkDelta загружает дельту чанка.
// Для несохранённого чанка возвращает пустую дельту без ошибки.
func (ws *WorldStorage) LoadChunkDelta(coords vec.Vec2) (*ChunkDelta, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	key := fmt.Sprintf("chunk:%d:%d", coords.X, coords.Z)
	var compressed []byte

	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			compressed = append([]byte{}, val...)
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return &ChunkDelta{
			Coords: coords,
			Blocks: make(map[string]block.BlockID),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	data, err := ws.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки дельты: %w", err)
	}

	var delta ChunkDelta
	if err := json.Unmarshal(data, &delta); err != nil {
		return nil, fmt.Errorf("ошибка десериализации дельты: %w", err)
	}

	return &delta, nil
}

// SaveWorldMeta сохраняет метаданные мира
func (ws *WorldStorage) SaveWorldMeta(meta *WorldMeta) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("ошибка сериализации метаданных: %w", err)
	}

	err = ws.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("meta"), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения метаданных: %w", err)
	}

	return nil
}

// LoadWorldMeta загружает метаданные мира.
// Второй результат false означает, что мир создаётся впервые.
func (ws *WorldStorage) LoadWorldMeta() (*WorldMeta, bool, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, false, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("meta"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения метаданных: %w", err)
	}

	var meta WorldMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, false, fmt.Errorf("ошибка десериализации метаданных: %w", err)
	}

	return &meta, true, nil
}
