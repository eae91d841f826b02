package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/afterlife-world/internal/vec"
	"github.com/annel0/afterlife-world/internal/world/block"
)

func setupTestStorage(t *testing.T) (*WorldStorage, string) {
	// Создаем временную директорию контейнера миров
	tempDir, err := os.MkdirTemp("", "world-storage-test")
	if err != nil {
		t.Fatalf("Не удалось создать временную директорию: %v", err)
	}

	storage, err := NewWorldStorage(tempDir, "afterlife")
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Не удалось создать хранилище: %v", err)
	}

	return storage, tempDir
}

func cleanupTestStorage(storage *WorldStorage, tempDir string) {
	if storage != nil {
		storage.Close()
	}
	if tempDir != "" {
		os.RemoveAll(tempDir)
	}
}

func TestStoragePath(t *testing.T) {
	storage, tempDir := setupTestStorage(t)
	defer cleanupTestStorage(storage, tempDir)

	// Директория мира должна лежать под корнем контейнера и называться как мир
	expected := filepath.Join(tempDir, "afterlife")
	if storage.Path() != expected {
		t.Errorf("Неверный путь хранилища: %s, ожидалось %s", storage.Path(), expected)
	}

	if _, err := os.Stat(expected); err != nil {
		t.Errorf("Директория мира должна существовать после открытия: %v", err)
	}
}

func TestSaveAndLoadChunkDelta(t *testing.T) {
	storage, tempDir := setupTestStorage(t)
	defer cleanupTestStorage(storage, tempDir)

	coords := vec.Vec2{X: 10, Z: 20}
	delta := &ChunkDelta{
		Coords: coords,
		Blocks: map[string]block.BlockID{
			"5:64:5": block.StoneBlockID,
			"8:70:3": block.DirtBlockID,
		},
	}

	if err := storage.SaveChunkDelta(delta); err != nil {
		t.Fatalf("Ошибка сохранения дельты: %v", err)
	}

	loaded, err := storage.LoadChunkDelta(coords)
	if err != nil {
		t.Fatalf("Ошибка загрузки дельты: %v", err)
	}

	if loaded.Coords != coords {
		t.Errorf("Неверные координаты дельты: %v, ожидалось %v", loaded.Coords, coords)
	}
	if len(loaded.Blocks) != 2 {
		t.Errorf("Неверное количество изменений: %d, ожидалось 2", len(loaded.Blocks))
	}
	if loaded.Blocks["5:64:5"] != block.StoneBlockID {
		t.Errorf("Неверный ID блока: %d, ожидался %d", loaded.Blocks["5:64:5"], block.StoneBlockID)
	}
}

func TestLoadNonExistentChunkDelta(t *testing.T) {
	storage, tempDir := setupTestStorage(t)
	defer cleanupTestStorage(storage, tempDir)

	coords := vec.Vec2{X: 99, Z: 99}
	delta, err := storage.LoadChunkDelta(coords)

	// Ошибки не должно быть, просто пустая дельта
	if err != nil {
		t.Fatalf("Ошибка при загрузке несуществующей дельты: %v", err)
	}
	if delta.Coords != coords {
		t.Errorf("Неверные координаты дельты: %v, ожидалось %v", delta.Coords, coords)
	}
	if len(delta.Blocks) != 0 {
		t.Errorf("Дельта должна быть пустой, найдено %d изменений", len(delta.Blocks))
	}
}

func TestSaveAndLoadWorldMeta(t *testing.T) {
	storage, tempDir := setupTestStorage(t)
	defer cleanupTestStorage(storage, tempDir)

	// Метаданных нет при первом создании
	_, found, err := storage.LoadWorldMeta()
	if err != nil {
		t.Fatalf("Ошибка чтения метаданных: %v", err)
	}
	if found {
		t.Error("Метаданные не должны существовать для нового мира")
	}

	meta := &WorldMeta{
		Name:        "afterlife",
		Environment: "NORMAL",
		Generator:   "default",
		Seed:        424242,
	}
	if err := storage.SaveWorldMeta(meta); err != nil {
		t.Fatalf("Ошибка сохранения метаданных: %v", err)
	}

	loaded, found, err := storage.LoadWorldMeta()
	if err != nil {
		t.Fatalf("Ошибка чтения метаданных: %v", err)
	}
	if !found {
		t.Fatal("Метаданные должны быть найдены после сохранения")
	}
	if loaded.Seed != 424242 {
		t.Errorf("Неверный сид: %d, ожидалось 424242", loaded.Seed)
	}
	if loaded.Environment != "NORMAL" {
		t.Errorf("Неверное окружение: %s", loaded.Environment)
	}
}

func TestStorageNotReadyAfterClose(t *testing.T) {
	storage, tempDir := setupTestStorage(t)
	defer os.RemoveAll(tempDir)

	if err := storage.Close(); err != nil {
		t.Fatalf("Ошибка закрытия хранилища: %v", err)
	}

	// Повторное закрытие безопасно
	if err := storage.Close(); err != nil {
		t.Errorf("Повторное закрытие не должно возвращать ошибку: %v", err)
	}

	// Операции над закрытым хранилищем должны возвращать ошибку
	if err := storage.SaveChunkDelta(&ChunkDelta{Coords: vec.Vec2{}, Blocks: map[string]block.BlockID{"0:0:0": 1}}); err == nil {
		t.Error("Сохранение в закрытое хранилище должно возвращать ошибку")
	}
	if _, err := storage.LoadChunkDelta(vec.Vec2{}); err == nil {
		t.Error("Чтение из закрытого хранилища должно возвращать ошибку")
	}
}
