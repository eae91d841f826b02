package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// DeleteWorldData удаляет директорию мира под корнем контейнера целиком.
// Отсутствующая директория ошибкой не считается.
func DeleteWorldData(containerRoot, worldName string) error {
	if worldName == "" {
		return fmt.Errorf("пустое имя мира")
	}
	return DeleteTree(filepath.Join(containerRoot, worldName))
}

// DeleteTree удаляет дерево директорий в post-order обходе:
// сначала все дочерние элементы, затем сама директория.
// Первая же неудача прерывает обход; частично удалённое состояние
// остаётся на диске как есть.
func DeleteTree(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать %s: %w", path, err)
	}

	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("не удалось перечислить %s: %w", path, err)
		}
		for _, entry := range entries {
			if err := DeleteTree(filepath.Join(path, entry.Name())); err != nil {
				return err
			}
		}
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("не удалось удалить %s: %w", path, err)
	}
	return nil
}
