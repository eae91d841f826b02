package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWorldTree(t *testing.T, root, name string) string {
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "region", "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "level.dat"), []byte("meta"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "region", "r.0.0"), []byte("chunks"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "region", "sub", "r.1.1"), []byte("chunks"), 0644))
	return dir
}

func TestDeleteWorldData(t *testing.T) {
	root := t.TempDir()
	dir := makeWorldTree(t, root, "afterlife")

	err := DeleteWorldData(root, "afterlife")
	require.NoError(t, err, "Удаление существующего мира должно проходить без ошибок")

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "Директория мира должна быть удалена целиком")

	// Корень контейнера остаётся на месте
	_, statErr = os.Stat(root)
	assert.NoError(t, statErr, "Корень контейнера не должен удаляться")
}

func TestDeleteWorldData_Missing(t *testing.T) {
	root := t.TempDir()

	// Отсутствующая директория — не ошибка
	err := DeleteWorldData(root, "ghost")
	assert.NoError(t, err, "Удаление несуществующего мира не должно возвращать ошибку")
}

func TestDeleteWorldData_EmptyName(t *testing.T) {
	err := DeleteWorldData(t.TempDir(), "")
	assert.Error(t, err, "Пустое имя мира должно отклоняться")
}

func TestDeleteTree_AbortsOnFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("права доступа работают иначе на Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("root игнорирует права доступа")
	}

	root := t.TempDir()
	dir := makeWorldTree(t, root, "afterlife")

	// Запрещаем запись в поддиректорию: удаление её содержимого должно упасть
	locked := filepath.Join(dir, "region")
	require.NoError(t, os.Chmod(locked, 0555))
	defer os.Chmod(locked, 0755)

	err := DeleteTree(dir)
	assert.Error(t, err, "Первая же неудача должна прерывать обход")

	// Директория мира не удалена: post-order не дошёл до корня
	_, statErr := os.Stat(dir)
	assert.NoError(t, statErr, "Корневая директория мира должна остаться при частичном удалении")
}
