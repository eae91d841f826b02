package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store — read-only хранилище конфигурации вида ключ/значение.
// Ключи записываются через точку ("afterlife.world-name"), значения
// читаются типизированными геттерами с дефолтами.
//
// Приоритет значений: файл конфигурации -> переменная окружения -> дефолт.
// Переменная окружения образуется из ключа: "afterlife.border-size"
// -> AFTERLIFE_BORDER_SIZE.
type Store struct {
	values map[string]interface{}
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV AFTERLIFE_CONFIG;
// если и он пуст — возвращает пустой Store (работают дефолты).
func Load(path string) (*Store, error) {
	if path == "" {
		path = os.Getenv("AFTERLIFE_CONFIG")
		if path == "" {
			return NewStore(nil), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфигурацию %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("не удалось разобрать конфигурацию %s: %w", path, err)
	}

	return NewStore(raw), nil
}

// NewStore создаёт Store из вложенной карты (для тестов и дефолтных конфигураций)
func NewStore(raw map[string]interface{}) *Store {
	s := &Store{values: make(map[string]interface{})}
	s.flatten("", raw)
	return s
}

// flatten разворачивает вложенные секции YAML в плоские ключи через точку
func (s *Store) flatten(prefix string, node map[string]interface{}) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]interface{}:
			s.flatten(full, v)
		default:
			s.values[full] = value
		}
	}
}

// Has сообщает, задан ли ключ явно (в файле или в окружении)
func (s *Store) Has(key string) bool {
	if _, ok := s.values[key]; ok {
		return true
	}
	return os.Getenv(envName(key)) != ""
}

// GetString возвращает строковое значение ключа или дефолт
func (s *Store) GetString(key, def string) string {
	if v, ok := s.values[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	if env := os.Getenv(envName(key)); env != "" {
		return env
	}
	return def
}

// GetInt возвращает целочисленное значение ключа или дефолт
func (s *Store) GetInt(key string, def int) int {
	if v, ok := s.values[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		case string:
			if parsed, err := strconv.Atoi(n); err == nil {
				return parsed
			}
		}
		return def
	}
	if env := os.Getenv(envName(key)); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil {
			return parsed
		}
	}
	return def
}

// GetInt64 возвращает значение ключа как int64 или дефолт (для сидов)
func (s *Store) GetInt64(key string, def int64) int64 {
	if v, ok := s.values[key]; ok {
		switch n := v.(type) {
		case int:
			return int64(n)
		case int64:
			return n
		case float64:
			return int64(n)
		case string:
			if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
				return parsed
			}
		}
		return def
	}
	if env := os.Getenv(envName(key)); env != "" {
		if parsed, err := strconv.ParseInt(env, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

// GetBool возвращает булево значение ключа или дефолт
func (s *Store) GetBool(key string, def bool) bool {
	if v, ok := s.values[key]; ok {
		switch b := v.(type) {
		case bool:
			return b
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return parsed
			}
		}
		return def
	}
	if env := os.Getenv(envName(key)); env != "" {
		if parsed, err := strconv.ParseBool(env); err == nil {
			return parsed
		}
	}
	return def
}

// envName преобразует ключ конфигурации в имя переменной окружения
func envName(key string) string {
	upper := strings.ToUpper(key)
	return strings.NewReplacer(".", "_", "-", "_").Replace(upper)
}
