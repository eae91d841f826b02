package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/annel0/afterlife-world/internal/vec"
	_ "github.com/go-sql-driver/mysql"
)

// MariaPositionRepo реализует PositionRepo для базы данных MariaDB/MySQL.
// Использует таблицу afterlife_positions для хранения позиций игроков.
type MariaPositionRepo struct {
	db *sql.DB
}

// NewMariaPositionRepo создает новый репозиторий позиций для MariaDB.
// Автоматически создает таблицу, если она не существует.
//
// Параметры:
//
//	dsn - строка подключения к базе данных (user:pass@tcp(host:port)/dbname)
func NewMariaPositionRepo(dsn string) (*MariaPositionRepo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	repo := &MariaPositionRepo{db: db}

	// Создаем таблицу, если она не существует
	if err := repo.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}

	return repo, nil
}

// createTable создает таблицу afterlife_positions, если она не существует
func (r *MariaPositionRepo) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS afterlife_positions (
			player_id  VARCHAR(36)  PRIMARY KEY,
			world      VARCHAR(64)  NOT NULL,
			x          DOUBLE       NOT NULL,
			y          DOUBLE       NOT NULL,
			z          DOUBLE       NOT NULL,
			updated_at TIMESTAMP    DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE    CURRENT_TIMESTAMP,
			INDEX idx_world (world),
			INDEX idx_updated_at (updated_at)
		) ENGINE=InnoDB
	`

	_, err := r.db.Exec(query)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы afterlife_positions: %w", err)
	}

	return nil
}

// Save сохраняет позицию игрока в базе данных.
// Использует INSERT ... ON DUPLICATE KEY UPDATE для обновления существующих записей.
func (r *MariaPositionRepo) Save(ctx context.Context, playerID, worldName string, pos vec.Vec3Float) error {
	if playerID == "" {
		return fmt.Errorf("пустой playerID")
	}
	if worldName == "" {
		return fmt.Errorf("пустое имя мира для игрока %s", playerID)
	}

	query := `
		INSERT INTO afterlife_positions (player_id, world, x, y, z)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			world = VALUES(world),
			x = VALUES(x),
			y = VALUES(y),
			z = VALUES(z),
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query, playerID, worldName, pos.X, pos.Y, pos.Z)
	if err != nil {
		return fmt.Errorf("ошибка сохранения позиции для игрока %s: %w", playerID, err)
	}

	return nil
}

// Load загружает позицию игрока из базы данных
func (r *MariaPositionRepo) Load(ctx context.Context, playerID string) (PlayerPosition, bool, error) {
	if playerID == "" {
		return PlayerPosition{}, false, fmt.Errorf("пустой playerID")
	}

	query := `SELECT world, x, y, z, updated_at FROM afterlife_positions WHERE player_id = ?`

	var record PlayerPosition
	record.PlayerID = playerID
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&record.World, &record.Pos.X, &record.Pos.Y, &record.Pos.Z, &record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return PlayerPosition{}, false, nil
	}
	if err != nil {
		return PlayerPosition{}, false, fmt.Errorf("ошибка загрузки позиции для игрока %s: %w", playerID, err)
	}

	return record, true, nil
}

// Delete удаляет сохраненную позицию игрока
func (r *MariaPositionRepo) Delete(ctx context.Context, playerID string) error {
	if playerID == "" {
		return fmt.Errorf("пустой playerID")
	}

	query := `DELETE FROM afterlife_positions WHERE player_id = ?`
	_, err := r.db.ExecContext(ctx, query, playerID)
	if err != nil {
		return fmt.Errorf("ошибка удаления позиции для игрока %s: %w", playerID, err)
	}

	return nil
}

// BatchSave сохраняет позиции нескольких игроков в транзакции
func (r *MariaPositionRepo) BatchSave(ctx context.Context, positions []PlayerPosition) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO afterlife_positions (player_id, world, x, y, z)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			world = VALUES(world),
			x = VALUES(x),
			y = VALUES(y),
			z = VALUES(z),
			updated_at = CURRENT_TIMESTAMP
	`

	for _, pos := range positions {
		if pos.PlayerID == "" {
			return fmt.Errorf("пустой playerID в batch")
		}
		if _, err := tx.ExecContext(ctx, query, pos.PlayerID, pos.World, pos.Pos.X, pos.Pos.Y, pos.Pos.Z); err != nil {
			return fmt.Errorf("ошибка batch-сохранения для игрока %s: %w", pos.PlayerID, err)
		}
	}

	return tx.Commit()
}

// Close закрывает подключение к базе данных
func (r *MariaPositionRepo) Close() error {
	return r.db.Close()
}
