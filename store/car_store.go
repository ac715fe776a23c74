package store

import (
	"context"
	"database/sql"
	"fmt"

	"velocars/api/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// CarStore reads the rental catalog; reporting uses it to attach names to the
// car ids coming back from the event log.
type CarStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCarStore(db *sql.DB, logger *zap.Logger) *CarStore {
	return &CarStore{db: db, logger: logger}
}

var ErrCarNotFound = fmt.Errorf("car not found")

func (s *CarStore) GetCarByID(ctx context.Context, id string) (*models.Car, error) {
	car := &models.Car{}
	query := `
		SELECT id, name, brand, daily_rate, available, created_at
		FROM cars
		WHERE id = $1;
	`
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&car.ID,
		&car.Name,
		&car.Brand,
		&car.DailyRate,
		&car.Available,
		&car.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("failed to get car by id: %w", err)
	}
	return car, nil
}

// GetCarNames resolves a batch of car ids to display names. Ids with no catalog
// row are simply absent from the result; reporting shows the bare id then.
func (s *CarStore) GetCarNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM cars WHERE id = ANY($1);
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get car names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			s.logger.Warn("error scanning car name row", zap.Error(err))
			continue
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during car names query: %w", err)
	}
	return names, nil
}
