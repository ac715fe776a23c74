package store

import (
	"context"
	"fmt"
	"time"

	"velocars/api/database"
	"velocars/api/models"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// viewConn is the slice of the ClickHouse connection the store uses, narrowed
// so tests can stand in for the real connection.
type viewConn interface {
	Exec(ctx context.Context, query string, args ...interface{}) error
	Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row
}

// BounceThresholdSeconds labels short visits for reporting; it is not an error
// condition.
const BounceThresholdSeconds = 10

// IsBounce labels a visit shorter than the threshold. Ten seconds exactly is
// not a bounce.
func IsBounce(durationSeconds int64) bool {
	return durationSeconds < BounceThresholdSeconds
}

// AnalyticsStore owns the view-event log in ClickHouse. Page views are
// append-mostly: the single mutation is the duration back-fill, applied as a
// lightweight ALTER UPDATE (ClickHouse applies it asynchronously, which is fine
// for a last-write-wins field).
type AnalyticsStore struct {
	conn   viewConn
	logger *zap.Logger
}

func NewAnalyticsStore(chClient *database.ClickHouseClient, logger *zap.Logger) *AnalyticsStore {
	return &AnalyticsStore{conn: chClient.Conn, logger: logger}
}

// InsertPageView appends one page-view row and returns its id so the client can
// attach a duration later.
func (s *AnalyticsStore) InsertPageView(ctx context.Context, view *models.PageView) (string, error) {
	if view.PagePath == "" {
		return "", fmt.Errorf("page path is required")
	}
	if view.ID == "" {
		view.ID = uuid.New().String()
	}
	if view.Timestamp.IsZero() {
		view.Timestamp = time.Now().UTC()
	}

	err := s.conn.Exec(ctx, `
		INSERT INTO page_views (
			id, page_path, page_title, session_id, user_id, referrer, ip_address, user_agent,
			device_type, browser, os, country, city, region, duration, is_bounce, exit_type, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		view.ID,
		view.PagePath,
		view.PageTitle,
		view.SessionID,
		view.UserID,
		view.Referrer,
		view.IPAddress,
		view.UserAgent,
		view.DeviceType,
		view.Browser,
		view.OS,
		view.Country,
		view.City,
		view.Region,
		view.Duration,
		view.IsBounce,
		view.ExitType,
		view.Timestamp,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert page view: %w", err)
	}

	return view.ID, nil
}

// InsertCarView appends one car-view row.
func (s *AnalyticsStore) InsertCarView(ctx context.Context, view *models.CarView) error {
	if view.CarID == "" {
		return fmt.Errorf("car id is required")
	}
	if view.ID == "" {
		view.ID = uuid.New().String()
	}
	if view.Timestamp.IsZero() {
		view.Timestamp = time.Now().UTC()
	}

	err := s.conn.Exec(ctx, `
		INSERT INTO car_views (
			id, car_id, session_id, user_id, ip_address, user_agent,
			device_type, browser, os, country, city, region, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		view.ID,
		view.CarID,
		view.SessionID,
		view.UserID,
		view.IPAddress,
		view.UserAgent,
		view.DeviceType,
		view.Browser,
		view.OS,
		view.Country,
		view.City,
		view.Region,
		view.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert car view: %w", err)
	}

	return nil
}

// BackfillDuration attaches the dwell time to an existing page view. Matching
// order: explicit id from creation, then the most recent (session, path) row.
// When neither matches, a duration-only row is inserted so the measurement is
// never dropped.
func (s *AnalyticsStore) BackfillDuration(ctx context.Context, req *models.PageDurationRequest) error {
	duration := int64(*req.Duration)
	isBounce := IsBounce(duration)

	if req.PageViewID != "" {
		return s.mutateDuration(ctx, req.PageViewID, duration, isBounce, req.ExitType)
	}

	if req.SessionID != "" && req.PagePath != "" {
		id := s.findRecentPageView(ctx, req.SessionID, req.PagePath)
		if id != "" {
			return s.mutateDuration(ctx, id, duration, isBounce, req.ExitType)
		}
	}

	view := &models.PageView{
		PagePath:  req.PagePath,
		PageTitle: req.PageTitle,
		SessionID: req.SessionID,
		Duration:  duration,
		IsBounce:  isBounce,
		ExitType:  req.ExitType,
		Timestamp: time.Now().UTC(),
	}
	if _, err := s.InsertPageView(ctx, view); err != nil {
		return fmt.Errorf("failed to insert duration-only page view: %w", err)
	}
	return nil
}

func (s *AnalyticsStore) mutateDuration(ctx context.Context, id string, duration int64, isBounce bool, exitType string) error {
	err := s.conn.Exec(ctx, `
		ALTER TABLE page_views UPDATE duration = ?, is_bounce = ?, exit_type = ? WHERE id = ?
	`, duration, isBounce, exitType, id)
	if err != nil {
		return fmt.Errorf("failed to update page view duration: %w", err)
	}
	return nil
}

// findRecentPageView returns the id of the newest row for (session, path), or
// "" when there is none. Lookup errors degrade to "not found": the caller then
// falls back to the duration-only insert.
func (s *AnalyticsStore) findRecentPageView(ctx context.Context, sessionID, pagePath string) string {
	var id string
	err := s.conn.QueryRow(ctx, `
		SELECT id FROM page_views
		WHERE session_id = ? AND page_path = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`, sessionID, pagePath).Scan(&id)
	if err != nil {
		s.logger.Warn("no matching page view for duration back-fill",
			zap.String("session_id", sessionID),
			zap.String("page_path", pagePath),
			zap.Error(err),
		)
		return ""
	}
	return id
}

// PageViewStats aggregates the trailing window for one page, or for all pages
// when pagePath is empty. The daily series is dense: exactly `days` buckets.
func (s *AnalyticsStore) PageViewStats(ctx context.Context, pagePath string, days int) (*models.ViewStats, error) {
	return s.viewStats(ctx, "page_views", "page_path", pagePath, days)
}

// CarViewStats is PageViewStats over the car-view log, filtered by car id.
func (s *AnalyticsStore) CarViewStats(ctx context.Context, carID string, days int) (*models.ViewStats, error) {
	return s.viewStats(ctx, "car_views", "car_id", carID, days)
}

func (s *AnalyticsStore) viewStats(ctx context.Context, table, filterCol, filterVal string, days int) (*models.ViewStats, error) {
	end := time.Now().UTC()
	start := windowStart(end, days)

	where := "WHERE timestamp >= ? AND timestamp <= ?"
	args := []interface{}{start, end}
	if filterVal != "" {
		where += fmt.Sprintf(" AND %s = ?", filterCol)
		args = append(args, filterVal)
	}

	stats := &models.ViewStats{}

	totalsQuery := fmt.Sprintf(`SELECT count() AS total, uniq(session_id) AS uniques FROM %s %s`, table, where)
	if err := s.conn.QueryRow(ctx, totalsQuery, args...).Scan(&stats.TotalViews, &stats.UniqueSessions); err != nil {
		return nil, fmt.Errorf("failed to query view totals: %w", err)
	}

	dailyQuery := fmt.Sprintf(`
		SELECT toDate(timestamp) AS day, count() AS views
		FROM %s
		%s
		GROUP BY day
		ORDER BY day ASC
	`, table, where)
	rows, err := s.conn.Query(ctx, dailyQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily view counts: %w", err)
	}
	defer rows.Close()

	sparse := make(map[string]uint64)
	for rows.Next() {
		var day time.Time
		var count uint64
		if err := rows.Scan(&day, &count); err != nil {
			s.logger.Warn("error scanning daily view count row", zap.Error(err))
			continue
		}
		sparse[day.Format("2006-01-02")] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during daily view counts query: %w", err)
	}

	stats.Daily = FillDailySeries(end, days, sparse)
	return stats, nil
}

// TopPages returns the most viewed page paths in the trailing window.
func (s *AnalyticsStore) TopPages(ctx context.Context, days int, limit uint64) ([]models.TopPage, error) {
	if limit == 0 {
		limit = 10
	}
	end := time.Now().UTC()

	rows, err := s.conn.Query(ctx, `
		SELECT page_path, count() AS views
		FROM page_views
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY page_path
		ORDER BY views DESC
		LIMIT ?
	`, windowStart(end, days), end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top pages: %w", err)
	}
	defer rows.Close()

	var results []models.TopPage
	for rows.Next() {
		var r models.TopPage
		if err := rows.Scan(&r.PagePath, &r.Views); err != nil {
			s.logger.Warn("error scanning top page row", zap.Error(err))
			continue
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during top pages query: %w", err)
	}
	return results, nil
}

// TopCars returns the most viewed car ids in the trailing window. Car names are
// resolved from the catalog by the caller.
func (s *AnalyticsStore) TopCars(ctx context.Context, days int, limit uint64) ([]models.TopCar, error) {
	if limit == 0 {
		limit = 10
	}
	end := time.Now().UTC()

	rows, err := s.conn.Query(ctx, `
		SELECT car_id, count() AS views
		FROM car_views
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY car_id
		ORDER BY views DESC
		LIMIT ?
	`, windowStart(end, days), end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top cars: %w", err)
	}
	defer rows.Close()

	var results []models.TopCar
	for rows.Next() {
		var r models.TopCar
		if err := rows.Scan(&r.CarID, &r.Views); err != nil {
			s.logger.Warn("error scanning top car row", zap.Error(err))
			continue
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during top cars query: %w", err)
	}
	return results, nil
}

// DeviceBreakdown counts page views per device type in the trailing window.
func (s *AnalyticsStore) DeviceBreakdown(ctx context.Context, days int) ([]models.BucketCount, error) {
	end := time.Now().UTC()
	return s.bucketCounts(ctx, `
		SELECT if(device_type = '', 'unknown', device_type) AS label, count() AS views
		FROM page_views
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY label
		ORDER BY views DESC
	`, windowStart(end, days), end)
}

// LocationBreakdown counts page views per country in the trailing window.
func (s *AnalyticsStore) LocationBreakdown(ctx context.Context, days int, limit uint64) ([]models.BucketCount, error) {
	if limit == 0 {
		limit = 10
	}
	end := time.Now().UTC()
	return s.bucketCounts(ctx, `
		SELECT if(country = '', 'Unknown', country) AS label, count() AS views
		FROM page_views
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY label
		ORDER BY views DESC
		LIMIT ?
	`, windowStart(end, days), end, limit)
}

func (s *AnalyticsStore) bucketCounts(ctx context.Context, query string, args ...interface{}) ([]models.BucketCount, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query breakdown: %w", err)
	}
	defer rows.Close()

	var results []models.BucketCount
	for rows.Next() {
		var r models.BucketCount
		if err := rows.Scan(&r.Label, &r.Count); err != nil {
			s.logger.Warn("error scanning breakdown row", zap.Error(err))
			continue
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during breakdown query: %w", err)
	}
	return results, nil
}

// windowStart is midnight UTC of the first day of a trailing window that ends
// at `end` and spans `days` calendar days inclusive.
func windowStart(end time.Time, days int) time.Time {
	day := end.UTC().AddDate(0, 0, -(days - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}
