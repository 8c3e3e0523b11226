// Package postgres provides pgx-backed persistence for habits, daily logs,
// and the transactional outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/habits/internal/domain"
	"example.com/habits/internal/events"
	"example.com/habits/internal/observability"
)

// Repository implements domain.HabitRepository and domain.LogRepository on
// top of a pgx pool. Writes record outbox events in the same transaction as
// the mutation they describe.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const habitColumns = `habit_id, owner_id, name, category, target_type, target_value, is_active, created_at, updated_at`

// Create persists the habit and records a habit.created outbox event.
func (r *Repository) Create(ctx context.Context, habit domain.Habit) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insertHabit = `INSERT INTO habits (habit_id, owner_id, name, category, target_type, target_value, is_active, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, insertHabit,
		habit.ID,
		habit.OwnerID,
		habit.Name,
		habit.Category,
		habit.TargetType,
		habit.TargetValue,
		habit.IsActive,
		habit.CreatedAt,
		habit.UpdatedAt,
	)
	if err != nil {
		return err
	}

	dedupeKey := fmt.Sprintf("%s:habit.created", habit.ID)
	if err = insertOutbox(ctx, tx, "habit.created", habit.ID, habit.OwnerID, dedupeKey, events.HabitCreated{
		HabitID:     habit.ID,
		OwnerID:     habit.OwnerID,
		Name:        habit.Name,
		Category:    habit.Category,
		TargetType:  string(habit.TargetType),
		TargetValue: habit.TargetValue,
		CreatedAt:   habit.CreatedAt,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordHabitPersisted(habit.UpdatedAt)
	return nil
}

// Get retrieves a habit scoped by owner. Absent or foreign habits yield nil.
func (r *Repository) Get(ctx context.Context, ownerID, habitID string) (*domain.Habit, error) {
	const query = `SELECT ` + habitColumns + ` FROM habits WHERE owner_id=$1 AND habit_id=$2`

	row := r.pool.QueryRow(ctx, query, ownerID, habitID)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return habit, nil
}

// List returns the owner's habits ordered by creation time.
func (r *Repository) List(ctx context.Context, ownerID string, activeOnly bool) ([]domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE owner_id=$1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at, habit_id`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := make([]domain.Habit, 0)
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, *habit)
	}
	return habits, rows.Err()
}

// Deactivate flips the active flag off, leaving history untouched.
func (r *Repository) Deactivate(ctx context.Context, ownerID, habitID string) error {
	const stmt = `UPDATE habits SET is_active=FALSE, updated_at=NOW() WHERE owner_id=$1 AND habit_id=$2`

	tag, err := r.pool.Exec(ctx, stmt, ownerID, habitID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a habit only when it has no logs.
func (r *Repository) Delete(ctx context.Context, ownerID, habitID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var owned bool
	if err := tx.QueryRow(ctx, `SELECT TRUE FROM habits WHERE owner_id=$1 AND habit_id=$2 FOR UPDATE`, ownerID, habitID).Scan(&owned); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	var hasLogs bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM daily_logs WHERE habit_id=$1)`, habitID).Scan(&hasLogs); err != nil {
		return err
	}
	if hasLogs {
		return domain.ErrConflict
	}

	if _, err := tx.Exec(ctx, `DELETE FROM habits WHERE habit_id=$1`, habitID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const logColumns = `habit_id, owner_id, log_date, completed, progress, created_at, updated_at`

// Upsert stores the day's record, replacing any previous one, and records a
// habit.logged outbox event in the same transaction.
func (r *Repository) Upsert(ctx context.Context, record domain.DailyLog) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `INSERT INTO daily_logs (habit_id, owner_id, log_date, completed, progress, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (habit_id, log_date)
        DO UPDATE SET completed=EXCLUDED.completed, progress=EXCLUDED.progress, updated_at=EXCLUDED.updated_at`

	_, err = tx.Exec(ctx, stmt,
		record.HabitID,
		record.OwnerID,
		record.Date,
		record.Completed,
		record.Progress,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return err
	}

	// Replays of the same day produce distinct events; the final stored state
	// rides in the payload.
	dedupeKey := fmt.Sprintf("%s:%s:%d", record.HabitID, domain.FormatDate(record.Date), record.UpdatedAt.UnixNano())
	if err = insertOutbox(ctx, tx, "habit.logged", record.HabitID, record.OwnerID, dedupeKey, events.HabitLogged{
		HabitID:    record.HabitID,
		OwnerID:    record.OwnerID,
		Date:       domain.FormatDate(record.Date),
		Completed:  record.Completed,
		Progress:   record.Progress,
		OccurredAt: record.UpdatedAt,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordLogUpserted(record.UpdatedAt)
	return nil
}

// ListForDate returns all of the owner's records for one day.
func (r *Repository) ListForDate(ctx context.Context, ownerID string, date time.Time) ([]domain.DailyLog, error) {
	const query = `SELECT ` + logColumns + ` FROM daily_logs WHERE owner_id=$1 AND log_date=$2 ORDER BY habit_id`

	rows, err := r.pool.Query(ctx, query, ownerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLogs(rows)
}

// History returns one habit's records ordered by ascending date.
func (r *Repository) History(ctx context.Context, ownerID, habitID string, from, to time.Time) ([]domain.DailyLog, error) {
	query := `SELECT ` + logColumns + ` FROM daily_logs WHERE owner_id=$1 AND habit_id=$2`
	args := []interface{}{ownerID, habitID}

	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(` AND log_date >= $%d`, len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(` AND log_date <= $%d`, len(args))
	}
	query += ` ORDER BY log_date ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLogs(rows)
}

// HistoryPage returns one habit's records ordered by descending date.
func (r *Repository) HistoryPage(ctx context.Context, ownerID, habitID string, cursor *domain.Cursor, limit int) ([]domain.DailyLog, *domain.Cursor, error) {
	query := `SELECT ` + logColumns + ` FROM daily_logs WHERE owner_id=$1 AND habit_id=$2`
	args := []interface{}{ownerID, habitID}

	if cursor != nil {
		args = append(args, cursor.Date)
		query += fmt.Sprintf(` AND log_date < $%d`, len(args))
	}
	// Fetch one row past the page so a full final page gets no cursor.
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY log_date DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	records, err := collectLogs(rows)
	if err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if limit > 0 && len(records) > limit {
		records = records[:limit]
		next = &domain.Cursor{Date: records[len(records)-1].Date}
	}
	return records, next, nil
}

// CompletedCountsByDate aggregates completed records per day across all of
// the owner's habits, deactivated ones included.
func (r *Repository) CompletedCountsByDate(ctx context.Context, ownerID string, from, to time.Time) (map[time.Time]int, error) {
	const query = `SELECT log_date, COUNT(*) FROM daily_logs
        WHERE owner_id=$1 AND completed AND log_date BETWEEN $2 AND $3
        GROUP BY log_date`

	rows, err := r.pool.Query(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[time.Time]int)
	for rows.Next() {
		var (
			day   time.Time
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		counts[domain.DateOf(day)] = count
	}
	return counts, rows.Err()
}

func insertOutbox(ctx context.Context, tx pgx.Tx, eventType, aggregateID, partitionKey, dedupeKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[eventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	// Exact replays (same dedupe key) must not fail the surrounding mutation.
	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (dedupe_key) DO NOTHING`

	_, err = tx.Exec(ctx, stmt,
		"habit",
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		partitionKey,
		body,
		dedupeKey,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (*domain.Habit, error) {
	var habit domain.Habit
	if err := row.Scan(&habit.ID, &habit.OwnerID, &habit.Name, &habit.Category, &habit.TargetType, &habit.TargetValue, &habit.IsActive, &habit.CreatedAt, &habit.UpdatedAt); err != nil {
		return nil, err
	}
	return &habit, nil
}

func collectLogs(rows pgx.Rows) ([]domain.DailyLog, error) {
	records := make([]domain.DailyLog, 0)
	for rows.Next() {
		var record domain.DailyLog
		if err := rows.Scan(&record.HabitID, &record.OwnerID, &record.Date, &record.Completed, &record.Progress, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, err
		}
		record.Date = domain.DateOf(record.Date)
		records = append(records, record)
	}
	return records, rows.Err()
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"habit.created": {
		Topic:         "habit_events",
		SchemaSubject: "habit_events-value",
	},
	"habit.logged": {
		Topic:         "habit_log_events",
		SchemaSubject: "habit_log_events-value",
	},
}
