package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrEditNotFound is returned when no edit has the requested ID.
var ErrEditNotFound = errors.New("edit not found")

// EditStatus is the lifecycle state stored for an edit.
type EditStatus string

// Edit statuses.
const (
	EditStatusQueued    EditStatus = "queued"
	EditStatusRunning   EditStatus = "running"
	EditStatusCompleted EditStatus = "completed"
	EditStatusFailed    EditStatus = "failed"
	EditStatusCancelled EditStatus = "cancelled"
)

// Terminal reports whether the status is final.
func (s EditStatus) Terminal() bool {
	return s == EditStatusCompleted || s == EditStatusFailed || s == EditStatusCancelled
}

// EditRecord is one row of the edit history.
type EditRecord struct {
	ID          string     `json:"id"`
	InputPath   string     `json:"inputPath"`
	OutputPath  string     `json:"outputPath"`
	Status      EditStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	Warning     string     `json:"warning,omitempty"`
	PublishPath string     `json:"publishPath,omitempty"`
	DurationMs  int64      `json:"durationMs,omitempty"`
	FileSize    int64      `json:"fileSize,omitempty"`
	VideoCodec  string     `json:"videoCodec,omitempty"`
	AudioCodec  string     `json:"audioCodec,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

// EditOutcome is what FinishEdit stores for a terminal edit.
type EditOutcome struct {
	Status      EditStatus
	Error       string
	Warning     string
	PublishPath string
	DurationMs  int64
	FileSize    int64
	VideoCodec  string
	AudioCodec  string
	FinishedAt  time.Time
}

// InsertEdit records a newly queued edit.
func (d *Database) InsertEdit(ctx context.Context, rec *EditRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("insert_edit", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	status := rec.Status
	if status == "" {
		status = EditStatusQueued
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO edits (id, input_path, output_path, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.InputPath, rec.OutputPath, string(status), rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert edit %s: %w", rec.ID, err)
	}
	return nil
}

// MarkEditRunning moves a queued edit to running.
func (d *Database) MarkEditRunning(ctx context.Context, id string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("mark_edit_running", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var res sql.Result
	res, err = d.db.ExecContext(ctx,
		"UPDATE edits SET status = ? WHERE id = ? AND status = ?",
		string(EditStatusRunning), id, string(EditStatusQueued),
	)
	if err != nil {
		return fmt.Errorf("failed to mark edit %s running: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrEditNotFound
		return err
	}
	return nil
}

// FinishEdit stores the terminal outcome of an edit.
func (d *Database) FinishEdit(ctx context.Context, id string, out EditOutcome) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("finish_edit", start, err) }()

	if !out.Status.Terminal() {
		err = fmt.Errorf("status %q is not terminal", out.Status)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	finished := out.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	var res sql.Result
	res, err = d.db.ExecContext(ctx, `
		UPDATE edits SET
			status = ?,
			error = ?,
			warning = ?,
			publish_path = ?,
			duration_ms = ?,
			file_size = ?,
			video_codec = ?,
			audio_codec = ?,
			finished_at = ?
		WHERE id = ?
	`,
		string(out.Status), out.Error, out.Warning, out.PublishPath,
		out.DurationMs, out.FileSize, out.VideoCodec, out.AudioCodec,
		finished.Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish edit %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrEditNotFound
		return err
	}
	return nil
}

const editColumns = `id, input_path, output_path, status, error, warning, publish_path,
	duration_ms, file_size, video_codec, audio_codec, created_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEdit(row rowScanner) (*EditRecord, error) {
	var rec EditRecord
	var status string
	var createdAt int64
	var finishedAt sql.NullInt64

	if err := row.Scan(
		&rec.ID, &rec.InputPath, &rec.OutputPath, &status, &rec.Error, &rec.Warning, &rec.PublishPath,
		&rec.DurationMs, &rec.FileSize, &rec.VideoCodec, &rec.AudioCodec, &createdAt, &finishedAt,
	); err != nil {
		return nil, err
	}

	rec.Status = EditStatus(status)
	rec.CreatedAt = time.Unix(createdAt, 0)
	if finishedAt.Valid {
		t := time.Unix(finishedAt.Int64, 0)
		rec.FinishedAt = &t
	}
	return &rec, nil
}

// GetEdit returns one edit by ID.
func (d *Database) GetEdit(ctx context.Context, id string) (*EditRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_edit", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec *EditRecord
	rec, err = scanEdit(d.db.QueryRowContext(ctx, "SELECT "+editColumns+" FROM edits WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEditNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get edit %s: %w", id, err)
	}
	return rec, nil
}

// ListEdits returns the most recent edits, newest first.
func (d *Database) ListEdits(ctx context.Context, limit, offset int) ([]EditRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_edits", start, err) }()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx,
		"SELECT "+editColumns+" FROM edits ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list edits: %w", err)
	}
	defer rows.Close()

	var records []EditRecord
	for rows.Next() {
		var rec *EditRecord
		rec, err = scanEdit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edit: %w", err)
		}
		records = append(records, *rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list edits: %w", err)
	}
	return records, nil
}

// CountEdits returns the number of recorded edits.
func (d *Database) CountEdits(ctx context.Context) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_edits", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM edits").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count edits: %w", err)
	}
	return count, nil
}

// MarkInterrupted fails every edit left queued or running by a previous
// process. It returns the number of edits updated.
func (d *Database) MarkInterrupted(ctx context.Context) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("mark_interrupted", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var res sql.Result
	res, err = d.db.ExecContext(ctx, `
		UPDATE edits SET status = ?, error = ?, finished_at = strftime('%s', 'now')
		WHERE status IN (?, ?)
	`, string(EditStatusFailed), "interrupted by restart", string(EditStatusQueued), string(EditStatusRunning))
	if err != nil {
		return 0, fmt.Errorf("failed to mark interrupted edits: %w", err)
	}
	return res.RowsAffected()
}
