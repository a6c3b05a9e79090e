package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dayline/internal/domain"
)

// Repo is the persistence gateway: a keyed snapshot document store plus
// the event log, both on SQLite.
type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

// SaveSnapshot upserts the full document for a profile. The revision is
// stamped by the caller and stored alongside so other sessions can tell
// echoes from genuine changes.
func (r Repo) SaveSnapshot(ctx context.Context, profileID string, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	updated := snap.LastUpdated
	if updated == "" {
		updated = time.Now().UTC().Format(time.RFC3339)
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO snapshots(profile_id,revision,data,updated_at) VALUES (?,?,?,?)
		ON CONFLICT(profile_id) DO UPDATE SET revision=excluded.revision, data=excluded.data, updated_at=excluded.updated_at`,
		profileID, snap.Revision, string(data), updated)
	return err
}

// LoadSnapshot reads the document for a profile; ErrNotFound when the
// profile has never been saved.
func (r Repo) LoadSnapshot(ctx context.Context, profileID string) (domain.Snapshot, error) {
	var (
		data string
		rev  int64
	)
	err := r.DB.QueryRowContext(ctx, `SELECT data,revision FROM snapshots WHERE profile_id=?`, profileID).Scan(&data, &rev)
	if err == sql.ErrNoRows {
		return domain.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return domain.Snapshot{}, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.Revision = rev
	return snap, nil
}

// SnapshotRevision returns the stored revision for a profile without
// decoding the document.
func (r Repo) SnapshotRevision(ctx context.Context, profileID string) (int64, error) {
	var rev int64
	err := r.DB.QueryRowContext(ctx, `SELECT revision FROM snapshots WHERE profile_id=?`, profileID).Scan(&rev)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return rev, err
}

// DeleteSnapshot removes a profile's document.
func (r Repo) DeleteSnapshot(ctx context.Context, profileID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM snapshots WHERE profile_id=?`, profileID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]domain.Event, error) {
	defer rows.Close()
	var res []domain.Event
	for rows.Next() {
		var (
			e   domain.Event
			eid sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityKind, &eid, &e.Payload); err != nil {
			return nil, err
		}
		if eid.Valid {
			e.EntityID = eid.String
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// LatestEvents returns the newest events, optionally filtered by type and
// entity kind.
func (r Repo) LatestEvents(ctx context.Context, limit int, evtType, entityKind string) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id,ts,type,entity_kind,entity_id,payload_json FROM events`
	var (
		conds []string
		args  []any
	)
	if evtType != "" {
		conds = append(conds, `type=?`)
		args = append(args, evtType)
	}
	if entityKind != "" {
		conds = append(conds, `entity_kind=?`)
		args = append(args, entityKind)
	}
	for i, c := range conds {
		if i == 0 {
			q += ` WHERE ` + c
		} else {
			q += ` AND ` + c
		}
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// EventsAfter returns up to limit events with id greater than cursor, in
// ascending order. Used by the webhook dispatcher.
func (r Repo) EventsAfter(ctx context.Context, limit int, cursor int64) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,ts,type,entity_kind,entity_id,payload_json FROM events WHERE id>? ORDER BY id ASC LIMIT ?`,
		cursor, limit)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// LatestEventID returns the id of the newest event, or 0 when the log is
// empty.
func (r Repo) LatestEventID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := r.DB.QueryRowContext(ctx, `SELECT MAX(id) FROM events`).Scan(&id); err != nil {
		return 0, err
	}
	if !id.Valid {
		return 0, nil
	}
	return id.Int64, nil
}
