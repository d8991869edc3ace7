package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"portfolio/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

const messageColumns = `id,name,email,body,COALESCE(remote_addr,''),COALESCE(user_agent,''),COALESCE(read_at,''),created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &m.RemoteAddr, &m.UserAgent, &m.ReadAt, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return m, ErrNotFound
	}
	return m, err
}

// InsertMessageTx stores m inside tx.
func (r Repo) InsertMessageTx(ctx context.Context, tx *sql.Tx, m domain.Message) error {
	if m.ID == "" {
		return errors.New("id required")
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO messages(id,name,email,body,remote_addr,user_agent,created_at) VALUES (?,?,?,?,?,?,?)`,
		m.ID, m.Name, m.Email, m.Body, nullable(m.RemoteAddr), nullable(m.UserAgent), m.CreatedAt)
	return err
}

func (r Repo) GetMessage(ctx context.Context, id string) (domain.Message, error) {
	return scanMessage(r.DB.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id=?`, id))
}

// ListFilter narrows ListMessages.
type ListFilter struct {
	Limit      int
	UnreadOnly bool
	Email      string
}

// ListMessages returns messages newest first.
func (r Repo) ListMessages(ctx context.Context, f ListFilter) ([]domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages`
	var where []string
	var args []any
	if f.UnreadOnly {
		where = append(where, `read_at IS NULL`)
	}
	if f.Email != "" {
		where = append(where, `email=?`)
		args = append(args, f.Email)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// MarkReadTx sets read_at if it is not set yet. It reports whether the row
// changed.
func (r Repo) MarkReadTx(ctx context.Context, tx *sql.Tx, id, ts string) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE messages SET read_at=? WHERE id=? AND read_at IS NULL`, ts, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r Repo) DeleteMessageTx(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMessages returns total and unread counts.
func (r Repo) CountMessages(ctx context.Context) (total, unread int, err error) {
	err = r.DB.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(CASE WHEN read_at IS NULL THEN 1 ELSE 0 END),0) FROM messages`).Scan(&total, &unread)
	return total, unread, err
}

// LatestEvents returns the newest events, optionally filtered by type.
func (r Repo) LatestEvents(ctx context.Context, n int, evtType string) ([]domain.Event, error) {
	query := `SELECT id,ts,type,entity_kind,COALESCE(entity_id,''),actor_id,payload_json FROM events`
	var args []any
	if evtType != "" {
		query += ` WHERE type=?`
		args = append(args, evtType)
	}
	query += ` ORDER BY id DESC`
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityKind, &e.EntityID, &e.ActorID, &e.Payload); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
