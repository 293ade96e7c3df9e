package conversations

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"docchat-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const insertMessageQuery = `
INSERT INTO messages (id, conversation_id, role, content, attachments_json, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

func (r *PGRepo) Create(ctx context.Context, conv Conversation, first Message) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO conversations (id, user_id, title, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`,
			conv.ID, conv.UserID, conv.Title, conv.CreatedAt, conv.UpdatedAt,
		)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, insertMessageQuery, messageArgs(first)...)
		return err
	})
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Conversation, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, user_id, title, created_at, updated_at
FROM conversations
WHERE user_id = $1
ORDER BY updated_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Conversation, 0)
	for rows.Next() {
		var conv Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, userID, conversationID string) (Conversation, error) {
	var conv Conversation
	err := r.DB.QueryRowContext(ctx, `
SELECT id, user_id, title, created_at, updated_at
FROM conversations
WHERE user_id = $1 AND id = $2`, userID, conversationID).
		Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, err
	}
	return conv, nil
}

func (r *PGRepo) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, conversation_id, role, content, attachments_json, created_at
FROM messages
WHERE conversation_id = $1
ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		var (
			msg         Message
			attachments []byte
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &attachments, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if len(attachments) > 0 {
			msg.Attachments = attachments
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (r *PGRepo) DocumentIDs(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT document_id
FROM conversation_documents
WHERE conversation_id = $1
ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Delete removes messages, links and the conversation in one transaction.
func (r *PGRepo) Delete(ctx context.Context, userID, conversationID string) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM conversations WHERE user_id = $1 AND id = $2 FOR UPDATE`,
			userID, conversationID,
		).Scan(&id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_documents WHERE conversation_id = $1`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, id)
		return err
	})
}

func (r *PGRepo) AddMessage(ctx context.Context, msg Message) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertMessageQuery, messageArgs(msg)...); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE conversations SET updated_at = $2 WHERE id = $1`,
			msg.ConversationID, msg.CreatedAt,
		)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PGRepo) LinkDocuments(ctx context.Context, conversationID string, documentIDs []string, at time.Time) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		for _, documentID := range documentIDs {
			_, err := tx.ExecContext(ctx, `
INSERT INTO conversation_documents (conversation_id, document_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (conversation_id, document_id) DO NOTHING`,
				conversationID, documentID, at,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func messageArgs(msg Message) []any {
	var attachments any
	if len(msg.Attachments) > 0 {
		attachments = string(msg.Attachments)
	}
	return []any{msg.ID, msg.ConversationID, msg.Role, msg.Content, attachments, msg.CreatedAt}
}
