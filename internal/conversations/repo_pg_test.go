package conversations

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const convID = "44444444-4444-4444-8444-444444444444"

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateInsertsConversationAndGreeting(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	conv := Conversation{ID: convID, UserID: "u1", Title: DefaultTitle, CreatedAt: now, UpdatedAt: now}
	greeting := Message{ID: "m1", ConversationID: convID, Role: RoleAssistant, Content: Greeting, CreatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO conversations").
		WithArgs(convID, "u1", DefaultTitle, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO messages").
		WithArgs("m1", convID, RoleAssistant, Greeting, nil, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), conv, greeting))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoDeleteUnknownRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM conversations").
		WithArgs("u1", convID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	require.ErrorIs(t, repo.Delete(context.Background(), "u1", convID), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoDeleteRemovesChildrenFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM conversations").
		WithArgs("u1", convID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(convID))
	mock.ExpectExec("DELETE FROM messages").WithArgs(convID).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM conversation_documents").WithArgs(convID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM conversations").WithArgs(convID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "u1", convID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoAddMessageBumpsUpdatedAt(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, time.March, 1, 9, 5, 0, 0, time.UTC)
	msg := Message{ID: "m2", ConversationID: convID, Role: RoleUser, Content: "hi", Attachments: []byte(`[1]`), CreatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO messages").
		WithArgs("m2", convID, RoleUser, "hi", `[1]`, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE conversations SET updated_at").
		WithArgs(convID, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.AddMessage(context.Background(), msg))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoLinkDocumentsIgnoresExisting(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, time.March, 1, 9, 5, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO conversation_documents").
		WithArgs(convID, docMine, now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.LinkDocuments(context.Background(), convID, []string{docMine}, now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoMessagesScansAttachments(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "conversation_id", "role", "content", "attachments_json", "created_at"}).
		AddRow("m1", convID, RoleAssistant, Greeting, nil, now).
		AddRow("m2", convID, RoleUser, "hi", []byte(`[1]`), now.Add(time.Second))
	mock.ExpectQuery("SELECT id, conversation_id, role, content, attachments_json, created_at").
		WithArgs(convID).
		WillReturnRows(rows)

	messages, err := repo.Messages(context.Background(), convID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Nil(t, messages[0].Attachments, "greeting has no attachments")
	require.JSONEq(t, `[1]`, string(messages[1].Attachments))
	require.NoError(t, mock.ExpectationsWereMet())
}
