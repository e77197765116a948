package storage

import (
	"context"
	"database/sql"
)

const transactionColumns = `id, owner_id, kind, title, amount_cents, category, date_ms, created_at, updated_at`

// rangeFilter expects owner, kind, from, from, until, until.
const rangeFilter = `owner_id = ? AND kind = ?
  AND (? IS NULL OR date_ms >= ?)
  AND (? IS NULL OR date_ms < ?)`

type RangeParams struct {
	OwnerID string
	Kind    string
	FromMs  sql.NullInt64
	UntilMs sql.NullInt64
}

func (p RangeParams) args() []interface{} {
	return []interface{}{p.OwnerID, p.Kind, p.FromMs, p.FromMs, p.UntilMs, p.UntilMs}
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (` + transactionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
	ID          string
	OwnerID     string
	Kind        string
	Title       string
	AmountCents int64
	Category    string
	DateMs      int64
	CreatedAt   int64
	UpdatedAt   int64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.ID,
		arg.OwnerID,
		arg.Kind,
		arg.Title,
		arg.AmountCents,
		arg.Category,
		arg.DateMs,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanTransaction(row)
}

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + `
FROM transactions
WHERE kind = ? AND id = ?`

func (q *Queries) GetTransaction(ctx context.Context, kind, id string) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, kind, id)
	return scanTransaction(row)
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions
WHERE kind = ? AND id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, kind, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, kind, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTransactions = `-- name: ListTransactions :many
SELECT ` + transactionColumns + `
FROM transactions
WHERE ` + rangeFilter + `
ORDER BY date_ms DESC, created_at DESC
LIMIT ? OFFSET ?`

type ListTransactionsParams struct {
	RangeParams
	// Limit of -1 returns every row.
	Limit  int64
	Offset int64
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	args := append(arg.args(), arg.Limit, arg.Offset)
	rows, err := q.db.QueryContext(ctx, listTransactions, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTransactions = `-- name: CountTransactions :one
SELECT COUNT(*)
FROM transactions
WHERE ` + rangeFilter

func (q *Queries) CountTransactions(ctx context.Context, arg RangeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactions, arg.args()...)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const sumAmount = `-- name: SumAmount :one
SELECT CAST(COALESCE(SUM(amount_cents), 0) AS INTEGER)
FROM transactions
WHERE ` + rangeFilter

func (q *Queries) SumAmount(ctx context.Context, arg RangeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumAmount, arg.args()...)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const sumByDay = `-- name: SumByDay :many
SELECT strftime('%Y-%m-%d', date_ms / 1000, 'unixepoch') AS day,
       SUM(amount_cents) AS total
FROM transactions
WHERE ` + rangeFilter + `
GROUP BY day
ORDER BY day ASC`

type SumByDayRow struct {
	Day   string
	Total int64
}

func (q *Queries) SumByDay(ctx context.Context, arg RangeParams) ([]SumByDayRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByDay, arg.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SumByDayRow
	for rows.Next() {
		var i SumByDayRow
		if err := rows.Scan(&i.Day, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumByCategory = `-- name: SumByCategory :many
SELECT category, SUM(amount_cents) AS total
FROM transactions
WHERE ` + rangeFilter + `
GROUP BY category
ORDER BY category ASC`

type SumByCategoryRow struct {
	Category string
	Total    int64
}

func (q *Queries) SumByCategory(ctx context.Context, arg RangeParams) ([]SumByCategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByCategory, arg.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SumByCategoryRow
	for rows.Next() {
		var i SumByCategoryRow
		if err := rows.Scan(&i.Category, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, name, email, password_hash, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, name, email, password_hash, created_at`

type CreateUserParams struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.ID,
		arg.Name,
		arg.Email,
		arg.PasswordHash,
		arg.CreatedAt,
	)
	var i User
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, name, email, password_hash, created_at
FROM users
WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT id, name, email, password_hash, created_at
FROM users
WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var i User
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Kind,
		&i.Title,
		&i.AmountCents,
		&i.Category,
		&i.DateMs,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
