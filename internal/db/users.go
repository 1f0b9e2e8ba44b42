package db

import (
	"context"

	"practice-api/internal/models"
)

func (db *DB) CreateUser(ctx context.Context, email, passwordHash string, role models.Role) (*models.User, error) {
	user := &models.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now(),
	}

	query := "INSERT INTO users (id, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)"
	_, err := db.exec(ctx, query, user.ID, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt)
	if err != nil {
		return nil, storeErr("create user", err)
	}
	return user, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := "SELECT id, email, password_hash, role, created_at FROM users WHERE email = ?"
	user, err := scanUser(db.queryRow(ctx, query, email))
	if err != nil {
		return nil, storeErr("get user by email", err)
	}
	return user, nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := "SELECT id, email, password_hash, role, created_at FROM users WHERE id = ?"
	user, err := scanUser(db.queryRow(ctx, query, id))
	if err != nil {
		return nil, storeErr("get user by id", err)
	}
	return user, nil
}

// ListUsers returns one page of users whose email contains q.
func (db *DB) ListUsers(ctx context.Context, q string, page models.Page) ([]models.User, int, error) {
	where := ""
	args := []any{}
	if q != "" {
		where = ` WHERE LOWER(email) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(q))
	}

	total, err := db.count(ctx, "SELECT COUNT(*) FROM users"+where, args...)
	if err != nil {
		return nil, 0, storeErr("count users", err)
	}

	query := "SELECT id, email, password_hash, role, created_at FROM users" + where +
		" ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?"
	rows, err := db.query(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, storeErr("list users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, storeErr("scan user", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr("list users", err)
	}
	return users, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var role string
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return user, nil
}
