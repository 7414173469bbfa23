package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wichananm65/misdis-backend/internal/database"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns = `id, first_name, middle_name, last_name, to_char(dob, 'YYYY-MM-DD'), email, password,
		position, role, gender, contact, city, city_ne, verification_link_expiration, is_verified, is_active`

	listUsersQuery      = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	insertUserQuery = `
		INSERT INTO users (first_name, middle_name, last_name, dob, email, password, position, role, gender,
			contact, city, city_ne, verification_link_expiration, is_verified, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
)

type PostgresRepository struct {
	db database.Querier
}

func NewPostgresRepository(db database.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) querier(ctx context.Context) database.Querier {
	return database.QuerierFrom(ctx, r.db)
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, getUserByEmailQuery, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (User, error) {
	u, err := scanUser(r.querier(ctx).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	err := r.querier(ctx).QueryRowContext(ctx, insertUserQuery,
		u.FirstName,
		u.MiddleName,
		u.LastName,
		u.DOB,
		u.Email,
		u.Password,
		u.Position,
		string(u.Role),
		string(u.Gender),
		u.Contact,
		u.City,
		u.CityNe,
		u.VerificationLinkExpiration,
		u.IsVerified,
		u.IsActive,
	).Scan(&u.ID)
	if database.IsUniqueViolation(err) {
		return User{}, ErrEmailExists
	}
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func scanUser(scanner rowScanner) (User, error) {
	var (
		u          User
		middleName sql.NullString
		position   sql.NullString
		city       sql.NullString
		cityNe     sql.NullString
		expiration sql.NullTime
		role       string
		gender     string
	)
	if err := scanner.Scan(
		&u.ID,
		&u.FirstName,
		&middleName,
		&u.LastName,
		&u.DOB,
		&u.Email,
		&u.Password,
		&position,
		&role,
		&gender,
		&u.Contact,
		&city,
		&cityNe,
		&expiration,
		&u.IsVerified,
		&u.IsActive,
	); err != nil {
		return User{}, err
	}

	u.Role = Role(role)
	u.Gender = Gender(gender)
	if middleName.Valid {
		u.MiddleName = &middleName.String
	}
	if position.Valid {
		u.Position = &position.String
	}
	if city.Valid {
		u.City = &city.String
	}
	if cityNe.Valid {
		u.CityNe = &cityNe.String
	}
	if expiration.Valid {
		u.VerificationLinkExpiration = &expiration.Time
	}
	return u, nil
}
