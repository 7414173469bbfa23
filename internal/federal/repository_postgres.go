package federal

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

type queries struct {
	list    string
	getByID string
	exists  string
	insert  string
	update  string
	delete  string
}

// PostgresRepository stores one level in its own table. Statements run on the
// request transaction when one is present in the context.
type PostgresRepository struct {
	db    database.Querier
	level *Level
	q     queries
}

func NewPostgresRepository(db database.Querier, level *Level) *PostgresRepository {
	return &PostgresRepository{db: db, level: level, q: buildQueries(level)}
}

func buildQueries(l *Level) queries {
	columns := `id, title, title_ne, code, "order"`
	insertCols := `title, title_ne, code, "order"`
	insertArgs := `$1, $2, $3, $4`
	set := `title = $1, title_ne = $2, code = $3, "order" = $4`
	idArg := "$5"
	if pc := l.ParentColumn(); pc != "" {
		columns += ", " + pc
		insertCols += ", " + pc
		insertArgs += ", $5"
		set += ", " + pc + " = $5"
		idArg = "$6"
	}

	return queries{
		list:    fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, columns, l.Table),
		getByID: fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, columns, l.Table),
		exists:  fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, l.Table),
		insert:  fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`, l.Table, insertCols, insertArgs),
		update:  fmt.Sprintf(`UPDATE %s SET %s WHERE id = %s`, l.Table, set, idArg),
		delete:  fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, l.Table),
	}
}

func (r *PostgresRepository) querier(ctx context.Context) database.Querier {
	return database.QuerierFrom(ctx, r.db)
}

func (r *PostgresRepository) List(ctx context.Context) ([]Division, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, r.q.list)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.level.Table, err)
	}
	defer rows.Close()

	out := make([]Division, 0)
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Division, error) {
	d, err := r.scan(r.querier(ctx).QueryRowContext(ctx, r.q.getByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Division{}, ErrNotFound
	}
	if err != nil {
		return Division{}, fmt.Errorf("get %s %d: %w", r.level.Table, id, err)
	}
	return d, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id int) (bool, error) {
	var ok bool
	if err := r.querier(ctx).QueryRowContext(ctx, r.q.exists, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check %s %d: %w", r.level.Table, id, err)
	}
	return ok, nil
}

func (r *PostgresRepository) Create(ctx context.Context, d Division) (Division, error) {
	err := r.querier(ctx).QueryRowContext(ctx, r.q.insert, r.args(d)...).Scan(&d.ID)
	if database.IsForeignKeyViolation(err) {
		return Division{}, ErrParentNotFound
	}
	if err != nil {
		return Division{}, fmt.Errorf("insert %s: %w", r.level.Table, err)
	}
	return d, nil
}

func (r *PostgresRepository) Update(ctx context.Context, d Division) (Division, error) {
	args := append(r.args(d), d.ID)
	res, err := r.querier(ctx).ExecContext(ctx, r.q.update, args...)
	if database.IsForeignKeyViolation(err) {
		return Division{}, ErrParentNotFound
	}
	if err != nil {
		return Division{}, fmt.Errorf("update %s %d: %w", r.level.Table, d.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Division{}, ErrNotFound
	}
	return d, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.querier(ctx).ExecContext(ctx, r.q.delete, id)
	if database.IsForeignKeyViolation(err) {
		return ErrHasDependents
	}
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", r.level.Table, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) args(d Division) []any {
	args := []any{d.Title, d.TitleNe, d.Code, d.Order}
	if r.level.Parent != nil {
		args = append(args, d.ParentID)
	}
	return args
}

func (r *PostgresRepository) scan(scanner rowScanner) (Division, error) {
	var (
		d       Division
		titleNe sql.NullString
		code    sql.NullString
	)
	dest := []any{&d.ID, &d.Title, &titleNe, &code, &d.Order}
	if r.level.Parent != nil {
		dest = append(dest, &d.ParentID)
	}
	if err := scanner.Scan(dest...); err != nil {
		return Division{}, err
	}
	if titleNe.Valid {
		d.TitleNe = &titleNe.String
	}
	if code.Valid {
		d.Code = &code.String
	}
	return d, nil
}
