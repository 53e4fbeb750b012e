package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hackportal/internal/bulkimport"
)

// Repository persists portal accounts in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const studentCols = `id, name, email, register_no, department, year, proctor_id, must_reset_password, password_hash, created_at, updated_at`

func scanStudent(row interface{ Scan(...any) error }) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.RegisterNo, &s.Department, &s.Year,
		&s.ProctorID, &s.MustResetPassword, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// ListStudents returns all students, newest first.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+studentCols+` FROM students ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// GetStudent returns a student by id, or ErrNotFound.
func (r *Repository) GetStudent(ctx context.Context, id string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE id = $1`, id)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return s, err
}

// GetStudentByEmail returns a student by email, or ErrNotFound.
func (r *Repository) GetStudentByEmail(ctx context.Context, email string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE email = $1`, email)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return s, err
}

// CreateStudent inserts a signup-created student.
func (r *Repository) CreateStudent(ctx context.Context, s Student) (Student, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, name, email, register_no, department, year, password_hash, must_reset_password)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at
	`, s.ID, s.Name, s.Email, s.RegisterNo, s.Department, s.Year, s.PasswordHash, s.MustResetPassword)
	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return Student{}, err
	}
	return s, nil
}

// UpdateStudentFields applies the non-link parts of a partial update.
func (r *Repository) UpdateStudentFields(ctx context.Context, id string, upd StudentUpdate) (Student, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.RegisterNo != nil {
		add("register_no", *upd.RegisterNo)
	}
	if upd.Department != nil {
		add("department", *upd.Department)
	}
	if upd.Year != nil {
		add("year", *upd.Year)
	}
	if upd.ProctorID.Set {
		if upd.ProctorID.Value == "" {
			sets = append(sets, "proctor_id = NULL")
		} else {
			add("proctor_id", upd.ProctorID.Value)
		}
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE students SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+studentCols, args...)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return s, err
}

// DeleteStudent removes a student; join rows cascade.
func (r *Repository) DeleteStudent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const proctorCols = `id, name, email, department, password_hash, must_reset_password, created_at, updated_at`

func scanProctor(row interface{ Scan(...any) error }) (Proctor, error) {
	var p Proctor
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Department, &p.PasswordHash, &p.MustResetPassword, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListProctors returns all proctors, newest first, with assigned-student sets.
func (r *Repository) ListProctors(ctx context.Context) ([]Proctor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+proctorCols+` FROM proctors ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Proctor
	for rows.Next() {
		p, err := scanProctor(rows)
		if err != nil {
			return nil, err
		}
		p.AssignedStudents = []string{}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	links, err := r.ListLinks(ctx)
	if err != nil {
		return nil, err
	}
	byProctor := make(map[string][]string)
	for _, l := range links {
		byProctor[l.ProctorID] = append(byProctor[l.ProctorID], l.StudentID)
	}
	for i := range res {
		if ids, ok := byProctor[res[i].ID]; ok {
			res[i].AssignedStudents = ids
		}
	}
	return res, nil
}

// GetProctor returns a proctor by id with its assigned-student set, or ErrNotFound.
func (r *Repository) GetProctor(ctx context.Context, id string) (Proctor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+proctorCols+` FROM proctors WHERE id = $1`, id)
	p, err := scanProctor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Proctor{}, ErrNotFound
	}
	if err != nil {
		return Proctor{}, err
	}
	p.AssignedStudents, err = r.assignedStudentIDs(ctx, id)
	return p, err
}

// GetProctorByEmail returns a proctor by email, or ErrNotFound.
func (r *Repository) GetProctorByEmail(ctx context.Context, email string) (Proctor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+proctorCols+` FROM proctors WHERE email = $1`, email)
	p, err := scanProctor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Proctor{}, ErrNotFound
	}
	return p, err
}

func (r *Repository) assignedStudentIDs(ctx context.Context, proctorID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT student_id FROM proctor_students WHERE proctor_id = $1`, proctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateProctorFields applies a partial proctor update.
func (r *Repository) UpdateProctorFields(ctx context.Context, id string, upd ProctorUpdate) (Proctor, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Department != nil {
		add("department", *upd.Department)
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE proctors SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+proctorCols, args...)
	p, err := scanProctor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Proctor{}, ErrNotFound
	}
	if err != nil {
		return Proctor{}, err
	}
	p.AssignedStudents, err = r.assignedStudentIDs(ctx, id)
	return p, err
}

// DeleteProctor removes a proctor; assignment rows cascade.
func (r *Repository) DeleteProctor(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM proctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const adminCols = `id, name, email, password_hash, created_at`

func scanAdmin(row interface{ Scan(...any) error }) (Admin, error) {
	var a Admin
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	return a, err
}

// ListAdmins returns all admins, newest first.
func (r *Repository) ListAdmins(ctx context.Context) ([]Admin, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+adminCols+` FROM admins ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// GetAdminByEmail returns an admin by email, or ErrNotFound.
func (r *Repository) GetAdminByEmail(ctx context.Context, email string) (Admin, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+adminCols+` FROM admins WHERE email = $1`, email)
	a, err := scanAdmin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, ErrNotFound
	}
	return a, err
}

// UpdateAdminFields applies a partial admin update.
func (r *Repository) UpdateAdminFields(ctx context.Context, id string, upd AdminUpdate) (Admin, error) {
	sets := []string{}
	args := []any{id}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if len(sets) == 0 {
		sets = append(sets, "id = id")
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE admins SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+adminCols, args...)
	a, err := scanAdmin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, ErrNotFound
	}
	return a, err
}

// DeleteAdmin removes an admin record.
func (r *Repository) DeleteAdmin(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Counts returns account totals per role.
func (r *Repository) Counts(ctx context.Context) (Stats, error) {
	var st Stats
	row := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM proctors),
			(SELECT COUNT(*) FROM admins)
	`)
	if err := row.Scan(&st.Students, &st.Proctors, &st.Admins); err != nil {
		return Stats{}, err
	}
	st.Total = st.Students + st.Proctors + st.Admins
	return st, nil
}

// AssignStudent adds a student to a proctor's set. Adding twice is a no-op.
func (r *Repository) AssignStudent(ctx context.Context, proctorID, studentID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO proctor_students (proctor_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (proctor_id, student_id) DO NOTHING
	`, proctorID, studentID)
	return err
}

// UnassignStudent removes a student from a proctor's set.
func (r *Repository) UnassignStudent(ctx context.Context, proctorID, studentID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM proctor_students WHERE proctor_id = $1 AND student_id = $2`, proctorID, studentID)
	return err
}

// ListLinks returns every proctor/student assignment row.
func (r *Repository) ListLinks(ctx context.Context) ([]Link, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT proctor_id, student_id FROM proctor_students`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ProctorID, &l.StudentID); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// StudentExists reports whether a student with the email or register number exists.
func (r *Repository) StudentExists(ctx context.Context, email, registerNo string) (bool, error) {
	var n int
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students WHERE email = $1 OR register_no = $2`, email, registerNo)
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ProctorExists reports whether a proctor with the email exists.
func (r *Repository) ProctorExists(ctx context.Context, email string) (bool, error) {
	var n int
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM proctors WHERE email = $1`, email)
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateImportedStudent inserts a bulk-import student row.
func (r *Repository) CreateImportedStudent(ctx context.Context, rec bulkimport.StudentRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, name, email, register_no, department, year, password_hash, must_reset_password)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, uuid.NewString(), rec.Name, rec.Email, rec.RegisterNo, rec.Department, rec.Year, rec.PasswordHash, rec.MustResetPassword)
	return err
}

// CreateImportedProctor inserts a bulk-import proctor row.
func (r *Repository) CreateImportedProctor(ctx context.Context, rec bulkimport.ProctorRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO proctors (id, name, email, department, password_hash, must_reset_password)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, uuid.NewString(), rec.Name, rec.Email, rec.Department, rec.PasswordHash, rec.MustResetPassword)
	return err
}

// CreateAdmin inserts an admin account (used by seeding and tests).
func (r *Repository) CreateAdmin(ctx context.Context, a Admin) (Admin, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO admins (id, name, email, password_hash)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, a.ID, a.Name, a.Email, a.PasswordHash)
	if err := row.Scan(&a.CreatedAt); err != nil {
		return Admin{}, err
	}
	return a, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
