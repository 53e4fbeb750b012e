package hackathons

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound means the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Repository persists hackathon submissions, announcements and teams.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const submissionCols = `id, student_id, proctor_id, title, organizer, start_date, end_date, status, poster_path, certificate_path, remarks, created_at, updated_at`

func scanSubmission(row interface{ Scan(...any) error }) (Submission, error) {
	var s Submission
	err := row.Scan(&s.ID, &s.StudentID, &s.ProctorID, &s.Title, &s.Organizer,
		&s.StartDate, &s.EndDate, &s.Status, &s.PosterPath, &s.CertificatePath,
		&s.Remarks, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// CreateSubmission inserts a new pending submission.
func (r *Repository) CreateSubmission(ctx context.Context, s Submission) (Submission, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO hackathon_submissions
			(id, student_id, proctor_id, title, organizer, start_date, end_date, status, poster_path, certificate_path, remarks)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at
	`, s.ID, s.StudentID, s.ProctorID, s.Title, s.Organizer, s.StartDate, s.EndDate,
		s.Status, s.PosterPath, s.CertificatePath, s.Remarks)
	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return Submission{}, err
	}
	return s, nil
}

// GetSubmission returns one submission by id, or ErrNotFound.
func (r *Repository) GetSubmission(ctx context.Context, id string) (Submission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+submissionCols+` FROM hackathon_submissions WHERE id = $1`, id)
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return s, err
}

// ListSubmissions returns submissions filtered by any combination of student,
// proctor and status, newest first.
func (r *Repository) ListSubmissions(ctx context.Context, studentID, proctorID, status string) ([]Submission, error) {
	query := `SELECT ` + submissionCols + ` FROM hackathon_submissions`
	var clauses []string
	var args []any
	add := func(cond string, val any) {
		args = append(args, val)
		clauses = append(clauses, fmt.Sprintf(cond, len(args)))
	}
	if studentID != "" {
		add("student_id = $%d", studentID)
	}
	if proctorID != "" {
		add("proctor_id = $%d", proctorID)
	}
	if status != "" {
		add("status = $%d", status)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// ListAcceptedFeed returns accepted submissions with the owning student's name
// and register number for the public home feed.
func (r *Repository) ListAcceptedFeed(ctx context.Context) ([]Submission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT h.id, h.student_id, h.proctor_id, h.title, h.organizer, h.start_date, h.end_date,
		       h.status, h.poster_path, h.certificate_path, h.remarks, h.created_at, h.updated_at,
		       s.name, s.register_no
		FROM hackathon_submissions h
		JOIN students s ON s.id = h.student_id
		WHERE h.status = 'accepted'
		ORDER BY h.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.StudentID, &s.ProctorID, &s.Title, &s.Organizer,
			&s.StartDate, &s.EndDate, &s.Status, &s.PosterPath, &s.CertificatePath,
			&s.Remarks, &s.CreatedAt, &s.UpdatedAt, &s.StudentName, &s.StudentRegisterNo); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// ReviewSubmission records a proctor decision.
func (r *Repository) ReviewSubmission(ctx context.Context, id, status, remarks string) (Submission, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE hackathon_submissions
		SET status = $2, remarks = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+submissionCols, id, status, remarks)
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return s, err
}

// CountByProctor reports submissions still referencing a proctor, regardless
// of review status.
func (r *Repository) CountByProctor(ctx context.Context, proctorID string) (int, error) {
	var n int
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hackathon_submissions WHERE proctor_id = $1`, proctorID)
	err := row.Scan(&n)
	return n, err
}

// DeleteByStudent removes all of a student's submissions.
func (r *Repository) DeleteByStudent(ctx context.Context, studentID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM hackathon_submissions WHERE student_id = $1`, studentID)
	return err
}

// CreateUpcoming inserts an announcement.
func (r *Repository) CreateUpcoming(ctx context.Context, u Upcoming) (Upcoming, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO upcoming_hackathons (id, title, description, poster_path, registration_deadline, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, u.ID, u.Title, u.Description, u.PosterPath, u.RegistrationDeadline, u.IsActive)
	if err := row.Scan(&u.CreatedAt); err != nil {
		return Upcoming{}, err
	}
	return u, nil
}

// ListUpcoming returns announcements, optionally only active ones with a
// deadline that has not passed.
func (r *Repository) ListUpcoming(ctx context.Context, activeOnly bool) ([]Upcoming, error) {
	query := `SELECT id, title, description, poster_path, registration_deadline, is_active, created_at
		FROM upcoming_hackathons`
	var args []any
	if activeOnly {
		query += ` WHERE is_active AND (registration_deadline IS NULL OR registration_deadline >= $1)`
		args = append(args, time.Now().UTC())
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Upcoming
	for rows.Next() {
		var u Upcoming
		if err := rows.Scan(&u.ID, &u.Title, &u.Description, &u.PosterPath,
			&u.RegistrationDeadline, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

// UpdateUpcoming applies a partial announcement update.
func (r *Repository) UpdateUpcoming(ctx context.Context, id string, title, description, posterPath *string, deadline *time.Time, isActive *bool) (Upcoming, error) {
	sets := []string{"id = id"}
	args := []any{id}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if title != nil {
		add("title", *title)
	}
	if description != nil {
		add("description", *description)
	}
	if posterPath != nil {
		add("poster_path", *posterPath)
	}
	if deadline != nil {
		add("registration_deadline", *deadline)
	}
	if isActive != nil {
		add("is_active", *isActive)
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE upcoming_hackathons SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING id, title, description, poster_path, registration_deadline, is_active, created_at
	`, args...)
	var u Upcoming
	err := row.Scan(&u.ID, &u.Title, &u.Description, &u.PosterPath,
		&u.RegistrationDeadline, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Upcoming{}, ErrNotFound
	}
	return u, err
}

// DeleteUpcoming removes an announcement.
func (r *Repository) DeleteUpcoming(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM upcoming_hackathons WHERE id = $1`, id)
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

// CreateTeam inserts a team and its member set.
func (r *Repository) CreateTeam(ctx context.Context, t Team) (Team, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Team{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO teams (id, name, hackathon_title, leader_id)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, t.ID, t.Name, t.HackathonTitle, t.LeaderID)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return Team{}, err
	}
	for _, sid := range t.Members {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO team_members (team_id, student_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, t.ID, sid); err != nil {
			return Team{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Team{}, err
	}
	return t, nil
}

// ListTeams returns all teams with their member sets.
func (r *Repository) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, hackathon_title, leader_id, created_at
		FROM teams ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Team
	index := map[string]int{}
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.HackathonTitle, &t.LeaderID, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Members = []string{}
		index[t.ID] = len(res)
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mrows, err := r.db.QueryContext(ctx, `SELECT team_id, student_id FROM team_members`)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var teamID, studentID string
		if err := mrows.Scan(&teamID, &studentID); err != nil {
			return nil, err
		}
		if i, ok := index[teamID]; ok {
			res[i].Members = append(res[i].Members, studentID)
		}
	}
	return res, mrows.Err()
}
