// Package bulkimport turns admin-uploaded spreadsheets into student and
// proctor accounts. Rows fail individually; a bad row never aborts the batch.
package bulkimport

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"hackportal/internal/metrics"
)

// StudentRecord is a validated student row ready for insertion.
type StudentRecord struct {
	Name              string
	Email             string
	RegisterNo        string
	Department        string
	Year              string
	PasswordHash      string
	MustResetPassword bool
}

// ProctorRecord is a validated proctor row ready for insertion.
type ProctorRecord struct {
	Name              string
	Email             string
	Department        string
	PasswordHash      string
	MustResetPassword bool
}

// Directory is the slice of the record store the importer needs.
type Directory interface {
	StudentExists(ctx context.Context, email, registerNo string) (bool, error)
	CreateImportedStudent(ctx context.Context, rec StudentRecord) error
	ProctorExists(ctx context.Context, email string) (bool, error)
	CreateImportedProctor(ctx context.Context, rec ProctorRecord) error
}

// Defaults are the fallback credentials applied when a row carries no
// password. Accounts created this way are flagged for a forced reset on first
// login, so the shared default never stays live.
type Defaults struct {
	StudentPassword string
	ProctorPassword string
}

// RowError reports one failed spreadsheet row.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Summary is the import result. success + failed equals the number of data rows.
type Summary struct {
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
}

// Processor runs bulk imports against the record store.
type Processor struct {
	dir      Directory
	defaults Defaults
}

// NewProcessor creates a processor over the given directory.
func NewProcessor(dir Directory, defaults Defaults) *Processor {
	return &Processor{dir: dir, defaults: defaults}
}

// ImportStudents parses the upload and inserts every valid, non-duplicate row.
// A parse failure aborts the request; row-level failures are collected in the
// summary. Rows are processed sequentially and inserts are not transactional
// across the batch.
func (p *Processor) ImportStudents(ctx context.Context, filename string, data []byte) (Summary, error) {
	rows, err := Parse(filename, data)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Errors: []RowError{}}
	for _, row := range rows {
		if err := p.importStudentRow(ctx, row); err != nil {
			sum.Failed++
			sum.Errors = append(sum.Errors, RowError{Row: row.Number, Error: err.Error()})
			metrics.ImportRows.WithLabelValues("student", "failed").Inc()
			continue
		}
		sum.Success++
		metrics.ImportRows.WithLabelValues("student", "imported").Inc()
	}
	return sum, nil
}

// ImportProctors is the proctor-role counterpart of ImportStudents.
func (p *Processor) ImportProctors(ctx context.Context, filename string, data []byte) (Summary, error) {
	rows, err := Parse(filename, data)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Errors: []RowError{}}
	for _, row := range rows {
		if err := p.importProctorRow(ctx, row); err != nil {
			sum.Failed++
			sum.Errors = append(sum.Errors, RowError{Row: row.Number, Error: err.Error()})
			metrics.ImportRows.WithLabelValues("proctor", "failed").Inc()
			continue
		}
		sum.Success++
		metrics.ImportRows.WithLabelValues("proctor", "imported").Inc()
	}
	return sum, nil
}

func (p *Processor) importStudentRow(ctx context.Context, row Row) error {
	vals := resolve(row.Values, studentFields)
	name, email, registerNo := vals["name"], vals["email"], vals["registerNo"]
	if email == "" || name == "" || registerNo == "" {
		return errors.New("Email, name, and Register No are required")
	}

	exists, err := p.dir.StudentExists(ctx, email, registerNo)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("Student with email %s or Register No %s already exists", email, registerNo)
	}

	password, mustReset := vals["password"], false
	if password == "" {
		password, mustReset = p.defaults.StudentPassword, true
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	rec := StudentRecord{
		Name:              name,
		Email:             email,
		RegisterNo:        registerNo,
		Department:        orDefault(vals["department"], "General"),
		Year:              orDefault(vals["year"], "1st"),
		PasswordHash:      string(hash),
		MustResetPassword: mustReset,
	}
	return p.dir.CreateImportedStudent(ctx, rec)
}

func (p *Processor) importProctorRow(ctx context.Context, row Row) error {
	vals := resolve(row.Values, proctorFields)
	name, email := vals["name"], vals["email"]
	if email == "" || name == "" {
		return errors.New("Email and name are required")
	}

	exists, err := p.dir.ProctorExists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("Proctor with email %s already exists", email)
	}

	password, mustReset := vals["password"], false
	if password == "" {
		password, mustReset = p.defaults.ProctorPassword, true
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	rec := ProctorRecord{
		Name:              name,
		Email:             email,
		Department:        orDefault(vals["department"], "General"),
		PasswordHash:      string(hash),
		MustResetPassword: mustReset,
	}
	return p.dir.CreateImportedProctor(ctx, rec)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
