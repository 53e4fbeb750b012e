package bulkimport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memDirectory struct {
	students []StudentRecord
	proctors []ProctorRecord
}

func (d *memDirectory) StudentExists(_ context.Context, email, registerNo string) (bool, error) {
	for _, s := range d.students {
		if s.Email == email || s.RegisterNo == registerNo {
			return true, nil
		}
	}
	return false, nil
}

func (d *memDirectory) CreateImportedStudent(_ context.Context, rec StudentRecord) error {
	d.students = append(d.students, rec)
	return nil
}

func (d *memDirectory) ProctorExists(_ context.Context, email string) (bool, error) {
	for _, p := range d.proctors {
		if p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (d *memDirectory) CreateImportedProctor(_ context.Context, rec ProctorRecord) error {
	d.proctors = append(d.proctors, rec)
	return nil
}

func newProcessor(dir *memDirectory) *Processor {
	return NewProcessor(dir, Defaults{StudentPassword: "Tce@123", ProctorPassword: "Proctor@123"})
}

func TestImportStudentsDuplicateWithinBatch(t *testing.T) {
	dir := &memDirectory{}
	p := newProcessor(dir)

	csv := "email,name,registerNo\n" +
		"a@x.com,A,1\n" +
		"a@x.com,Dup,2\n"

	sum, err := p.ImportStudents(context.Background(), "students.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Success)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Errors, 1)
	assert.Equal(t, 3, sum.Errors[0].Row)
	assert.Equal(t, "Student with email a@x.com or Register No 2 already exists", sum.Errors[0].Error)

	require.Len(t, dir.students, 1)
	assert.Equal(t, "A", dir.students[0].Name)
}

func TestImportStudentsMissingFields(t *testing.T) {
	dir := &memDirectory{}
	p := newProcessor(dir)

	csv := "email,name,registerNo\n" +
		"a@x.com,A,1\n" +
		"b@x.com,,2\n" +
		",C,3\n"

	sum, err := p.ImportStudents(context.Background(), "students.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Success)
	assert.Equal(t, 2, sum.Failed)
	require.Len(t, sum.Errors, 2)
	assert.Equal(t, 3, sum.Errors[0].Row)
	assert.Equal(t, "Email, name, and Register No are required", sum.Errors[0].Error)
	assert.Equal(t, 4, sum.Errors[1].Row)
}

func TestImportStudentsDefaults(t *testing.T) {
	dir := &memDirectory{}
	p := newProcessor(dir)

	csv := "email,name,registerNo,department,year,password\n" +
		"a@x.com,A,1,,,\n" +
		"b@x.com,B,2,ECE,2nd,Chosen@1\n"

	sum, err := p.ImportStudents(context.Background(), "students.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Success)
	assert.Zero(t, sum.Failed)
	require.Len(t, dir.students, 2)

	defaulted := dir.students[0]
	assert.Equal(t, "General", defaulted.Department)
	assert.Equal(t, "1st", defaulted.Year)
	assert.True(t, defaulted.MustResetPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(defaulted.PasswordHash), []byte("Tce@123")))

	chosen := dir.students[1]
	assert.Equal(t, "ECE", chosen.Department)
	assert.Equal(t, "2nd", chosen.Year)
	assert.False(t, chosen.MustResetPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(chosen.PasswordHash), []byte("Chosen@1")))
}

func TestImportStudentsAgainstExistingRecords(t *testing.T) {
	dir := &memDirectory{students: []StudentRecord{{Email: "old@x.com", RegisterNo: "100"}}}
	p := newProcessor(dir)

	csv := "email,name,registerNo\n" +
		"new@x.com,New,100\n"

	sum, err := p.ImportStudents(context.Background(), "students.csv", []byte(csv))
	require.NoError(t, err)
	assert.Zero(t, sum.Success)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, "Student with email new@x.com or Register No 100 already exists", sum.Errors[0].Error)
}

func TestImportStudentsParseFailureAborts(t *testing.T) {
	p := newProcessor(&memDirectory{})
	_, err := p.ImportStudents(context.Background(), "students.xlsx", []byte("not a workbook"))
	assert.Error(t, err)
}

func TestImportProctors(t *testing.T) {
	dir := &memDirectory{}
	p := newProcessor(dir)

	csv := "email,name,department\n" +
		"p1@x.com,Dr. A,CSE\n" +
		"p1@x.com,Dr. Dup,IT\n" +
		"p2@x.com,,\n"

	sum, err := p.ImportProctors(context.Background(), "proctors.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Success)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, "Proctor with email p1@x.com already exists", sum.Errors[0].Error)
	assert.Equal(t, "Email and name are required", sum.Errors[1].Error)

	require.Len(t, dir.proctors, 1)
	got := dir.proctors[0]
	assert.Equal(t, "Dr. A", got.Name)
	assert.True(t, got.MustResetPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("Proctor@123")))
}

func TestSummaryAccountsForEveryRow(t *testing.T) {
	dir := &memDirectory{}
	p := newProcessor(dir)

	csv := "email,name,registerNo\n" +
		"a@x.com,A,1\n" +
		"b@x.com,B,2\n" +
		"a@x.com,C,3\n" +
		",D,4\n"

	sum, err := p.ImportStudents(context.Background(), "students.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Success+sum.Failed)
	assert.Len(t, sum.Errors, sum.Failed)
}
