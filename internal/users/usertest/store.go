// Package usertest provides in-memory fakes for the account store, used by
// service and handler tests.
package usertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hackportal/internal/bulkimport"
	"hackportal/internal/users"
)

// Store is an in-memory users.Store. Links are the source of truth for
// assigned-student sets; Proctor.AssignedStudents is computed on read.
type Store struct {
	mu       sync.Mutex
	Students map[string]users.Student
	Proctors map[string]users.Proctor
	Admins   map[string]users.Admin
	Links    map[users.Link]bool
}

// NewStore creates an empty fake store.
func NewStore() *Store {
	return &Store{
		Students: map[string]users.Student{},
		Proctors: map[string]users.Proctor{},
		Admins:   map[string]users.Admin{},
		Links:    map[users.Link]bool{},
	}
}

// AddStudent seeds a student and returns it.
func (f *Store) AddStudent(s users.Student) users.Student {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	f.Students[s.ID] = s
	return s
}

// AddProctor seeds a proctor and returns it.
func (f *Store) AddProctor(p users.Proctor) users.Proctor {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	f.Proctors[p.ID] = p
	return p
}

// AddAdmin seeds an admin and returns it.
func (f *Store) AddAdmin(a users.Admin) users.Admin {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	f.Admins[a.ID] = a
	return a
}

// Link seeds an assignment row directly, bypassing the coordinator.
func (f *Store) Link(proctorID, studentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Links[users.Link{ProctorID: proctorID, StudentID: studentID}] = true
}

// AssignedTo returns the sorted assigned-student set of a proctor.
func (f *Store) AssignedTo(proctorID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assignedLocked(proctorID)
}

func (f *Store) assignedLocked(proctorID string) []string {
	ids := []string{}
	for l := range f.Links {
		if l.ProctorID == proctorID {
			ids = append(ids, l.StudentID)
		}
	}
	sort.Strings(ids)
	return ids
}

func (f *Store) ListStudents(ctx context.Context) ([]users.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []users.Student
	for _, s := range f.Students {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (f *Store) GetStudent(ctx context.Context, id string) (users.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Students[id]
	if !ok {
		return users.Student{}, users.ErrNotFound
	}
	return s, nil
}

func (f *Store) GetStudentByEmail(ctx context.Context, email string) (users.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.Students {
		if s.Email == email {
			return s, nil
		}
	}
	return users.Student{}, users.ErrNotFound
}

func (f *Store) CreateStudent(ctx context.Context, s users.Student) (users.Student, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Students[s.ID] = s
	return s, nil
}

func (f *Store) UpdateStudentFields(ctx context.Context, id string, upd users.StudentUpdate) (users.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Students[id]
	if !ok {
		return users.Student{}, users.ErrNotFound
	}
	if upd.Name != nil {
		s.Name = *upd.Name
	}
	if upd.Email != nil {
		s.Email = *upd.Email
	}
	if upd.RegisterNo != nil {
		s.RegisterNo = *upd.RegisterNo
	}
	if upd.Department != nil {
		s.Department = *upd.Department
	}
	if upd.Year != nil {
		s.Year = *upd.Year
	}
	if upd.ProctorID.Set {
		if upd.ProctorID.Value == "" {
			s.ProctorID = nil
		} else {
			v := upd.ProctorID.Value
			s.ProctorID = &v
		}
	}
	s.UpdatedAt = time.Now().UTC()
	f.Students[id] = s
	return s, nil
}

func (f *Store) DeleteStudent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Students[id]; !ok {
		return users.ErrNotFound
	}
	delete(f.Students, id)
	for l := range f.Links {
		if l.StudentID == id {
			delete(f.Links, l)
		}
	}
	return nil
}

func (f *Store) StudentExists(ctx context.Context, email, registerNo string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.Students {
		if s.Email == email || s.RegisterNo == registerNo {
			return true, nil
		}
	}
	return false, nil
}

func (f *Store) ListProctors(ctx context.Context) ([]users.Proctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []users.Proctor
	for _, p := range f.Proctors {
		p.AssignedStudents = f.assignedLocked(p.ID)
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (f *Store) GetProctor(ctx context.Context, id string) (users.Proctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Proctors[id]
	if !ok {
		return users.Proctor{}, users.ErrNotFound
	}
	p.AssignedStudents = f.assignedLocked(id)
	return p, nil
}

func (f *Store) GetProctorByEmail(ctx context.Context, email string) (users.Proctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.Proctors {
		if p.Email == email {
			p.AssignedStudents = f.assignedLocked(p.ID)
			return p, nil
		}
	}
	return users.Proctor{}, users.ErrNotFound
}

func (f *Store) UpdateProctorFields(ctx context.Context, id string, upd users.ProctorUpdate) (users.Proctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Proctors[id]
	if !ok {
		return users.Proctor{}, users.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Email != nil {
		p.Email = *upd.Email
	}
	if upd.Department != nil {
		p.Department = *upd.Department
	}
	p.UpdatedAt = time.Now().UTC()
	f.Proctors[id] = p
	p.AssignedStudents = f.assignedLocked(id)
	return p, nil
}

func (f *Store) DeleteProctor(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Proctors[id]; !ok {
		return users.ErrNotFound
	}
	delete(f.Proctors, id)
	for l := range f.Links {
		if l.ProctorID == id {
			delete(f.Links, l)
		}
	}
	return nil
}

func (f *Store) ListAdmins(ctx context.Context) ([]users.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []users.Admin
	for _, a := range f.Admins {
		res = append(res, a)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (f *Store) GetAdminByEmail(ctx context.Context, email string) (users.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.Admins {
		if a.Email == email {
			return a, nil
		}
	}
	return users.Admin{}, users.ErrNotFound
}

func (f *Store) UpdateAdminFields(ctx context.Context, id string, upd users.AdminUpdate) (users.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.Admins[id]
	if !ok {
		return users.Admin{}, users.ErrNotFound
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Email != nil {
		a.Email = *upd.Email
	}
	f.Admins[id] = a
	return a, nil
}

func (f *Store) DeleteAdmin(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Admins[id]; !ok {
		return users.ErrNotFound
	}
	delete(f.Admins, id)
	return nil
}

func (f *Store) Counts(ctx context.Context) (users.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := users.Stats{
		Students: len(f.Students),
		Proctors: len(f.Proctors),
		Admins:   len(f.Admins),
	}
	st.Total = st.Students + st.Proctors + st.Admins
	return st, nil
}

func (f *Store) AssignStudent(ctx context.Context, proctorID, studentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Links[users.Link{ProctorID: proctorID, StudentID: studentID}] = true
	return nil
}

func (f *Store) UnassignStudent(ctx context.Context, proctorID, studentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Links, users.Link{ProctorID: proctorID, StudentID: studentID})
	return nil
}

func (f *Store) ListLinks(ctx context.Context) ([]users.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []users.Link
	for l := range f.Links {
		res = append(res, l)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].ProctorID != res[j].ProctorID {
			return res[i].ProctorID < res[j].ProctorID
		}
		return res[i].StudentID < res[j].StudentID
	})
	return res, nil
}

// Directory methods so the fake can back the bulk importer too.

func (f *Store) CreateImportedStudent(ctx context.Context, rec bulkimport.StudentRecord) error {
	f.AddStudent(users.Student{
		Name:              rec.Name,
		Email:             rec.Email,
		RegisterNo:        rec.RegisterNo,
		Department:        rec.Department,
		Year:              rec.Year,
		PasswordHash:      rec.PasswordHash,
		MustResetPassword: rec.MustResetPassword,
	})
	return nil
}

func (f *Store) ProctorExists(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.Proctors {
		if p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *Store) CreateImportedProctor(ctx context.Context, rec bulkimport.ProctorRecord) error {
	f.AddProctor(users.Proctor{
		Name:              rec.Name,
		Email:             rec.Email,
		Department:        rec.Department,
		PasswordHash:      rec.PasswordHash,
		MustResetPassword: rec.MustResetPassword,
	})
	return nil
}

// Submissions is an in-memory users.Submissions.
type Submissions struct {
	mu         sync.Mutex
	PerProctor map[string]int
	Deleted    []string
}

// NewSubmissions creates an empty submissions fake.
func NewSubmissions() *Submissions {
	return &Submissions{PerProctor: map[string]int{}}
}

func (f *Submissions) CountByProctor(ctx context.Context, proctorID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PerProctor[proctorID], nil
}

func (f *Submissions) DeleteByStudent(ctx context.Context, studentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, studentID)
	return nil
}
