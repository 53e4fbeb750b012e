package users

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// Store is the account storage the service runs on, implemented by Repository.
type Store interface {
	ListStudents(ctx context.Context) ([]Student, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	GetStudentByEmail(ctx context.Context, email string) (Student, error)
	CreateStudent(ctx context.Context, s Student) (Student, error)
	UpdateStudentFields(ctx context.Context, id string, upd StudentUpdate) (Student, error)
	DeleteStudent(ctx context.Context, id string) error
	StudentExists(ctx context.Context, email, registerNo string) (bool, error)

	ListProctors(ctx context.Context) ([]Proctor, error)
	GetProctor(ctx context.Context, id string) (Proctor, error)
	GetProctorByEmail(ctx context.Context, email string) (Proctor, error)
	UpdateProctorFields(ctx context.Context, id string, upd ProctorUpdate) (Proctor, error)
	DeleteProctor(ctx context.Context, id string) error

	ListAdmins(ctx context.Context) ([]Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (Admin, error)
	UpdateAdminFields(ctx context.Context, id string, upd AdminUpdate) (Admin, error)
	DeleteAdmin(ctx context.Context, id string) error

	Counts(ctx context.Context) (Stats, error)
	AssignStudent(ctx context.Context, proctorID, studentID string) error
	UnassignStudent(ctx context.Context, proctorID, studentID string) error
	ListLinks(ctx context.Context) ([]Link, error)
}

// Submissions is the slice of the hackathon store the service needs for
// delete guards and cascades.
type Submissions interface {
	CountByProctor(ctx context.Context, proctorID string) (int, error)
	DeleteByStudent(ctx context.Context, studentID string) error
}

// Service implements the administrative account operations, including the
// proctor reassignment bookkeeping.
type Service struct {
	store Store
	subs  Submissions
}

// NewService creates the account service.
func NewService(store Store, subs Submissions) *Service {
	return &Service{store: store, subs: subs}
}

func (s *Service) ListStudents(ctx context.Context) ([]Student, error) {
	return s.store.ListStudents(ctx)
}

func (s *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return s.store.GetStudent(ctx, id)
}

func (s *Service) GetProctor(ctx context.Context, id string) (Proctor, error) {
	return s.store.GetProctor(ctx, id)
}

func (s *Service) ListProctors(ctx context.Context) ([]Proctor, error) {
	return s.store.ListProctors(ctx)
}

func (s *Service) ListAdmins(ctx context.Context) ([]Admin, error) {
	return s.store.ListAdmins(ctx)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.Counts(ctx)
}

// UpdateStudent applies a partial update. When the payload carries a
// proctorId, the old proctor's assigned set is pruned and the new proctor's is
// extended before the student row itself changes, so the two sides never point
// at different proctors once the update returns. Password changes are dropped.
func (s *Service) UpdateStudent(ctx context.Context, id string, upd StudentUpdate) (Student, bool, error) {
	upd.Password = nil

	current, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return Student{}, false, err
	}

	relinked := false
	if upd.ProctorID.Set {
		oldID := ""
		if current.ProctorID != nil {
			oldID = *current.ProctorID
		}
		newID := upd.ProctorID.Value

		if oldID != "" && oldID != newID {
			if err := s.store.UnassignStudent(ctx, oldID, id); err != nil {
				return Student{}, false, err
			}
			relinked = true
		}
		if newID != "" && newID != oldID {
			if _, err := s.store.GetProctor(ctx, newID); err != nil {
				return Student{}, false, err
			}
			if err := s.store.AssignStudent(ctx, newID, id); err != nil {
				return Student{}, false, err
			}
			relinked = true
		}
	}

	updated, err := s.store.UpdateStudentFields(ctx, id, upd)
	if err != nil {
		return Student{}, false, err
	}
	return updated, relinked, nil
}

// UpdateProctor applies a partial update; password changes are dropped.
func (s *Service) UpdateProctor(ctx context.Context, id string, upd ProctorUpdate) (Proctor, error) {
	upd.Password = nil
	return s.store.UpdateProctorFields(ctx, id, upd)
}

// UpdateAdmin applies a partial update; password changes are dropped.
func (s *Service) UpdateAdmin(ctx context.Context, id string, upd AdminUpdate) (Admin, error) {
	upd.Password = nil
	return s.store.UpdateAdminFields(ctx, id, upd)
}

// DeleteStudent removes the student and cascades their submissions.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	if _, err := s.store.GetStudent(ctx, id); err != nil {
		return err
	}
	if err := s.subs.DeleteByStudent(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteStudent(ctx, id)
}

// DeleteProctor removes a proctor unless submissions still reference them.
func (s *Service) DeleteProctor(ctx context.Context, id string) error {
	n, err := s.subs.CountByProctor(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrProctorBusy
	}
	return s.store.DeleteProctor(ctx, id)
}

// DeleteAdmin removes an admin account. The acting admin cannot remove itself.
func (s *Service) DeleteAdmin(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return ErrSelfDelete
	}
	return s.store.DeleteAdmin(ctx, id)
}

// Principal is the authenticated identity returned by login.
type Principal struct {
	ID                string `json:"_id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	MustResetPassword bool   `json:"mustResetPassword"`
}

// Authenticate verifies a password for the given role's account.
func (s *Service) Authenticate(ctx context.Context, role, email, password string) (Principal, error) {
	var p Principal
	var hash string
	switch role {
	case "student":
		st, err := s.store.GetStudentByEmail(ctx, email)
		if err != nil {
			return Principal{}, credentialErr(err)
		}
		p = Principal{ID: st.ID, Name: st.Name, Email: st.Email, Role: role, MustResetPassword: st.MustResetPassword}
		hash = st.PasswordHash
	case "proctor":
		pr, err := s.store.GetProctorByEmail(ctx, email)
		if err != nil {
			return Principal{}, credentialErr(err)
		}
		p = Principal{ID: pr.ID, Name: pr.Name, Email: pr.Email, Role: role, MustResetPassword: pr.MustResetPassword}
		hash = pr.PasswordHash
	case "admin":
		ad, err := s.store.GetAdminByEmail(ctx, email)
		if err != nil {
			return Principal{}, credentialErr(err)
		}
		p = Principal{ID: ad.ID, Name: ad.Name, Email: ad.Email, Role: role}
		hash = ad.PasswordHash
	default:
		return Principal{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Principal{}, ErrBadCredentials
	}
	return p, nil
}

// SignupStudent registers a new student account.
func (s *Service) SignupStudent(ctx context.Context, req NewStudent) (Student, error) {
	exists, err := s.store.StudentExists(ctx, req.Email, req.RegisterNo)
	if err != nil {
		return Student{}, err
	}
	if exists {
		return Student{}, ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Student{}, err
	}
	st := Student{
		Name:         req.Name,
		Email:        req.Email,
		RegisterNo:   req.RegisterNo,
		Department:   req.Department,
		Year:         req.Year,
		PasswordHash: string(hash),
	}
	if st.Department == "" {
		st.Department = "General"
	}
	if st.Year == "" {
		st.Year = "1st"
	}
	return s.store.CreateStudent(ctx, st)
}

func credentialErr(err error) error {
	if err == ErrNotFound {
		return ErrBadCredentials
	}
	return err
}
