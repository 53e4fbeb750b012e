package users

import (
	"encoding/json"
	"time"
)

// Student is a portal account owned by a student. The password hash is never
// serialized.
type Student struct {
	ID                string    `json:"_id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	RegisterNo        string    `json:"registerNo"`
	Department        string    `json:"department"`
	Year              string    `json:"year"`
	ProctorID         *string   `json:"proctorId"`
	MustResetPassword bool      `json:"mustResetPassword"`
	PasswordHash      string    `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Proctor reviews student submissions. AssignedStudents mirrors the students'
// proctorId references; the service keeps both sides in step.
type Proctor struct {
	ID                string    `json:"_id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Department        string    `json:"department"`
	AssignedStudents  []string  `json:"assignedStudents"`
	MustResetPassword bool      `json:"mustResetPassword"`
	PasswordHash      string    `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Admin manages accounts and announcements.
type Admin struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Stats is the aggregate account count report.
type Stats struct {
	Students int `json:"students"`
	Proctors int `json:"proctors"`
	Admins   int `json:"admins"`
	Total    int `json:"total"`
}

// OptionalString distinguishes an absent JSON field from one explicitly set to
// null or "". Both null and "" clear the underlying value.
type OptionalString struct {
	Set   bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = ""
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == "" {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// StudentUpdate is a partial update; nil pointers leave fields untouched.
// Password changes are rejected on this path, so the field is parsed only to
// be dropped.
type StudentUpdate struct {
	Name       *string        `json:"name"`
	Email      *string        `json:"email"`
	RegisterNo *string        `json:"registerNo"`
	Department *string        `json:"department"`
	Year       *string        `json:"year"`
	ProctorID  OptionalString `json:"proctorId"`
	Password   *string        `json:"password"`
}

// ProctorUpdate is a partial proctor update.
type ProctorUpdate struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	Password   *string `json:"password"`
}

// AdminUpdate is a partial admin update.
type AdminUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Link is one row of the proctor/student assignment set.
type Link struct {
	ProctorID string
	StudentID string
}

// NewStudent is the signup payload.
type NewStudent struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RegisterNo string `json:"registerNo"`
	Department string `json:"department"`
	Year       string `json:"year"`
	Password   string `json:"password"`
}
