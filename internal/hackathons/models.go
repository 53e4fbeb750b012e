package hackathons

import "time"

// Submission lifecycle states.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Submission is a hackathon participation record owned by one student and
// reviewed by a proctor. Poster and certificate references may be Cloudinary
// URLs or legacy relative paths; normalize before rendering.
type Submission struct {
	ID              string     `json:"_id"`
	StudentID       string     `json:"studentId"`
	ProctorID       *string    `json:"proctorId"`
	Title           string     `json:"title"`
	Organizer       string     `json:"organizer"`
	StartDate       *time.Time `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	Status          string     `json:"status"`
	PosterPath      string     `json:"posterPath"`
	CertificatePath string     `json:"certificatePath"`
	Remarks         string     `json:"remarks"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	// Populated on the public feed only.
	StudentName       string `json:"studentName,omitempty"`
	StudentRegisterNo string `json:"studentRegisterNo,omitempty"`
}

// Upcoming is an admin-authored hackathon announcement.
type Upcoming struct {
	ID                   string     `json:"_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	PosterPath           string     `json:"posterPath"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
	IsActive             bool       `json:"isActive"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// Team groups students for a hackathon.
type Team struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	HackathonTitle string    `json:"hackathonTitle"`
	LeaderID       *string   `json:"leaderId"`
	Members        []string  `json:"members"`
	CreatedAt      time.Time `json:"createdAt"`
}
