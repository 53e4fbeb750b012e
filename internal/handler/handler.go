// Package handler wires the portal's REST surface onto gin.
package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hackportal/internal/auth"
	"hackportal/internal/bulkimport"
	"hackportal/internal/cloudinary"
	"hackportal/internal/hackathons"
	"hackportal/internal/metrics"
	"hackportal/internal/queue"
	"hackportal/internal/users"
)

// Config is the handler's slice of the app config.
type Config struct {
	JWTIssuer      string
	JWTSigningKey  string
	AccessTTL      time.Duration
	UploadsBaseURL string
}

// Handler holds the services behind the REST surface.
type Handler struct {
	cfg     Config
	users   *users.Service
	imports *bulkimport.Processor
	hacks   *hackathons.Repository
	cloud   *cloudinary.Client // nil when Cloudinary is not configured
	q       queue.Queue
}

// New creates a handler.
func New(cfg Config, us *users.Service, imp *bulkimport.Processor, hacks *hackathons.Repository, cloud *cloudinary.Client, q queue.Queue) *Handler {
	return &Handler{cfg: cfg, users: us, imports: imp, hacks: hacks, cloud: cloud, q: q}
}

// Register mounts all portal routes.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.Login)
	authGroup.POST("/signup", h.Signup)

	api.GET("/hackathons/accepted", h.ListAcceptedHackathons)
	api.GET("/upcoming-hackathons", h.ListUpcomingHackathons)

	anyUser := api.Group("", auth.UserAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
	anyUser.GET("/hackathons", h.ListHackathons)
	anyUser.GET("/teams", h.ListTeams)
	anyUser.POST("/teams", h.CreateTeam)

	student := api.Group("", auth.UserAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer, "student"))
	student.POST("/hackathons", h.CreateHackathon)

	reviewer := api.Group("", auth.UserAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer, "proctor", "admin"))
	reviewer.PUT("/hackathons/:id/review", h.ReviewHackathon)

	admin := api.Group("", auth.UserAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer, "admin"))
	admin.GET("/users/students", h.ListStudents)
	admin.GET("/users/proctors", h.ListProctors)
	admin.GET("/users/admins", h.ListAdmins)
	admin.GET("/users/stats", h.UserStats)
	admin.PUT("/users/students/:id", h.UpdateStudent)
	admin.PUT("/users/proctors/:id", h.UpdateProctor)
	admin.PUT("/users/admins/:id", h.UpdateAdmin)
	admin.DELETE("/users/students/:id", h.DeleteStudent)
	admin.DELETE("/users/proctors/:id", h.DeleteProctor)
	admin.DELETE("/users/admins/:id", h.DeleteAdmin)
	admin.POST("/users/bulk-students", h.BulkStudents)
	admin.POST("/users/bulk-proctors", h.BulkProctors)
	admin.GET("/upcoming-hackathons/all", h.ListAllUpcomingHackathons)
	admin.POST("/upcoming-hackathons", h.CreateUpcomingHackathon)
	admin.PUT("/upcoming-hackathons/:id", h.UpdateUpcomingHackathon)
	admin.DELETE("/upcoming-hackathons/:id", h.DeleteUpcomingHackathon)
}

// ---------- Auth ----------

type loginRequest struct {
	Role     string `json:"role" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	p, err := h.users.Authenticate(c.Request.Context(), req.Role, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	token, exp, err := auth.Issue(p.ID, p.Role, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": exp.Unix(), "user": p})
}

func (h *Handler) Signup(c *gin.Context) {
	var req users.NewStudent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Name == "" || req.Email == "" || req.RegisterNo == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, email, registerNo and password are required"})
		return
	}
	st, err := h.users.SignupStudent(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Student with this email or register number already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, st)
}

// ---------- User management ----------

func (h *Handler) ListStudents(c *gin.Context) {
	list, err := h.users.ListStudents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []users.Student{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ListProctors(c *gin.Context) {
	list, err := h.users.ListProctors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []users.Proctor{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ListAdmins(c *gin.Context) {
	list, err := h.users.ListAdmins(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []users.Admin{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) UserStats(c *gin.Context) {
	st, err := h.users.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) UpdateStudent(c *gin.Context) {
	var upd users.StudentUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	st, relinked, err := h.users.UpdateStudent(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if relinked {
		h.enqueueReconcile(c.Request.Context())
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) UpdateProctor(c *gin.Context) {
	var upd users.ProctorUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	p, err := h.users.UpdateProctor(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Proctor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateAdmin(c *gin.Context) {
	var upd users.AdminUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	a, err := h.users.UpdateAdmin(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Admin not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	err := h.users.DeleteStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.enqueueReconcile(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Student and related hackathons deleted successfully"})
}

func (h *Handler) DeleteProctor(c *gin.Context) {
	err := h.users.DeleteProctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, users.ErrProctorBusy):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot delete proctor with assigned hackathons. Please reassign hackathons first."})
		case errors.Is(err, users.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Proctor not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	h.enqueueReconcile(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Proctor deleted successfully"})
}

func (h *Handler) DeleteAdmin(c *gin.Context) {
	claims, _ := auth.CallerClaims(c)
	err := h.users.DeleteAdmin(c.Request.Context(), c.Param("id"), claims.Subject)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrSelfDelete):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot delete your own admin account"})
		case errors.Is(err, users.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Admin not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin deleted successfully"})
}

// ---------- Bulk import ----------

func (h *Handler) BulkStudents(c *gin.Context) {
	h.bulkImport(c, h.imports.ImportStudents)
}

func (h *Handler) BulkProctors(c *gin.Context) {
	h.bulkImport(c, h.imports.ImportProctors)
}

func (h *Handler) bulkImport(c *gin.Context, run func(context.Context, string, []byte) (bulkimport.Summary, error)) {
	data, filename, err := readUpload(c, "file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	summary, err := run(c.Request.Context(), filename, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bulk upload complete", "summary": summary})
}

// ---------- Hackathon submissions ----------

func (h *Handler) ListAcceptedHackathons(c *gin.Context) {
	list, err := h.hacks.ListAcceptedFeed(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []hackathons.Submission{}
	}
	for i := range list {
		list[i].PosterPath = hackathons.NormalizeFileRef(list[i].PosterPath, h.cfg.UploadsBaseURL)
		list[i].CertificatePath = hackathons.NormalizeFileRef(list[i].CertificatePath, h.cfg.UploadsBaseURL)
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ListHackathons(c *gin.Context) {
	claims, _ := auth.CallerClaims(c)
	studentID, proctorID := "", ""
	switch claims.Role {
	case "student":
		studentID = claims.Subject
	case "proctor":
		proctorID = claims.Subject
	}
	list, err := h.hacks.ListSubmissions(c.Request.Context(), studentID, proctorID, c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []hackathons.Submission{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateHackathon(c *gin.Context) {
	claims, _ := auth.CallerClaims(c)
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title is required"})
		return
	}

	student, err := h.users.GetStudent(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
		return
	}

	sub := hackathons.Submission{
		StudentID: student.ID,
		ProctorID: student.ProctorID,
		Title:     title,
		Organizer: c.PostForm("organizer"),
		StartDate: parseDate(c.PostForm("startDate")),
		EndDate:   parseDate(c.PostForm("endDate")),
		Remarks:   c.PostForm("remarks"),
	}

	folder := studentFolder(student.Name, student.RegisterNo)
	if url, err := h.uploadFormFile(c, "poster", folder); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "poster upload failed"})
		return
	} else if url != "" {
		sub.PosterPath = url
	}
	if url, err := h.uploadFormFile(c, "certificate", folder); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "certificate upload failed"})
		return
	} else if url != "" {
		sub.CertificatePath = url
	}

	created, err := h.hacks.CreateSubmission(c.Request.Context(), sub)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

type reviewRequest struct {
	Status  string `json:"status" binding:"required"`
	Remarks string `json:"remarks"`
}

func (h *Handler) ReviewHackathon(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Status != hackathons.StatusAccepted && req.Status != hackathons.StatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status must be accepted or rejected"})
		return
	}
	sub, err := h.hacks.ReviewSubmission(c.Request.Context(), c.Param("id"), req.Status, req.Remarks)
	if err != nil {
		if errors.Is(err, hackathons.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Hackathon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sub)
}

// ---------- Upcoming hackathons ----------

func (h *Handler) ListUpcomingHackathons(c *gin.Context) {
	h.listUpcoming(c, true)
}

func (h *Handler) ListAllUpcomingHackathons(c *gin.Context) {
	h.listUpcoming(c, false)
}

func (h *Handler) listUpcoming(c *gin.Context, activeOnly bool) {
	list, err := h.hacks.ListUpcoming(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []hackathons.Upcoming{}
	}
	for i := range list {
		list[i].PosterPath = hackathons.NormalizeFileRef(list[i].PosterPath, h.cfg.UploadsBaseURL)
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateUpcomingHackathon(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title is required"})
		return
	}
	u := hackathons.Upcoming{
		Title:                title,
		Description:          c.PostForm("description"),
		RegistrationDeadline: parseDate(c.PostForm("registrationDeadline")),
		IsActive:             true,
	}
	if url, err := h.uploadFormFile(c, "poster", "admin/posters"); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "poster upload failed"})
		return
	} else if url != "" {
		u.PosterPath = url
	}
	created, err := h.hacks.CreateUpcoming(c.Request.Context(), u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

type upcomingUpdate struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	PosterPath           *string    `json:"posterPath"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
	IsActive             *bool      `json:"isActive"`
}

func (h *Handler) UpdateUpcomingHackathon(c *gin.Context) {
	var req upcomingUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	u, err := h.hacks.UpdateUpcoming(c.Request.Context(), c.Param("id"),
		req.Title, req.Description, req.PosterPath, req.RegistrationDeadline, req.IsActive)
	if err != nil {
		if errors.Is(err, hackathons.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Upcoming hackathon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUpcomingHackathon(c *gin.Context) {
	if err := h.hacks.DeleteUpcoming(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, hackathons.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Upcoming hackathon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Upcoming hackathon deleted successfully"})
}

// ---------- Teams ----------

type teamRequest struct {
	Name           string   `json:"name" binding:"required"`
	HackathonTitle string   `json:"hackathonTitle"`
	Members        []string `json:"members"`
}

func (h *Handler) CreateTeam(c *gin.Context) {
	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	claims, _ := auth.CallerClaims(c)
	t := hackathons.Team{
		Name:           req.Name,
		HackathonTitle: req.HackathonTitle,
		Members:        req.Members,
	}
	if claims.Role == "student" {
		t.LeaderID = &claims.Subject
		if !contains(t.Members, claims.Subject) {
			t.Members = append(t.Members, claims.Subject)
		}
	}
	created, err := h.hacks.CreateTeam(c.Request.Context(), t)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListTeams(c *gin.Context) {
	list, err := h.hacks.ListTeams(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []hackathons.Team{}
	}
	c.JSON(http.StatusOK, list)
}

// ---------- helpers ----------

func (h *Handler) enqueueReconcile(ctx context.Context) {
	if h.q == nil {
		return
	}
	if err := h.q.Publish(ctx, queue.Message{Type: queue.TypeReconcile}); err != nil {
		log.Printf("reconcile enqueue failed: %v", err)
	}
}

// uploadFormFile pushes an optional multipart file to Cloudinary. Returns ""
// when the field is absent or storage is not configured.
func (h *Handler) uploadFormFile(c *gin.Context, field, folder string) (string, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return "", nil
	}
	defer file.Close()
	if h.cloud == nil {
		return "", nil
	}
	result, err := h.cloud.Upload(file, header.Filename, folder)
	if err != nil {
		log.Printf("cloudinary upload failed: %v", err)
		metrics.Uploads.WithLabelValues("failed").Inc()
		return "", err
	}
	metrics.Uploads.WithLabelValues("ok").Inc()
	return result.SecureURL, nil
}

func readUpload(c *gin.Context, field string) ([]byte, string, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func studentFolder(name, registerNo string) string {
	return "students/" + safeSegment(name, "Student") + "_" + safeSegment(registerNo, "NoReg")
}

func safeSegment(s, fallback string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
	if strings.Trim(s, "_") == "" {
		return fallback
	}
	return s
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
