package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"rollbook/internal/auth"
	"rollbook/internal/catalog"
	"rollbook/internal/config"
	"rollbook/internal/dateutil"
	"rollbook/internal/eligibility"
	"rollbook/internal/ledger"
	"rollbook/internal/medical"
	"rollbook/internal/queue"
	"rollbook/internal/report"
	"rollbook/internal/store"
)

// server wires the engine components behind the HTTP surface. All mutations
// come from one logical writer, so a single RWMutex around the store is the
// whole transactional boundary.
type server struct {
	cfg     config.App
	mu      sync.RWMutex
	store   *store.Store
	gateway store.Gateway
	catalog *catalog.Catalog
	users   map[string]auth.User
	ledger  *ledger.Service
	calc    *eligibility.Calculator
	medical *medical.Workflow
	reports *report.Generator
	queue   queue.Queue
}

func newServer(cfg config.App, st *store.Store, gw store.Gateway, cat *catalog.Catalog, q queue.Queue) *server {
	calc := eligibility.NewCalculator(st)
	return &server{
		cfg:     cfg,
		store:   st,
		gateway: gw,
		catalog: cat,
		users:   auth.DefaultUsers(),
		ledger:  ledger.NewService(st),
		calc:    calc,
		medical: medical.NewWorkflow(st, cat),
		reports: report.NewGenerator(st, cat, calc),
		queue:   q,
	}
}

// statusFor maps engine errors to HTTP status codes. Everything the engine
// returns is recoverable; nothing here ever terminates the process.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrHolidayBlocked),
		errors.Is(err, ledger.ErrDuplicateStudent):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrUnknownStudent):
		return http.StatusNotFound
	case errors.Is(err, dateutil.ErrInvalidDate),
		errors.Is(err, medical.ErrInvalidDateRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// ---- auth ----

func (s *server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, ok := auth.Authenticate(s.users, req.Username, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid login"})
		return
	}
	tokens, err := auth.Issue(user.Username, user.Role, s.cfg.JWTIssuer, s.cfg.JWTSigningKey, s.cfg.AccessTTL, s.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
		"role":          user.Role,
	})
}

func (s *server) handleToday(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"today": s.catalog.TodayText(time.Now())})
}

// ---- roster ----

func (s *server) handleListStudents(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{"students": s.ledger.Students()})
}

func (s *server) handleAddStudent(c *gin.Context) {
	var req struct {
		RegNo string `json:"reg_no" binding:"required"`
		Name  string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.AddStudent(req.RegNo, req.Name); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reg_no": req.RegNo})
}

func (s *server) handleDeleteStudent(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.DeleteStudent(c.Param("regNo")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- holidays ----

func (s *server) handleListHolidays(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{"holidays": s.ledger.Holidays()})
}

func (s *server) handleAddHoliday(c *gin.Context) {
	var req struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.AddHoliday(req.Date); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"date": req.Date})
}

func (s *server) handleRemoveHoliday(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.RemoveHoliday(c.Param("date")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- attendance ----

// subjectFor resolves which subject the caller may record for: lecturers are
// pinned to their own subject, admins pick any catalog subject.
func (s *server) subjectFor(c *gin.Context, requested string) (string, bool) {
	claims, _ := auth.FromContext(c)
	if claims.Role == string(auth.RoleLecturer) {
		sub := s.catalog.ForLecturer(claims.Subject)
		if sub == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "no subject assigned"})
			return "", false
		}
		if requested != "" && requested != sub.Code {
			c.JSON(http.StatusForbidden, gin.H{"error": "subject not owned"})
			return "", false
		}
		return sub.Code, true
	}
	if s.catalog.ByCode(requested) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown subject"})
		return "", false
	}
	return requested, true
}

func (s *server) handleRecordAttendance(c *gin.Context) {
	var req struct {
		SubjectCode string            `json:"subject_code"`
		Date        string            `json:"date" binding:"required"`
		Statuses    map[string]string `json:"statuses" binding:"required"`
		Kind        string            `json:"kind"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	code, ok := s.subjectFor(c, req.SubjectCode)
	if !ok {
		return
	}
	kind := store.KindStudent
	if req.Kind == string(store.KindLecturer) {
		kind = store.KindLecturer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Record(code, req.Date, req.Statuses, kind); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject_code": code, "date": req.Date, "marks": len(req.Statuses)})
}

// handleRecordOwnAttendance is the lecturer marking their own presence for a
// date, one mark in the lecturer grid.
func (s *server) handleRecordOwnAttendance(c *gin.Context) {
	var req struct {
		Date   string `json:"date" binding:"required"`
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims, _ := auth.FromContext(c)
	code, ok := s.subjectFor(c, "")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.ledger.Record(code, req.Date, map[string]string{claims.Subject: req.Status}, store.KindLecturer)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject_code": code, "date": req.Date})
}

func (s *server) handleQueryAttendance(c *gin.Context) {
	code := c.Query("subject_code")
	date := c.Query("date")
	kind := store.KindStudent
	if c.Query("kind") == string(store.KindLecturer) {
		kind = store.KindLecturer
	}
	if code == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject_code and date required"})
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cell, err := s.ledger.Cell(code, date, kind)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject_code": code, "date": date, "statuses": cell})
}

// ---- medicals ----

func (s *server) handleListMedicals(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{"medicals": s.medical.Medicals()})
}

func (s *server) handleSubmitMedical(c *gin.Context) {
	var req struct {
		RegNo string `json:"reg_no" binding:"required"`
		Scope string `json:"scope" binding:"required"`
		Start string `json:"start" binding:"required"`
		End   string `json:"end" binding:"required"`
		Note  string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	created, err := s.medical.Submit(req.RegNo, req.Scope, req.Start, req.End, req.Note)
	s.mu.Unlock()
	if err != nil {
		fail(c, err)
		return
	}
	for _, n := range created {
		msg, merr := queue.NotificationMessage(n)
		if merr != nil {
			continue
		}
		if perr := s.queue.Publish(c.Request.Context(), msg); perr != nil {
			log.Printf("queue publish failed: %v", perr)
		}
	}
	c.JSON(http.StatusCreated, gin.H{"notified": len(created)})
}

func (s *server) handleDeleteMedical(c *gin.Context) {
	var req struct {
		RegNo string `json:"reg_no" binding:"required"`
		Scope string `json:"scope" binding:"required"`
		Start string `json:"start" binding:"required"`
		End   string `json:"end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	removed := s.medical.Delete(req.RegNo, req.Scope, req.Start, req.End)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// ---- notifications ----

func (s *server) handleListNotifications(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{"notifications": s.medical.For(claims.Subject)})
}

func (s *server) handleMarkAllRead(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	s.mu.Lock()
	s.medical.MarkAllRead(claims.Subject)
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

// ---- reports ----

func (s *server) handleFullReport(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.String(http.StatusOK, s.reports.FullStudentReport())
}

func (s *server) handleSubjectSummary(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	lecturer := claims.Subject
	if claims.Role == string(auth.RoleAdmin) {
		if q := c.Query("lecturer"); q != "" {
			lecturer = q
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.String(http.StatusOK, s.reports.SubjectSummary(lecturer))
}

// ---- persistence ----

func (s *server) handleSave(c *gin.Context) {
	s.mu.RLock()
	err := s.gateway.Save(c.Request.Context(), s.store)
	s.mu.RUnlock()
	if err != nil {
		// in-memory state is untouched; report and carry on
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// saveOnShutdown is the best-effort final save during graceful shutdown.
func (s *server) saveOnShutdown(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.gateway.Save(ctx, s.store); err != nil {
		log.Printf("final save failed: %v", err)
	}
}
