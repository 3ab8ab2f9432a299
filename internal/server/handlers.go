package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gauthierbraillon/postdeck/internal/calendar"
	"github.com/gauthierbraillon/postdeck/internal/content"
	"github.com/gauthierbraillon/postdeck/internal/store"
)

type feedbackRequest struct {
	Feedback *string `json:"feedback"`
}

type noteRequest struct {
	Note *string `json:"note"`
}

type textRequest struct {
	Text *string `json:"text" binding:"required"`
}

type createPostRequest struct {
	Title        string           `json:"title"`
	Content      string           `json:"content" binding:"required"`
	Platform     content.Platform `json:"platform"`
	ScheduledFor *time.Time       `json:"scheduled_for"`
}

// load reads both tables. A backend failure answers 502 so the client can
// tell it apart from an empty calendar.
func (s *Server) load(c *gin.Context) ([]content.Item, bool) {
	items, err := s.repo.Load(c.Request.Context(), s.fetchLimit)
	if err != nil {
		requestLogger(c, s.logger).WithError(err).Error("Backend read failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return nil, false
	}
	s.metrics.observeLoad(len(items))
	return items, true
}

func (s *Server) listItems(c *gin.Context) {
	opts := content.FeedOptions{}

	for _, p := range splitList(c.Query("platform")) {
		opts.Platforms = append(opts.Platforms, content.Platform(p))
	}
	for _, raw := range splitList(c.Query("status")) {
		status, err := content.ParseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts.Statuses = append(opts.Statuses, status)
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		opts.Limit = n
	}

	items, ok := s.load(c)
	if !ok {
		return
	}
	feed := content.NewFeed(s.location)
	feed.AddItems(items)
	c.JSON(http.StatusOK, gin.H{"items": feed.Items(opts)})
}

func (s *Server) getCalendar(c *gin.Context) {
	g, err := calendar.ParseGranularity(c.DefaultQuery("view", string(calendar.Month)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref := s.now().In(s.location)
	if raw := c.Query("date"); raw != "" {
		ref, err = time.ParseInLocation(calendar.DateLayout, raw, s.location)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}

	items, ok := s.load(c)
	if !ok {
		return
	}
	p := calendar.New(calendar.WithLocation(s.location), calendar.WithClock(s.now))
	c.JSON(http.StatusOK, p.Partition(items, ref, g))
}

func (s *Server) getStats(c *gin.Context) {
	items, ok := s.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, content.Summarize(items))
}

func (s *Server) patchFeedback(c *gin.Context) {
	ref, ok := refParam(c)
	if !ok {
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var raw string
	if req.Feedback != nil {
		raw = *req.Feedback
	}
	fb, err := content.ParseFeedback(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = s.repo.UpdateFeedback(c.Request.Context(), ref, fb)
	s.writeResult(c, "feedback", ref, err, gin.H{"ref": ref, "feedback": fb})
}

func (s *Server) patchNote(c *gin.Context) {
	ref, ok := refParam(c)
	if !ok {
		return
	}
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var note string
	if req.Note != nil {
		note = *req.Note
	}

	err := s.repo.UpdateNote(c.Request.Context(), ref, note)
	s.writeResult(c, "note", ref, err, gin.H{"ref": ref, "feedback_note": note})
}

func (s *Server) patchText(c *gin.Context) {
	ref, ok := refParam(c)
	if !ok {
		return
	}
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.repo.UpdateText(c.Request.Context(), ref, *req.Text)
	s.writeResult(c, "text", ref, err, gin.H{"ref": ref, "text": *req.Text})
}

func (s *Server) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref, err := s.repo.CreatePost(c.Request.Context(), content.NewPost{
		Title:        req.Title,
		Content:      req.Content,
		Platform:     req.Platform,
		ScheduledFor: req.ScheduledFor,
	})
	s.metrics.ObserveWrite("create", err)
	if err != nil {
		requestLogger(c, s.logger).WithError(err).Error("Create post failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ref": ref})
}

func (s *Server) deletePost(c *gin.Context) {
	ref := content.ScheduledRef(c.Param("id"))
	err := s.repo.DeletePost(c.Request.Context(), ref.ID)
	s.metrics.ObserveWrite("delete", err)
	if err != nil {
		s.writeError(c, ref, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeResult maps a write outcome onto a response.
func (s *Server) writeResult(c *gin.Context, field string, ref content.Ref, err error, body gin.H) {
	s.metrics.ObserveWrite(field, err)
	if err != nil {
		s.writeError(c, ref, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) writeError(c *gin.Context, ref content.Ref, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, content.ErrImmutable):
		status = http.StatusConflict
	}
	requestLogger(c, s.logger).WithError(err).WithField("ref", ref.String()).Warn("Write failed")
	c.JSON(status, gin.H{"error": err.Error(), "ref": ref})
}

func refParam(c *gin.Context) (content.Ref, bool) {
	kind, err := content.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return content.Ref{}, false
	}
	return content.Ref{Kind: kind, ID: c.Param("id")}, true
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
