package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/usecase"
)

func (h *handlers) listNews(c *gin.Context) {
	var q usecase.FeedQuery
	var ok bool

	if q.Page, ok = positiveQuery(c, "page"); !ok {
		return
	}
	if q.Limit, ok = positiveQuery(c, "limit"); !ok {
		return
	}

	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		t, err := domain.ParseContentType(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		q.Type = t
	}

	if raw := strings.TrimSpace(c.Query("userId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "userId must be an integer")
			return
		}
		q.UserID = &id
	}

	page, err := h.feed.Compose(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// positiveQuery reads an optional positive integer; absent yields 0.
func positiveQuery(c *gin.Context, name string) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return 0, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}

type registrationRequest struct {
	UserID  int64 `json:"userId"`
	EventID int64 `json:"eventId"`
}

func (h *handlers) register(c *gin.Context) {
	var req registrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	reg, err := h.accounts.Register(c.Request.Context(), req.UserID, req.EventID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

func (h *handlers) registrations(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	items, err := h.accounts.Registrations(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type interestRequest struct {
	UserID int64  `json:"userId"`
	Tag    string `json:"tag"`
}

func (h *handlers) addInterest(c *gin.Context) {
	var req interestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	interest, err := h.accounts.AddInterest(c.Request.Context(), req.UserID, req.Tag)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interest)
}

func (h *handlers) suggestions(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	tags, err := h.accounts.SuggestInterests(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": tags})
}

type newItemRequest struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Content   string   `json:"content"`
	Source    string   `json:"source"`
	Type      string   `json:"type"`
	EventDate string   `json:"eventDate"`
	ImageURL  string   `json:"imageUrl"`
	Tags      []string `json:"tags"`
}

func (h *handlers) addNews(c *gin.Context) {
	var req newItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	item := domain.ContentItem{
		Title:    req.Title,
		Summary:  req.Summary,
		Body:     req.Content,
		Source:   req.Source,
		Type:     domain.ContentType(strings.TrimSpace(req.Type)),
		ImageURL: req.ImageURL,
		Tags:     req.Tags,
	}
	if raw := strings.TrimSpace(req.EventDate); raw != "" {
		at, err := dateparse.ParseIn(raw, time.UTC)
		if err != nil {
			badRequest(c, "eventDate is not a recognizable date")
			return
		}
		item.EventAt = &at
	}

	created, err := h.catalog.AddItem(c.Request.Context(), item)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
