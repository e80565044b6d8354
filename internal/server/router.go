package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/notebot/internal/metrics"
	"github.com/MarcoPoloResearchLab/notebot/internal/notes"
	"github.com/MarcoPoloResearchLab/notebot/internal/personas"
	"github.com/MarcoPoloResearchLab/notebot/internal/registry"
	"github.com/MarcoPoloResearchLab/notebot/internal/store"
	"github.com/MarcoPoloResearchLab/notebot/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userIDContextKey = "notebot_user_id"

var (
	errMissingStateStore = errors.New("state store dependency required")
	errMissingMetrics    = errors.New("metrics registry dependency required")
)

// StateStore is the set of store operations served over HTTP.
type StateStore interface {
	AddNote(ctx context.Context, userID users.ID, text notes.NoteText) (notes.AddResult, error)
	ListRecentNotes(ctx context.Context, userID users.ID, limit int) ([]notes.Note, error)
	ListAllNotes(ctx context.Context, userID users.ID) ([]notes.Note, error)
	CountNotes(ctx context.Context, userID users.ID) (int64, error)
	UpdateNote(ctx context.Context, userID users.ID, noteID notes.NoteID, text notes.NoteText) (bool, error)
	DeleteNote(ctx context.Context, userID users.ID, noteID notes.NoteID) (bool, error)
	SearchNotes(ctx context.Context, userID users.ID, substring string, limit int) ([]notes.Note, error)
	WeeklyActivityStats(ctx context.Context, userID users.ID) (notes.WeeklyStats, error)
	ExportNotes(ctx context.Context, userID users.ID, displayName string) (string, error)
	ListModels(ctx context.Context) ([]registry.Model, error)
	GetActiveModel(ctx context.Context) (registry.Model, error)
	SetActiveModel(ctx context.Context, modelID int64) (registry.Model, error)
	ListCharacters(ctx context.Context) ([]personas.CharacterSummary, error)
	GetCharacterByID(ctx context.Context, characterID int64) (personas.Character, bool, error)
	SetUserCharacter(ctx context.Context, userID users.ID, characterID int64) (personas.Character, error)
	GetUserCharacter(ctx context.Context, userID users.ID) (personas.Character, error)
	GetCharacterPromptForUser(ctx context.Context, userID users.ID) (string, error)
}

type Dependencies struct {
	Store   StateStore
	Metrics *metrics.Registry
	Logger  *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Store == nil {
		return nil, errMissingStateStore
	}
	if deps.Metrics == nil {
		return nil, errMissingMetrics
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(metricsMiddleware(deps.Metrics))

	handler := &httpHandler{
		store:   deps.Store,
		metrics: deps.Metrics,
		logger:  logger,
	}

	router.GET("/metrics", handler.handleMetrics)

	router.GET("/models", handler.handleListModels)
	router.GET("/models/active", handler.handleGetActiveModel)
	router.PUT("/models/active", handler.handleSetActiveModel)

	router.GET("/characters", handler.handleListCharacters)
	router.GET("/characters/:character_id", handler.handleGetCharacter)

	user := router.Group("/users/:user_id")
	user.Use(handler.resolveUser)
	user.POST("/notes", handler.handleAddNote)
	user.GET("/notes", handler.handleListRecentNotes)
	user.GET("/notes/all", handler.handleListAllNotes)
	user.GET("/notes/search", handler.handleSearchNotes)
	user.GET("/notes/export", handler.handleExportNotes)
	user.PUT("/notes/:note_id", handler.handleUpdateNote)
	user.DELETE("/notes/:note_id", handler.handleDeleteNote)
	user.GET("/stats/weekly", handler.handleWeeklyStats)
	user.GET("/character", handler.handleGetUserCharacter)
	user.PUT("/character", handler.handleSetUserCharacter)
	user.GET("/character/prompt", handler.handleGetCharacterPrompt)

	return router, nil
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}

type httpHandler struct {
	store   StateStore
	metrics *metrics.Registry
	logger  *zap.Logger
}

type noteTextPayload struct {
	Text string `json:"text"`
}

type idPayload struct {
	ID int64 `json:"id"`
}

type notePayload struct {
	ID               int64  `json:"id"`
	Text             string `json:"text"`
	CreatedAtSeconds int64  `json:"created_at_s"`
}

type notesResponsePayload struct {
	Notes []notePayload `json:"notes"`
}

type weeklyStatsPayload struct {
	Created int64 `json:"created"`
	Deleted int64 `json:"deleted"`
	Total   int64 `json:"total"`
}

type modelPayload struct {
	ID     int64  `json:"id"`
	Key    string `json:"key"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

type characterSummaryPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type characterPayload struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

func (h *httpHandler) resolveUser(c *gin.Context) {
	userID, err := users.ParseID(c.Param("user_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
		return
	}
	c.Set(userIDContextKey, userID)
	c.Next()
}

func (h *httpHandler) userID(c *gin.Context) users.ID {
	value, _ := c.Get(userIDContextKey)
	userID, _ := value.(users.ID)
	return userID
}

func (h *httpHandler) handleAddNote(c *gin.Context) {
	text, ok := h.bindNoteText(c)
	if !ok {
		return
	}

	result, err := h.store.AddNote(c.Request.Context(), h.userID(c), text)
	if err != nil {
		h.respondStoreError(c, "add note", err)
		return
	}
	if result.Rejected {
		h.metrics.Counter("notes_quota_rejections_total").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": "quota_exceeded", "limit": notes.MaxNotesPerUser})
		return
	}
	h.metrics.Counter("notes_created_total").Inc()
	c.JSON(http.StatusCreated, idPayload{ID: result.ID.Int64()})
}

func (h *httpHandler) handleListRecentNotes(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	found, err := h.store.ListRecentNotes(c.Request.Context(), h.userID(c), limit)
	if err != nil {
		h.respondStoreError(c, "list recent notes", err)
		return
	}
	c.JSON(http.StatusOK, toNotesResponse(found))
}

func (h *httpHandler) handleListAllNotes(c *gin.Context) {
	found, err := h.store.ListAllNotes(c.Request.Context(), h.userID(c))
	if err != nil {
		h.respondStoreError(c, "list all notes", err)
		return
	}
	c.JSON(http.StatusOK, toNotesResponse(found))
}

func (h *httpHandler) handleSearchNotes(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_query"})
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	found, err := h.store.SearchNotes(c.Request.Context(), h.userID(c), query, limit)
	if err != nil {
		h.respondStoreError(c, "search notes", err)
		return
	}
	c.JSON(http.StatusOK, toNotesResponse(found))
}

func (h *httpHandler) handleExportNotes(c *gin.Context) {
	document, err := h.store.ExportNotes(c.Request.Context(), h.userID(c), c.Query("name"))
	if err != nil {
		h.respondStoreError(c, "export notes", err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=notes_"+h.userID(c).String()+".txt")
	c.String(http.StatusOK, document)
}

func (h *httpHandler) handleUpdateNote(c *gin.Context) {
	noteID, ok := parseNoteID(c)
	if !ok {
		return
	}
	text, ok := h.bindNoteText(c)
	if !ok {
		return
	}

	updated, err := h.store.UpdateNote(c.Request.Context(), h.userID(c), noteID, text)
	if err != nil {
		h.respondStoreError(c, "update note", err)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "note_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": noteID.Int64(), "text": text.String()})
}

func (h *httpHandler) handleDeleteNote(c *gin.Context) {
	noteID, ok := parseNoteID(c)
	if !ok {
		return
	}

	deleted, err := h.store.DeleteNote(c.Request.Context(), h.userID(c), noteID)
	if err != nil {
		h.respondStoreError(c, "delete note", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "note_not_found"})
		return
	}
	h.metrics.Counter("notes_deleted_total").Inc()
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleWeeklyStats(c *gin.Context) {
	stats, err := h.store.WeeklyActivityStats(c.Request.Context(), h.userID(c))
	if err != nil {
		h.respondStoreError(c, "weekly stats", err)
		return
	}
	total, err := h.store.CountNotes(c.Request.Context(), h.userID(c))
	if err != nil {
		h.respondStoreError(c, "count notes", err)
		return
	}
	c.JSON(http.StatusOK, weeklyStatsPayload{Created: stats.Created, Deleted: stats.Deleted, Total: total})
}

func (h *httpHandler) handleListModels(c *gin.Context) {
	models, err := h.store.ListModels(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, "list models", err)
		return
	}
	response := make([]modelPayload, 0, len(models))
	for _, model := range models {
		response = append(response, toModelPayload(model))
	}
	c.JSON(http.StatusOK, gin.H{"models": response})
}

func (h *httpHandler) handleGetActiveModel(c *gin.Context) {
	model, err := h.store.GetActiveModel(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, "get active model", err)
		return
	}
	c.JSON(http.StatusOK, toModelPayload(model))
}

func (h *httpHandler) handleSetActiveModel(c *gin.Context) {
	var request idPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	model, err := h.store.SetActiveModel(c.Request.Context(), request.ID)
	if err != nil {
		h.respondStoreError(c, "set active model", err)
		return
	}
	c.JSON(http.StatusOK, toModelPayload(model))
}

func (h *httpHandler) handleListCharacters(c *gin.Context) {
	summaries, err := h.store.ListCharacters(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, "list characters", err)
		return
	}
	response := make([]characterSummaryPayload, 0, len(summaries))
	for _, summary := range summaries {
		response = append(response, characterSummaryPayload{ID: summary.ID, Name: summary.Name})
	}
	c.JSON(http.StatusOK, gin.H{"characters": response})
}

func (h *httpHandler) handleGetCharacter(c *gin.Context) {
	characterID, err := strconv.ParseInt(c.Param("character_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_character_id"})
		return
	}
	character, found, err := h.store.GetCharacterByID(c.Request.Context(), characterID)
	if err != nil {
		h.respondStoreError(c, "get character", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown_character"})
		return
	}
	c.JSON(http.StatusOK, toCharacterPayload(character))
}

func (h *httpHandler) handleGetUserCharacter(c *gin.Context) {
	character, err := h.store.GetUserCharacter(c.Request.Context(), h.userID(c))
	if err != nil {
		h.respondStoreError(c, "get user character", err)
		return
	}
	c.JSON(http.StatusOK, toCharacterPayload(character))
}

func (h *httpHandler) handleSetUserCharacter(c *gin.Context) {
	var request idPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	character, err := h.store.SetUserCharacter(c.Request.Context(), h.userID(c), request.ID)
	if err != nil {
		h.respondStoreError(c, "set user character", err)
		return
	}
	c.JSON(http.StatusOK, toCharacterPayload(character))
}

func (h *httpHandler) handleGetCharacterPrompt(c *gin.Context) {
	prompt, err := h.store.GetCharacterPromptForUser(c.Request.Context(), h.userID(c))
	if err != nil {
		h.respondStoreError(c, "get character prompt", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}

func (h *httpHandler) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

func (h *httpHandler) bindNoteText(c *gin.Context) (notes.NoteText, bool) {
	var request noteTextPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return "", false
	}
	text, err := notes.NewNoteText(request.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_text"})
		return "", false
	}
	return text, true
}

func (h *httpHandler) respondStoreError(c *gin.Context, operation string, err error) {
	switch {
	case store.IsNotFound(err):
		code := "unknown_model"
		if errors.Is(err, personas.ErrUnknownCharacter) {
			code = "unknown_character"
		}
		c.JSON(http.StatusNotFound, gin.H{"error": code})
	case store.IsBusy(err):
		h.metrics.Counter("storage_busy_total").Inc()
		h.logger.Warn("storage busy", zap.String("operation", operation), zap.Error(err), requestIDField(c))
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage_busy"})
	case store.IsConfigurationError(err):
		h.logger.Error("store configuration error", zap.String("operation", operation), zap.Error(err), requestIDField(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "configuration_error"})
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err), requestIDField(c))
		response := gin.H{"error": "internal_error"}
		var serviceErr *notes.ServiceError
		if errors.As(err, &serviceErr) {
			response["code"] = serviceErr.Code()
		}
		c.JSON(http.StatusInternalServerError, response)
	}
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return notes.DefaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
		return 0, false
	}
	return limit, true
}

func parseNoteID(c *gin.Context) (notes.NoteID, bool) {
	value, err := strconv.ParseInt(c.Param("note_id"), 10, 64)
	if err == nil {
		noteID, idErr := notes.NewNoteID(value)
		if idErr == nil {
			return noteID, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_note_id"})
	return 0, false
}

func toNotesResponse(found []notes.Note) notesResponsePayload {
	response := notesResponsePayload{Notes: make([]notePayload, 0, len(found))}
	for _, note := range found {
		response.Notes = append(response.Notes, notePayload{
			ID:               note.ID,
			Text:             note.Text,
			CreatedAtSeconds: note.CreatedAtSeconds,
		})
	}
	return response
}

func toModelPayload(model registry.Model) modelPayload {
	return modelPayload{ID: model.ID, Key: model.Key, Label: model.Label, Active: model.Active}
}

func toCharacterPayload(character personas.Character) characterPayload {
	return characterPayload{ID: character.ID, Name: character.Name, Prompt: character.Prompt}
}
