// Package api exposes HTTP handlers for the habit service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/habits/internal/auth"
	"example.com/habits/internal/domain"
	"example.com/habits/internal/persistence"
)

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	service   *domain.Service
	streaks   *domain.StreakCalculator
	heatmap   *domain.HeatmapAggregator
	analytics *domain.Analytics
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, streaks *domain.StreakCalculator, heatmap *domain.HeatmapAggregator, analytics *domain.Analytics) *Handler {
	return &Handler{service: service, streaks: streaks, heatmap: heatmap, analytics: analytics}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/habits", h.habits)
	mux.HandleFunc("/habits/", h.habitSubtree)
	mux.HandleFunc("/stats/heatmap", h.statsHeatmap)
	mux.HandleFunc("/stats/streaks", h.statsStreaks)
	mux.HandleFunc("/stats/overview", h.statsOverview)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) habits(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createHabit(w, r)
	case http.MethodGet:
		h.listHabits(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) habitSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/habits/")
	switch {
	case rest == "log":
		h.logCompletion(w, r)
	case strings.HasPrefix(rest, "logs/"):
		h.logsForDate(w, r, strings.TrimPrefix(rest, "logs/"))
	case strings.HasSuffix(rest, "/history"):
		h.habitHistory(w, r, strings.TrimSuffix(rest, "/history"))
	case rest != "":
		h.removeHabit(w, r, rest)
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "missing habit id")
	}
}

func (h *Handler) createHabit(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	var req CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	habit, err := h.service.CreateHabit(r.Context(), domain.CreateHabitInput{
		OwnerID:     claims.Subject,
		Name:        req.Name,
		Category:    req.Category,
		TargetType:  domain.TargetType(req.TargetType),
		TargetValue: req.TargetValue,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toHabitView(*habit))
}

func (h *Handler) listHabits(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeHabitsRead, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	habits, err := h.service.ListHabits(r.Context(), claims.Subject, activeOnly)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]HabitView, 0, len(habits))
	for _, habit := range habits {
		views = append(views, toHabitView(habit))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) removeHabit(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	mode, err := h.service.RemoveHabit(r.Context(), claims.Subject, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RemoveHabitResponse{ID: id, Removed: string(mode)})
}

func (h *Handler) logCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	var req LogCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.HabitID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "habitId is required")
		return
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	record, err := h.service.LogCompletion(r.Context(), domain.LogCompletionInput{
		OwnerID:   claims.Subject,
		HabitID:   req.HabitID,
		Date:      date,
		Completed: req.Completed,
		Progress:  req.Progress,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLogView(*record))
}

func (h *Handler) logsForDate(w http.ResponseWriter, r *http.Request, rawDate string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeHabitsRead, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	date, err := domain.ParseDate(rawDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	records, err := h.service.LogsForDate(r.Context(), claims.Subject, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]LogView, 0, len(records))
	for _, record := range records {
		views = append(views, toLogView(record))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) habitHistory(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeHabitsRead, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	records, next, err := h.service.HabitHistory(r.Context(), claims.Subject, id, cursor, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]LogView, 0, len(records))
	for _, record := range records {
		items = append(items, toLogView(record))
	}
	writeJSON(w, http.StatusOK, HabitHistoryResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) statsHeatmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeHabitsRead, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	windowDays := domain.DefaultHeatmapWindowDays
	if raw := r.URL.Query().Get("windowDays"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "validation_failed", "windowDays must be a positive integer")
			return
		}
		windowDays = parsed
	}

	heatmap, err := h.heatmap.ComputeHeatmap(r.Context(), claims.Subject, windowDays)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, heatmap)
}

func (h *Handler) statsStreaks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeHabitsRead, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	summaries, err := h.streaks.ComputeStreaks(r.Context(), claims.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]StreakView, 0, len(summaries))
	for _, summary := range summaries {
		views = append(views, toStreakView(summary))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) statsOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeHabitsRead, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	result, err := h.analytics.GetAnalytics(r.Context(), claims.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	streaks := make([]StreakView, 0, len(result.Streaks))
	for _, summary := range result.Streaks {
		streaks = append(streaks, toStreakView(summary))
	}
	writeJSON(w, http.StatusOK, AnalyticsResponse{
		Heatmap: result.Heatmap,
		Streaks: streaks,
	})
}

// requireScope resolves claims from the request context and enforces that at
// least one of the scopes is present.
func requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+strings.Join(scopes, " or ")+" required")
	return nil, false
}

// CreateHabitRequest is the payload for POST /habits.
type CreateHabitRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	TargetType  string `json:"targetType"`
	TargetValue int    `json:"targetValue"`
}

// LogCompletionRequest is the payload for POST /habits/log.
type LogCompletionRequest struct {
	HabitID   string `json:"habitId"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	Progress  int    `json:"progress"`
}

// HabitView exposes a habit definition to the client.
type HabitView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	TargetType  string    `json:"targetType"`
	TargetValue int       `json:"targetValue"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LogView exposes a single day's completion record.
type LogView struct {
	HabitID   string `json:"habitId"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	Progress  int    `json:"progress"`
}

// StreakView exposes derived streak state for one habit.
type StreakView struct {
	HabitID       string `json:"habitId"`
	Name          string `json:"name"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
}

// RemoveHabitResponse reports how DELETE /habits/{id} disposed of the habit.
type RemoveHabitResponse struct {
	ID      string `json:"id"`
	Removed string `json:"removed"`
}

// HabitHistoryResponse packages a page of log history.
type HabitHistoryResponse struct {
	Items      []LogView `json:"items"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// AnalyticsResponse merges the heatmap and streak computations.
type AnalyticsResponse struct {
	Heatmap map[string]int `json:"heatmap"`
	Streaks []StreakView   `json:"streaks"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toHabitView(habit domain.Habit) HabitView {
	return HabitView{
		ID:          habit.ID,
		Name:        habit.Name,
		Category:    habit.Category,
		TargetType:  string(habit.TargetType),
		TargetValue: habit.TargetValue,
		IsActive:    habit.IsActive,
		CreatedAt:   habit.CreatedAt,
	}
}

func toLogView(record domain.DailyLog) LogView {
	return LogView{
		HabitID:   record.HabitID,
		Date:      domain.FormatDate(record.Date),
		Completed: record.Completed,
		Progress:  record.Progress,
	}
}

func toStreakView(summary domain.StreakSummary) StreakView {
	return StreakView{
		HabitID:       summary.HabitID,
		Name:          summary.Name,
		CurrentStreak: summary.CurrentStreak,
		LongestStreak: summary.LongestStreak,
	}
}
