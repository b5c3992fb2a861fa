// ABOUTME: Typed record collections over a key/value backend, one Cell per key.
// ABOUTME: Validates input; persistence itself is fail-open and never errors.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/big3/internal/kv"
	"github.com/harperreed/big3/internal/models"
)

// Collection keys.
const (
	KeyProfile     = "profile"
	KeySessions    = "sessions"
	KeyMeals       = "meals"
	KeyWeights     = "weights"
	KeyWeeklyMenu  = "weeklyMenu"
	KeyGoals       = "goals"
	KeyChatHistory = "chatHistory"
	KeyChatTokens  = "chatTokenTotals"
)

var (
	// ErrInvalid wraps every input validation failure.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound is returned when a record addressed by id or date does not exist.
	ErrNotFound = errors.New("not found")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

// Option configures a Repository.
type Option func(*Repository)

// WithPrefix namespaces every key, e.g. "big3:".
func WithPrefix(prefix string) Option {
	return func(r *Repository) { r.prefix = prefix }
}

// Repository owns the athlete's collections.
type Repository struct {
	backend kv.Backend
	logger  *log.Logger
	prefix  string

	profile  *kv.Cell[models.Profile]
	sessions *kv.Cell[[]models.TrainingSession]
	meals    *kv.Cell[[]models.DayMealRecord]
	weights  *kv.Cell[[]models.WeightEntry]
	menu     *kv.Cell[models.WeeklyMenu]
	goals    *kv.Cell[models.Goals]
	chat     *kv.Cell[[]models.ChatMessage]
	tokens   *kv.Cell[models.TokenUsage]

	readyOnce sync.Once
	ready     chan struct{}
}

// New builds a repository. Every collection starts at its default until Hydrate.
func New(backend kv.Backend, logger *log.Logger, opts ...Option) *Repository {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Repository{backend: backend, logger: logger}
	for _, o := range opts {
		o(r)
	}

	l := logger.WithPrefix("store")
	r.profile = kv.NewCell(backend, r.key(KeyProfile), models.DefaultProfile(), l)
	r.sessions = kv.NewCell(backend, r.key(KeySessions), []models.TrainingSession{}, l)
	r.meals = kv.NewCell(backend, r.key(KeyMeals), []models.DayMealRecord{}, l)
	r.weights = kv.NewCell(backend, r.key(KeyWeights), []models.WeightEntry{}, l)
	r.menu = kv.NewCell(backend, r.key(KeyWeeklyMenu), models.WeeklyMenu{}, l)
	r.goals = kv.NewCell(backend, r.key(KeyGoals), models.Goals{}, l)
	r.chat = kv.NewCell(backend, r.key(KeyChatHistory), []models.ChatMessage{}, l)
	r.tokens = kv.NewCell(backend, r.key(KeyChatTokens), models.TokenUsage{}, l)
	return r
}

func (r *Repository) key(name string) string {
	return r.prefix + name
}

// Backend returns the underlying store.
func (r *Repository) Backend() kv.Backend {
	return r.backend
}

// Close closes the backend.
func (r *Repository) Close() error {
	return r.backend.Close()
}

type hydrator interface {
	Hydrate(ctx context.Context)
	HydrateAsync(ctx context.Context)
	Ready() <-chan struct{}
}

func (r *Repository) cells() []hydrator {
	return []hydrator{r.profile, r.sessions, r.meals, r.weights, r.menu, r.goals, r.chat, r.tokens}
}

// Hydrate loads every collection and returns when all are loaded.
func (r *Repository) Hydrate(ctx context.Context) {
	for _, c := range r.cells() {
		c.Hydrate(ctx)
	}
}

// HydrateAsync loads every collection in the background. Ready closes when done.
func (r *Repository) HydrateAsync(ctx context.Context) {
	for _, c := range r.cells() {
		c.HydrateAsync(ctx)
	}
}

// Ready is closed once every collection has hydrated.
func (r *Repository) Ready() <-chan struct{} {
	r.readyOnce.Do(func() {
		r.ready = make(chan struct{})
		go func() {
			for _, c := range r.cells() {
				<-c.Ready()
			}
			close(r.ready)
		}()
	})
	return r.ready
}

// Profile returns the athlete profile.
func (r *Repository) Profile() models.Profile {
	return r.profile.Get()
}

// SaveProfile overwrites the profile.
func (r *Repository) SaveProfile(p models.Profile) error {
	if err := p.Validate(); err != nil {
		return invalid(err)
	}
	r.profile.Set(p)
	return nil
}

// Sessions returns all sessions, most recently added first.
func (r *Repository) Sessions() []models.TrainingSession {
	return append([]models.TrainingSession(nil), r.sessions.Get()...)
}

// SessionByDate returns the first session on date.
func (r *Repository) SessionByDate(date string) (models.TrainingSession, bool) {
	for _, s := range r.sessions.Get() {
		if s.Date == date {
			return s.Clone(), true
		}
	}
	return models.TrainingSession{}, false
}

// SessionForDate returns the stored session for date, or an unsaved one
// seeded from that weekday's menu template. The bool reports whether the
// session was already stored.
//
// Callers mutate the copy and pass it to SaveSession. The store assumes a
// single writer, so a concurrent read-modify-save on the same date keeps
// only the last save.
func (r *Repository) SessionForDate(date string) (models.TrainingSession, bool, error) {
	if s, ok := r.SessionByDate(date); ok {
		return s, true, nil
	}
	t, err := models.ParseDate(date)
	if err != nil {
		return models.TrainingSession{}, false, invalid(err)
	}
	s := models.NewTrainingSession(date).WithTemplate(r.WeeklyMenu().Day(t.Weekday()))
	return *s, false, nil
}

// SessionByID finds a session by id or unique id prefix.
func (r *Repository) SessionByID(idOrPrefix string) (models.TrainingSession, error) {
	var matches []models.TrainingSession
	for _, s := range r.sessions.Get() {
		if strings.HasPrefix(s.ID, idOrPrefix) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return models.TrainingSession{}, fmt.Errorf("session %s: %w", idOrPrefix, ErrNotFound)
	case 1:
		return matches[0].Clone(), nil
	default:
		return models.TrainingSession{}, fmt.Errorf("ambiguous prefix %s: matches multiple sessions", idOrPrefix)
	}
}

// SaveSession upserts s by id.
func (r *Repository) SaveSession(s models.TrainingSession) error {
	if err := validateSession(s); err != nil {
		return invalid(err)
	}
	s = s.Clone()
	r.sessions.Update(func(list []models.TrainingSession) []models.TrainingSession {
		return UpsertSession(list, s)
	})
	return nil
}

func validateSession(s models.TrainingSession) error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if _, err := models.ParseDate(s.Date); err != nil {
		return err
	}
	for _, ex := range s.Exercises {
		for i, st := range ex.Sets {
			if st.Weight < 0 || st.Reps < 0 {
				return fmt.Errorf("%s set %d: weight and reps must not be negative", ex.Name, i+1)
			}
		}
	}
	return nil
}

// Meals returns every day record, newest date first.
func (r *Repository) Meals() []models.DayMealRecord {
	return append([]models.DayMealRecord(nil), r.meals.Get()...)
}

// MealsOn returns the record for date.
func (r *Repository) MealsOn(date string) (models.DayMealRecord, bool) {
	for _, rec := range r.meals.Get() {
		if rec.Date == date {
			return models.DayMealRecord{Date: rec.Date, Entries: append([]models.MealEntry(nil), rec.Entries...)}, true
		}
	}
	return models.DayMealRecord{Date: date}, false
}

// AddMeal stores e under date, assigning an id and time when missing.
func (r *Repository) AddMeal(date string, e models.MealEntry) (models.MealEntry, error) {
	if _, err := models.ParseDate(date); err != nil {
		return models.MealEntry{}, invalid(err)
	}
	if err := e.Validate(); err != nil {
		return models.MealEntry{}, invalid(err)
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Time == "" {
		e.Time = time.Now().Format(models.TimeLayout)
	}
	r.meals.Update(func(list []models.DayMealRecord) []models.DayMealRecord {
		return AddMealEntry(list, date, e)
	})
	return e, nil
}

// RemoveMeal deletes the entry on date matching id or a unique id prefix.
func (r *Repository) RemoveMeal(date, idOrPrefix string) error {
	id, err := r.resolveMealID(date, idOrPrefix)
	if err != nil {
		return err
	}
	r.meals.Update(func(list []models.DayMealRecord) []models.DayMealRecord {
		out, _ := RemoveMealEntry(list, date, id)
		return out
	})
	return nil
}

// UpdateMeal replaces the entry on date with the same id.
func (r *Repository) UpdateMeal(date string, e models.MealEntry) error {
	if err := e.Validate(); err != nil {
		return invalid(err)
	}
	if _, err := r.resolveMealID(date, e.ID); err != nil {
		return err
	}
	r.meals.Update(func(list []models.DayMealRecord) []models.DayMealRecord {
		out, _ := UpdateMealEntry(list, date, e)
		return out
	})
	return nil
}

func (r *Repository) resolveMealID(date, idOrPrefix string) (string, error) {
	rec, _ := r.MealsOn(date)
	var matches []string
	for _, e := range rec.Entries {
		if e.ID == idOrPrefix {
			return e.ID, nil
		}
		if idOrPrefix != "" && strings.HasPrefix(e.ID, idOrPrefix) {
			matches = append(matches, e.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("meal %s on %s: %w", idOrPrefix, date, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple meals", idOrPrefix)
	}
}

// Weights returns the bodyweight log, most recently recorded first.
func (r *Repository) Weights() []models.WeightEntry {
	return append([]models.WeightEntry(nil), r.weights.Get()...)
}

// AddWeight records e, replacing any entry for the same date, and makes it
// the profile's current bodyweight.
func (r *Repository) AddWeight(e models.WeightEntry) error {
	if err := e.Validate(); err != nil {
		return invalid(err)
	}
	r.weights.Update(func(list []models.WeightEntry) []models.WeightEntry {
		return PutWeight(list, e)
	})
	r.profile.Update(func(p models.Profile) models.Profile {
		p.BodyweightKg = e.Kg
		return p
	})
	return nil
}

// WeeklyMenu returns the per-weekday templates.
func (r *Repository) WeeklyMenu() models.WeeklyMenu {
	return r.menu.Get().Clone()
}

// SaveWeeklyMenu overwrites every day's template.
func (r *Repository) SaveWeeklyMenu(m models.WeeklyMenu) error {
	for day, items := range m {
		if day < 0 || day > 6 {
			return invalid(fmt.Errorf("weekday must be 0-6, got %d", day))
		}
		if err := validateMenu(items); err != nil {
			return invalid(err)
		}
	}
	r.menu.Set(m.Clone())
	return nil
}

// SetMenuDay replaces one weekday's template.
func (r *Repository) SetMenuDay(day time.Weekday, items []models.MenuTemplateItem) error {
	if err := validateMenu(items); err != nil {
		return invalid(err)
	}
	items = append([]models.MenuTemplateItem(nil), items...)
	r.menu.Update(func(m models.WeeklyMenu) models.WeeklyMenu {
		out := m.Clone()
		out[int(day)] = items
		return out
	})
	return nil
}

func validateMenu(items []models.MenuTemplateItem) error {
	for _, it := range items {
		if it.Exercise == "" {
			return fmt.Errorf("menu exercise name is required")
		}
		if it.Sets < 0 || it.Reps < 0 || it.WeightKg < 0 {
			return fmt.Errorf("%s: sets, reps and weight must not be negative", it.Exercise)
		}
	}
	return nil
}

// Goals returns the saved goals.
func (r *Repository) Goals() models.Goals {
	out := models.Goals{}
	for k, v := range r.goals.Get() {
		out[k] = v
	}
	return out
}

// SaveGoals overwrites all goals.
func (r *Repository) SaveGoals(g models.Goals) error {
	out := models.Goals{}
	for h, v := range g {
		if _, err := models.ParseHorizon(string(h)); err != nil {
			return invalid(err)
		}
		out[h] = v
	}
	r.goals.Set(out)
	return nil
}

// SetGoal sets the goal for one horizon. Empty text clears it.
func (r *Repository) SetGoal(h models.Horizon, text string, now time.Time) error {
	if _, err := models.ParseHorizon(string(h)); err != nil {
		return invalid(err)
	}
	text = strings.TrimSpace(text)
	r.goals.Update(func(g models.Goals) models.Goals {
		out := models.Goals{}
		for k, v := range g {
			out[k] = v
		}
		if text == "" {
			delete(out, h)
		} else {
			out[h] = models.Goal{Text: text, SavedAt: now}
		}
		return out
	})
	return nil
}

// ChatHistory returns the planner conversation, oldest first.
func (r *Repository) ChatHistory() []models.ChatMessage {
	return append([]models.ChatMessage(nil), r.chat.Get()...)
}

// AppendChat adds a message to the end of the conversation.
func (r *Repository) AppendChat(msgs ...models.ChatMessage) {
	r.chat.Update(func(list []models.ChatMessage) []models.ChatMessage {
		out := make([]models.ChatMessage, 0, len(list)+len(msgs))
		out = append(out, list...)
		return append(out, msgs...)
	})
}

// ReplaceLastChat overwrites the final message, appending when empty.
func (r *Repository) ReplaceLastChat(msg models.ChatMessage) {
	r.chat.Update(func(list []models.ChatMessage) []models.ChatMessage {
		out := append([]models.ChatMessage(nil), list...)
		if len(out) == 0 {
			return append(out, msg)
		}
		out[len(out)-1] = msg
		return out
	})
}

// ClearChat empties the conversation. Token totals are kept.
func (r *Repository) ClearChat() {
	r.chat.Set([]models.ChatMessage{})
}

// TokenTotals returns cumulative planner token usage.
func (r *Repository) TokenTotals() models.TokenUsage {
	return r.tokens.Get()
}

// AddTokens adds u to the running totals. Negative counts are ignored.
func (r *Repository) AddTokens(u models.TokenUsage) models.TokenUsage {
	if u.Input < 0 {
		u.Input = 0
	}
	if u.Output < 0 {
		u.Output = 0
	}
	return r.tokens.Update(func(t models.TokenUsage) models.TokenUsage {
		return t.Add(u)
	})
}
