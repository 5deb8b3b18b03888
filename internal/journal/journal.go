// Package journal holds the in-memory state for the signed-in user's dreams
// and orchestrates the persistence gateway and the AI clients. It is the
// single source of truth the view layer reads from.
package journal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/moonlitlabs/oneiro/internal/ai"
	"github.com/moonlitlabs/oneiro/internal/image"
	"github.com/moonlitlabs/oneiro/internal/types"
)

// Gateway defines the persistence operations the journal depends on.
// store.SQLiteStore satisfies it.
type Gateway interface {
	ListDreams(ctx context.Context, userID string) ([]types.Dream, error)
	GetDream(ctx context.Context, userID, dreamID string) (*types.Dream, error)
	AddDream(ctx context.Context, userID string, dream types.NewDream) (string, error)
	UpdateDreamImage(ctx context.Context, userID, dreamID, imageURL string) error
	DeleteDream(ctx context.Context, userID, dreamID string) error
}

// Journal is the state container. Construct one per application (or per test)
// with New; there is no package-level instance.
//
// Orchestration operations are serialized by opMu so a stale in-flight
// response can never overwrite the result of a newer operation. State fields
// are guarded separately by mu so reads stay responsive mid-operation.
type Journal struct {
	gateway     Gateway
	analyst     ai.Analyst
	illustrator image.Illustrator
	defaultLang ai.Language

	opMu sync.Mutex

	mu               sync.RWMutex
	dreams           []types.Dream
	currentDream     *types.Dream
	isLoading        bool
	lastError        string
	selectedCategory types.Category // "" means all categories
	searchQuery      string
}

// AddDreamInput carries the user-authored fields for a new dream.
// A nil DreamDate means "use the server timestamp"; a set value backdates
// the entry to that calendar day.
type AddDreamInput struct {
	Title     string
	Content   string
	Category  types.Category
	Language  string
	DreamDate *time.Time
}

// New creates a Journal wired to its collaborators. defaultLang is used when
// AddDreamInput.Language is empty.
func New(gateway Gateway, analyst ai.Analyst, illustrator image.Illustrator, defaultLang ai.Language) *Journal {
	return &Journal{
		gateway:     gateway,
		analyst:     analyst,
		illustrator: illustrator,
		defaultLang: defaultLang,
	}
}

// beginOp marks an operation in flight and clears the previous error.
func (j *Journal) beginOp() {
	j.mu.Lock()
	j.isLoading = true
	j.lastError = ""
	j.mu.Unlock()
}

// finishOp clears the loading flag and records the operation outcome.
// Every operation overwrites the error field, successful or not.
func (j *Journal) finishOp(err error) {
	j.mu.Lock()
	j.isLoading = false
	if err != nil {
		j.lastError = err.Error()
	} else {
		j.lastError = ""
	}
	j.mu.Unlock()
}

// FetchDreams replaces the held collection wholesale with the gateway's
// response for the given user. No merge or diff is performed; switching
// users is exactly a refetch.
func (j *Journal) FetchDreams(ctx context.Context, userID string) ([]types.Dream, error) {
	j.opMu.Lock()
	defer j.opMu.Unlock()

	j.beginOp()
	dreams, err := j.fetchDreams(ctx, userID)
	j.finishOp(err)
	return dreams, err
}

// fetchDreams is the unlocked reload used by FetchDreams and AddDream.
func (j *Journal) fetchDreams(ctx context.Context, userID string) ([]types.Dream, error) {
	dreams, err := j.gateway.ListDreams(ctx, userID)
	if err != nil {
		return nil, err
	}

	j.mu.Lock()
	j.dreams = dreams
	j.mu.Unlock()

	return j.Dreams(), nil
}

// FetchDreamByID loads a single dream into the current-dream slot. The held
// collection is not touched. On failure the slot is cleared.
func (j *Journal) FetchDreamByID(ctx context.Context, userID, dreamID string) (*types.Dream, error) {
	j.opMu.Lock()
	defer j.opMu.Unlock()

	j.beginOp()
	dream, err := j.gateway.GetDream(ctx, userID, dreamID)

	j.mu.Lock()
	if err != nil {
		j.currentDream = nil
	} else {
		copied := *dream
		j.currentDream = &copied
	}
	j.mu.Unlock()

	j.finishOp(err)
	if err != nil {
		return nil, err
	}
	return dream, nil
}

// AddDream analyzes the content, persists the dream, and reloads the held
// collection. Any analysis error aborts the save: the dream is never
// persisted without a confirmed or fallback analysis. An empty analysis
// without an error is replaced by the localized fallback text, so user
// content is not lost to an unreliable generator.
func (j *Journal) AddDream(ctx context.Context, userID string, in AddDreamInput) (string, error) {
	j.opMu.Lock()
	defer j.opMu.Unlock()

	j.beginOp()

	lang := j.defaultLang
	if in.Language != "" {
		lang = ai.NormalizeLanguage(in.Language)
	}

	analysis, err := j.analyst.Analyze(ctx, in.Content, lang)
	if err != nil {
		j.finishOp(err)
		return "", err
	}
	if strings.TrimSpace(analysis) == "" {
		analysis = ai.FallbackAnalysis(lang)
	}

	category := in.Category
	if category == "" {
		category = types.CategoryOther
	}

	id, err := j.gateway.AddDream(ctx, userID, types.NewDream{
		Title:     in.Title,
		Content:   in.Content,
		Analysis:  analysis,
		Category:  category,
		DreamDate: in.DreamDate,
	})
	if err != nil {
		j.finishOp(err)
		return "", err
	}

	// Full reload, not an incremental insert.
	_, refreshErr := j.fetchDreams(ctx, userID)
	j.finishOp(refreshErr)
	return id, nil
}

// DeleteDream removes the dream remotely, then from the held collection.
// The local entry survives any gateway failure. A matching current dream is
// cleared as part of the operation so the detail view can never go stale.
func (j *Journal) DeleteDream(ctx context.Context, userID, dreamID string) error {
	j.opMu.Lock()
	defer j.opMu.Unlock()

	j.beginOp()
	err := j.gateway.DeleteDream(ctx, userID, dreamID)
	if err == nil {
		j.mu.Lock()
		kept := make([]types.Dream, 0, len(j.dreams))
		for _, d := range j.dreams {
			if d.ID != dreamID {
				kept = append(kept, d)
			}
		}
		j.dreams = kept
		if j.currentDream != nil && j.currentDream.ID == dreamID {
			j.currentDream = nil
		}
		j.mu.Unlock()
	}
	j.finishOp(err)
	return err
}

// GenerateDreamImage requests an illustration for the dream content,
// persists the returned reference, and updates both the current dream and
// the list entry. The detail and list views read different fields and must
// not diverge.
func (j *Journal) GenerateDreamImage(ctx context.Context, userID, dreamID, content string) error {
	j.opMu.Lock()
	defer j.opMu.Unlock()

	j.beginOp()

	imageURL, err := j.illustrator.Illustrate(ctx, content)
	if err != nil {
		j.finishOp(err)
		return err
	}

	if err := j.gateway.UpdateDreamImage(ctx, userID, dreamID, imageURL); err != nil {
		j.finishOp(err)
		return err
	}

	j.mu.Lock()
	if j.currentDream != nil && j.currentDream.ID == dreamID {
		j.currentDream.ImageURL = imageURL
	}
	for i := range j.dreams {
		if j.dreams[i].ID == dreamID {
			j.dreams[i].ImageURL = imageURL
		}
	}
	j.mu.Unlock()

	j.finishOp(nil)
	return nil
}

// SetCategory sets the active category filter; empty means all categories.
func (j *Journal) SetCategory(category types.Category) {
	j.mu.Lock()
	j.selectedCategory = category
	j.mu.Unlock()
}

// SetSearchQuery sets the active search filter.
func (j *Journal) SetSearchQuery(query string) {
	j.mu.Lock()
	j.searchQuery = query
	j.mu.Unlock()
}

// ClearCurrentDream empties the current-dream slot.
func (j *Journal) ClearCurrentDream() {
	j.mu.Lock()
	j.currentDream = nil
	j.mu.Unlock()
}

// ClearError empties the error field.
func (j *Journal) ClearError() {
	j.mu.Lock()
	j.lastError = ""
	j.mu.Unlock()
}

// Dreams returns a copy of the held collection in gateway order.
func (j *Journal) Dreams() []types.Dream {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]types.Dream, len(j.dreams))
	copy(out, j.dreams)
	return out
}

// CurrentDream returns a copy of the detail-view focus, or nil.
func (j *Journal) CurrentDream() *types.Dream {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.currentDream == nil {
		return nil
	}
	copied := *j.currentDream
	return &copied
}

// IsLoading reports whether an operation is in flight.
func (j *Journal) IsLoading() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.isLoading
}

// LastError returns the last operation's error message, or "".
func (j *Journal) LastError() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.lastError
}

// SelectedCategory returns the active category filter; "" means all.
func (j *Journal) SelectedCategory() types.Category {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.selectedCategory
}

// SearchQuery returns the active search filter.
func (j *Journal) SearchQuery() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.searchQuery
}
