// Package classifier assigns categories to transaction descriptions using a
// keyword dictionary, a learned description mapping and a fallback label.
package classifier

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/spice-sms/internal/category"
	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/Veraticus/spice-sms/internal/service"
	"github.com/jbrukh/bayesian"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Confidence assigned by each resolution tier.
const (
	KeywordConfidence = 0.9
	LearnedConfidence = 0.8
	DefaultConfidence = 0.1
)

var termPattern = regexp.MustCompile(`[a-z0-9]+`)

// LearnEvent is published to subscribers after a successful Learn.
type LearnEvent struct {
	Description string
	Category    string
}

// Classifier is the category classifier service. It keeps the learned model in
// memory and writes through to storage on Learn.
type Classifier struct {
	store     service.ClassifierStorage
	bayes     *bayesian.Classifier
	model     model.ClassifierModel
	classes   []bayesian.Class
	listeners common.Listeners[LearnEvent]
	mu        sync.RWMutex
	stale     bool
}

// New creates a classifier backed by store. A nil store keeps the model in
// memory only.
func New(store service.ClassifierStorage) *Classifier {
	return &Classifier{
		store: store,
		model: model.NewClassifierModel(),
		stale: true,
	}
}

// Load reads the persisted model. A missing or unreadable model leaves the
// classifier in its empty "no learning yet" state.
func (c *Classifier) Load(ctx context.Context) {
	if c.store == nil {
		return
	}

	m, err := c.store.GetClassifierModel(ctx)
	if err != nil {
		common.LogWarn("Classifier model unavailable, starting empty", common.Fields{"error": err.Error()})
		m = model.NewClassifierModel()
	}
	if m.Mappings == nil {
		m.Mappings = make(map[string]string)
	}
	if m.Frequencies == nil {
		m.Frequencies = make(map[string]int)
	}

	c.mu.Lock()
	c.model = m
	c.stale = true
	c.mu.Unlock()
}

// Predict resolves a category for description. The amount is accepted for
// interface stability but does not influence the result.
func (c *Classifier) Predict(description string, _ float64) model.Prediction {
	key := normalize(description)
	if key == "" {
		return defaultPrediction()
	}

	if cat, ok := category.Lookup(key); ok {
		return model.Prediction{Category: cat, Confidence: KeywordConfidence}
	}

	c.mu.RLock()
	cat, ok := c.model.Mappings[key]
	c.mu.RUnlock()
	if ok {
		return model.Prediction{Category: cat, Confidence: LearnedConfidence}
	}

	return defaultPrediction()
}

// Learn records that description belongs to cat. The mapping is persisted
// before the in-memory model changes, so a failed write leaves the session
// state untouched.
func (c *Classifier) Learn(ctx context.Context, description, cat string) error {
	key := normalize(description)
	cat = strings.TrimSpace(cat)
	if key == "" || cat == "" {
		return common.NewUserError("description and category are required", common.ErrInvalidInput)
	}

	if c.store != nil {
		if err := c.store.SaveMapping(ctx, key, cat); err != nil {
			return fmt.Errorf("failed to persist learned category: %w", err)
		}
	}

	c.mu.Lock()
	c.model.Mappings[key] = cat
	c.model.Frequencies[cat]++
	c.stale = true
	c.mu.Unlock()

	common.LogDebug("Learned category", common.Fields{"description": key, "category": cat})
	c.listeners.Notify(LearnEvent{Description: key, Category: cat})
	return nil
}

// Suggest ranks up to n learned categories for description using a naive
// Bayes model trained on the learned mappings. It returns nil until at least
// two distinct categories have been learned.
func (c *Classifier) Suggest(description string, n int) []model.Prediction {
	terms := tokenize(normalize(description))
	if len(terms) == 0 || n <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale {
		c.rebuildLocked()
	}
	if c.bayes == nil {
		return nil
	}

	scores, _, _ := c.bayes.ProbScores(terms)
	ranked := make([]model.Prediction, 0, len(scores))
	for i, score := range scores {
		ranked = append(ranked, model.Prediction{Category: string(c.classes[i]), Confidence: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Model returns a copy of the learned model.
func (c *Classifier) Model() model.ClassifierModel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := model.NewClassifierModel()
	for k, v := range c.model.Mappings {
		out.Mappings[k] = v
	}
	for k, v := range c.model.Frequencies {
		out.Frequencies[k] = v
	}
	return out
}

// Subscribe registers fn to be called after every successful Learn.
func (c *Classifier) Subscribe(fn func(LearnEvent)) func() {
	return c.listeners.Subscribe(fn)
}

// rebuildLocked retrains the Bayes model from the mappings. Callers hold mu.
func (c *Classifier) rebuildLocked() {
	c.stale = false
	c.bayes = nil
	c.classes = nil

	seen := make(map[string]bool)
	for _, cat := range c.model.Mappings {
		seen[cat] = true
	}
	if len(seen) < 2 {
		return
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	classes := make([]bayesian.Class, len(names))
	for i, name := range names {
		classes[i] = bayesian.Class(name)
	}

	cl := bayesian.NewClassifier(classes...)
	for desc, cat := range c.model.Mappings {
		cl.Learn(tokenize(desc), bayesian.Class(cat))
	}

	c.bayes = cl
	c.classes = classes
}

func defaultPrediction() model.Prediction {
	return model.Prediction{Category: category.Other, Confidence: DefaultConfidence}
}

// normalize folds case the same way for lookups and for learned keys.
func normalize(s string) string {
	return strings.TrimSpace(cases.Lower(language.Und).String(s))
}

func tokenize(s string) []string {
	return termPattern.FindAllString(s, -1)
}
