// Package disposal answers "how do I get rid of this?" for items nobody wants.
package disposal

import (
	"sync/atomic"

	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"go.uber.org/zap"
)

// Guidance is returned to clients as-is.
type Guidance struct {
	Item            string   `json:"item"`
	Category        string   `json:"category"`
	DisposalMethods []string `json:"disposal_methods"`
	Tips            string   `json:"tips"`
	Warnings        string   `json:"warnings"`
}

// Resolver reads the current knowledge base without locking; Swap replaces it atomically.
type Resolver struct {
	kb     atomic.Pointer[KnowledgeBase]
	logger *logger.Logger
}

func NewResolver(kb *KnowledgeBase, log *logger.Logger) *Resolver {
	if kb == nil {
		kb = DefaultKnowledgeBase()
	}
	r := &Resolver{logger: log.Named("DisposalResolver")}
	r.kb.Store(kb)
	return r
}

// Resolve selects guidance by category only; itemName is echoed back untouched.
// It fails only when category is not a recognized value.
func (r *Resolver) Resolve(itemName, category string) (*Guidance, error) {
	c := domain.Category(category)
	if !c.IsValid() {
		r.logger.Debug("Rejected disposal query", zap.String("category", category))
		return nil, domain.NewValidationError("category", "is not a recognized category")
	}

	kb := r.kb.Load()
	entry, exact := kb.Lookup(c)
	if !exact {
		r.logger.Debug("No dedicated guidance, using fallback", zap.String("category", category), zap.String("kb_version", kb.Version))
	}

	return &Guidance{
		Item:            itemName,
		Category:        category,
		DisposalMethods: append([]string(nil), entry.Methods...),
		Tips:            entry.Tips,
		Warnings:        entry.Warnings,
	}, nil
}

// Swap installs a new knowledge base and returns the previous one. A nil kb is ignored.
func (r *Resolver) Swap(kb *KnowledgeBase) *KnowledgeBase {
	if kb == nil {
		return r.kb.Load()
	}
	old := r.kb.Swap(kb)
	r.logger.Info("Disposal knowledge base replaced", zap.String("old_version", old.Version), zap.String("new_version", kb.Version))
	return old
}

// Version reports the version of the knowledge base in use.
func (r *Resolver) Version() string {
	return r.kb.Load().Version
}
