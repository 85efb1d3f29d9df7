package facet

import (
	"context"

	"github.com/matst80/dematerialized-catalog/pkg/types"
	"go.uber.org/zap"
)

// Panel shows the option lists of the filter groups.
type Panel interface {
	RenderOptions(g types.Group, options []types.FacetOption)
	SetPanelVisible(g types.Group, visible bool)
}

type Unchecker interface {
	Uncheck(g types.Group)
}

// Refresher re-renders every filter panel with only the options that still
// yield results, and gates the subcategory panel on the category selection.
type Refresher struct {
	Pruner     *Pruner
	Panel      Panel
	Checkboxes Unchecker
	logger     *zap.Logger
}

func NewRefresher(pruner *Pruner, panel Panel, checkboxes Unchecker, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		Pruner:     pruner,
		Panel:      panel,
		Checkboxes: checkboxes,
		logger:     logger,
	}
}

// Refresh returns the options left visible per group.
func (r *Refresher) Refresh(ctx context.Context, options map[types.Group][]types.FacetOption, selections types.Selections, keys map[types.Group]string) map[types.Group][]types.FacetOption {
	current := make(types.Selections, len(selections))
	for g, sel := range selections {
		current[g] = sel
	}
	candidates := make(map[types.Group][]types.FacetOption, len(types.Groups))
	for g, list := range options {
		candidates[g] = list
	}

	categories := current.Get(types.Category)
	subcategoriesVisible := !categories.IsEmpty()
	if !subcategoriesVisible {
		if r.Checkboxes != nil {
			r.Checkboxes.Uncheck(types.Subcategory)
		}
		current[types.Subcategory] = types.NewSelection()
	} else {
		candidates[types.Subcategory] = MatchSubcategories(options[types.Subcategory], categories)
	}

	if r.Pruner.Cache().Track(current.Fingerprint()) {
		r.logger.Debug("filter selection changed, facet cache cleared")
	}

	visible := make(map[types.Group][]types.FacetOption, len(types.Groups))
	for _, g := range types.Groups {
		if g == types.Subcategory && !subcategoriesVisible {
			visible[g] = []types.FacetOption{}
			continue
		}
		visible[g] = r.Pruner.Available(ctx, g, candidates[g], current, keys)
	}

	if r.Panel != nil {
		r.Panel.SetPanelVisible(types.Subcategory, subcategoriesVisible)
		for _, g := range types.Groups {
			r.Panel.RenderOptions(g, visible[g])
		}
	}
	return visible
}
