package presenter

import (
	"context"
	"fmt"
	"time"

	"depotscan/internal/domain"
	"depotscan/internal/ports"
)

// DefaultRedirectDelay gives the user time to read the confirmation before
// the product page opens.
const DefaultRedirectDelay = 2000 * time.Millisecond

// Config controls result rendering behavior.
type Config struct {
	RedirectDelay time.Duration
}

// Presenter maps identification results onto one of the three display
// branches and arms the in-inventory redirect.
type Presenter struct {
	navigator ports.Navigator
	events    ports.EventSink
	cfg       Config
}

func New(navigator ports.Navigator, events ports.EventSink, cfg Config) *Presenter {
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = DefaultRedirectDelay
	}
	return &Presenter{navigator: navigator, events: events, cfg: cfg}
}

// Present decides the display branch for a result. The returned Redirect is
// non-nil only for an in-inventory result with a product URL; the caller owns
// cancelling it on reset.
func (p *Presenter) Present(result domain.Identification) (domain.RenderPlan, *Redirect) {
	switch result.Outcome {
	case domain.OutcomeInInventory:
		// Without a product URL there is nothing to navigate to, so the
		// result renders like an out-of-inventory item.
		if result.ProductURL == "" {
			return p.noInventoryPlan(result), nil
		}
		plan := domain.RenderPlan{
			Branch:       domain.BranchInInventory,
			Message:      fmt.Sprintf("Found %q in the store. Opening the product page...", result.Item.Name),
			Item:         result.Item,
			ImageData:    result.ImageData,
			ShowShopLink: true,
			ShopURL:      result.ProductURL,
			RedirectURL:  result.ProductURL,
		}
		return plan, p.schedule(result.ProductURL)

	case domain.OutcomeNoInventory:
		return p.noInventoryPlan(result), nil

	default:
		return domain.RenderPlan{
			Branch:    domain.BranchNotIdentified,
			Message:   "We couldn't identify this item. Try again with a clearer photo.",
			Notes:     result.Notes,
			ImageData: result.ImageData,
		}, nil
	}
}

func (p *Presenter) noInventoryPlan(result domain.Identification) domain.RenderPlan {
	return domain.RenderPlan{
		Branch:    domain.BranchNoInventory,
		Message:   fmt.Sprintf("Identified %q, but it is not in the store inventory. Please log it manually.", result.Item.Name),
		Item:      result.Item,
		Notes:     result.Item.Notes,
		ImageData: result.ImageData,
	}
}

func (p *Presenter) schedule(url string) *Redirect {
	r := &Redirect{URL: url, FireAt: time.Now().Add(p.cfg.RedirectDelay)}
	r.timer = time.AfterFunc(p.cfg.RedirectDelay, func() {
		r.fire(func() {
			if err := p.navigator.OpenURL(context.Background(), url); err != nil {
				p.events.ViewError(domain.ErrorCodeNavigation, fmt.Sprintf("failed to open product page: %v", err))
			}
		})
	})
	return r
}
