package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/payment"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

// UpgradeParams is the data of the pricing page.
type UpgradeParams struct {
	Catalog payment.Catalog
	Session session.Session
	// Paid is set when the buyer returns from checkout.
	Paid bool
}

// UpgradePage lists the plans with a buy button for each plan the user
// does not already hold.
func UpgradePage(p UpgradeParams) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section id="upgrade">`)
		h.el("h2", "Upgrade Your Experience")
		h.el("p", "Choose the best plan to unlock advanced features.", "class", "lead")
		if p.Paid {
			h.el("p", "Payment received. Your account will update in a moment.", "role", "status", "class", "notice")
		}
		h.raw(`<div class="plans">`)
		for _, plan := range p.Catalog.Plans {
			h.child(ctx, PlanCard(p.Catalog.Currency, plan, plan.HeldBy(p.Session)))
		}
		h.raw("</div></section>")
	})
}

// PlanCard is one pricing card.
func PlanCard(currency string, plan payment.Plan, held bool) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.open("article", "id", "plan-"+plan.ID, "class", "plan")
		h.el("h3", plan.Name)
		h.raw(`<p class="price">`)
		h.text(FormatPrice(currency, plan.Price))
		if plan.Period != "" {
			h.el("span", " / "+plan.Period)
		}
		h.raw("</p><ul>")
		for _, f := range plan.Features {
			h.el("li", f)
		}
		h.raw("</ul>")
		if held {
			h.el("button", "Current plan", "type", "button", "disabled", "")
		} else {
			action := "/upgrade/" + plan.ID
			h.raw(`<form method="post"`)
			h.href("action", action)
			h.attr("data-on-submit", "@post('"+action+"')")
			h.raw(">")
			h.el("button", "Get "+plan.Name, "type", "submit")
			h.raw("</form>")
		}
		h.close("article")
	})
}
