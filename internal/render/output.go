package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/joss/storefront/internal/cart"
	"github.com/joss/storefront/internal/catalog"
	"github.com/joss/storefront/internal/session"
	"github.com/joss/storefront/internal/text"
)

const (
	titleWidth = 48
	wrapWidth  = 72
)

var summaryBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

// Renderer handles output formatting.
type Renderer struct {
	pretty bool
}

// New creates a new renderer. Plain mode emits no ANSI codes or box drawing.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

func (r *Renderer) header(sb *strings.Builder, title string) {
	if r.pretty {
		sb.WriteString(color.CyanString(title) + "\n")
		sb.WriteString(strings.Repeat("─", 60) + "\n")
	}
}

// Products formats a product list, one per line.
func (r *Renderer) Products(products []catalog.Product) string {
	if len(products) == 0 {
		return "No products found\n"
	}

	var sb strings.Builder
	r.header(&sb, fmt.Sprintf("Products (%d)", len(products)))

	for _, p := range products {
		title := text.Truncate(p.Title, titleWidth)
		if r.pretty {
			fmt.Fprintf(&sb, "%s %s %s  %s\n",
				color.HiBlackString("#%-3d", p.ID), text.Pad(title, titleWidth),
				color.GreenString("%9s", Price(p.Price)), color.HiBlackString(p.Category))
		} else {
			fmt.Fprintf(&sb, "%d\t%s\t%s\t%s\n", p.ID, Price(p.Price), p.Category, p.Title)
		}
	}
	return sb.String()
}

// Product formats one product in detail.
func (r *Renderer) Product(p catalog.Product) string {
	var sb strings.Builder

	if r.pretty {
		sb.WriteString(color.New(color.Bold).Sprint(p.Title) + "\n")
		fmt.Fprintf(&sb, "%s  %s  %s\n",
			color.GreenString(Price(p.Price)),
			color.HiBlackString("[%s]", p.Category),
			color.YellowString("★ %.1f (%d reviews)", p.Rating.Rate, p.Rating.Count))
		sb.WriteString("\n")
		sb.WriteString(text.Indent(text.WordWrap(p.Description, wrapWidth), "  ") + "\n\n")
		fmt.Fprintf(&sb, "  ID:    %d\n", p.ID)
		fmt.Fprintf(&sb, "  Image: %s\n", p.Image)
	} else {
		fmt.Fprintf(&sb, "id=%d\n", p.ID)
		fmt.Fprintf(&sb, "title=%s\n", p.Title)
		fmt.Fprintf(&sb, "price=%.2f\n", p.Price)
		fmt.Fprintf(&sb, "category=%s\n", p.Category)
		fmt.Fprintf(&sb, "rating=%.1f/%d\n", p.Rating.Rate, p.Rating.Count)
		fmt.Fprintf(&sb, "image=%s\n", p.Image)
		fmt.Fprintf(&sb, "description=%s\n", p.Description)
	}
	return sb.String()
}

// Categories formats category names.
func (r *Renderer) Categories(categories []string) string {
	if len(categories) == 0 {
		return "No categories found\n"
	}

	var sb strings.Builder
	r.header(&sb, "Categories")
	for _, c := range categories {
		if r.pretty {
			fmt.Fprintf(&sb, "  • %s\n", c)
		} else {
			sb.WriteString(c + "\n")
		}
	}
	return sb.String()
}

// Cart formats the cart lines followed by the totals.
func (r *Renderer) Cart(lines []cart.Line, items int, total float64) string {
	if len(lines) == 0 {
		return "Your cart is empty\n"
	}

	var sb strings.Builder
	r.header(&sb, "Cart")

	for _, l := range lines {
		if r.pretty {
			fmt.Fprintf(&sb, "%s %s %3d × %-9s %s\n",
				color.HiBlackString("#%-3d", l.ID), text.Pad(text.Truncate(l.Title, titleWidth), titleWidth),
				l.Quantity, Price(l.Price), color.GreenString(Price(l.Subtotal())))
		} else {
			fmt.Fprintf(&sb, "%d\t%d\t%.2f\t%.2f\t%s\n", l.ID, l.Quantity, l.Price, l.Subtotal(), l.Title)
		}
	}

	summary := fmt.Sprintf("Items: %d\nTotal: %s", items, Price(total))
	if r.pretty {
		sb.WriteString("\n" + summaryBox.Render(summary) + "\n")
	} else {
		fmt.Fprintf(&sb, "items=%d total=%.2f\n", items, total)
	}
	return sb.String()
}

// Receipt formats a completed checkout.
func (r *Renderer) Receipt(rc cart.Receipt) string {
	var sb strings.Builder
	if r.pretty {
		sb.WriteString(color.GreenString("Order confirmed") + "\n")
		body := fmt.Sprintf("Receipt: %s\nItems:   %d\nTotal:   %s\nPlaced:  %s",
			rc.ID, rc.Items, Price(rc.Total), rc.PlacedAt.Local().Format("2006-01-02 15:04"))
		sb.WriteString(summaryBox.Render(body) + "\n")
		sb.WriteString("Thank you for your order!\n")
	} else {
		fmt.Fprintf(&sb, "receipt=%s items=%d total=%.2f\n", rc.ID, rc.Items, rc.Total)
	}
	return sb.String()
}

// Session formats the signed-in state for whoami, followed by the API
// the session belongs to.
func (r *Renderer) Session(s session.Session, ok bool, api string) string {
	var sb strings.Builder
	if ok {
		r.sessionDetail(&sb, s)
	} else {
		sb.WriteString("Not logged in\n")
	}

	if r.pretty {
		fmt.Fprintf(&sb, "  api:       %s\n", api)
	} else {
		fmt.Fprintf(&sb, "api=%s\n", api)
	}
	return sb.String()
}

func (r *Renderer) sessionDetail(sb *strings.Builder, s session.Session) {
	if r.pretty {
		fmt.Fprintf(sb, "Logged in as %s\n", color.CyanString(s.Username))
	} else {
		fmt.Fprintf(sb, "username=%s\n", s.Username)
	}

	claims, err := s.Claims()
	if err != nil {
		return
	}
	if claims.Subject != "" {
		fmt.Fprintf(sb, "  user id:   %s\n", claims.Subject)
	}
	if !claims.IssuedAt.IsZero() {
		fmt.Fprintf(sb, "  issued at: %s\n", claims.IssuedAt.Local().Format("2006-01-02 15:04"))
	}
}

// Home formats the landing summary.
func (r *Renderer) Home(s session.Session, loggedIn bool, items int, total float64) string {
	var sb strings.Builder
	r.header(&sb, "Storefront")

	user := "guest"
	if loggedIn {
		user = s.Username
	}
	if r.pretty {
		fmt.Fprintf(&sb, "  User: %s\n", color.CyanString(user))
		fmt.Fprintf(&sb, "  Cart: %d item(s), %s\n", items, color.GreenString(Price(total)))
		sb.WriteString("\nTry 'storefront products' to browse")
		if !loggedIn {
			sb.WriteString(" or 'storefront login' to manage products")
		}
		sb.WriteString(".\n")
	} else {
		fmt.Fprintf(&sb, "user=%s items=%d total=%.2f\n", user, items, total)
	}
	return sb.String()
}
