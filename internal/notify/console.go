package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"aptwatch/internal/domain"
)

// ConsoleNotifier renders new listings to a writer (stdout by default).
type ConsoleNotifier struct {
	Out io.Writer
	Now func() time.Time
}

func (c *ConsoleNotifier) Name() string { return "console" }

func (c *ConsoleNotifier) Deliver(listings []domain.RawListing) (int, error) {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	rule := strings.Repeat("=", 80)
	fmt.Fprintf(out, "\n%s\n", rule)
	fmt.Fprintf(out, "NEW HOUSING LISTINGS FOUND - %s\n", now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "%s\n\n", rule)

	for i, l := range listings {
		fmt.Fprintf(out, "Listing #%d\n", i+1)
		fmt.Fprintln(out, strings.Repeat("-", 80))

		if l.Title != "" {
			fmt.Fprintf(out, "Property: %s\n", l.Title)
		}
		if l.Address != "" {
			fmt.Fprintf(out, "Address: %s\n", l.Address)
		}
		if l.Price != nil {
			fmt.Fprintf(out, "Price: $%s/month\n", thousands(*l.Price))
		}
		if layout := layoutLine(l); layout != "" {
			fmt.Fprintf(out, "Layout: %s\n", layout)
		}
		if l.SquareFeet != nil {
			fmt.Fprintf(out, "Size: %s sq ft\n", thousands(*l.SquareFeet))
		}
		if l.AvailableOn != "" {
			fmt.Fprintf(out, "Available: %s\n", l.AvailableOn)
		}
		fmt.Fprintf(out, "URL: %s\n\n", l.URL)
	}

	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "Total new listings: %d\n", len(listings))
	fmt.Fprintf(out, "%s\n\n", rule)

	return len(listings), nil
}

func layoutLine(l domain.RawListing) string {
	var parts []string
	if l.Bedrooms != nil {
		if *l.Bedrooms == 0 {
			parts = append(parts, "Studio")
		} else {
			parts = append(parts, fmt.Sprintf("%g bed", *l.Bedrooms))
		}
	}
	if l.Bathrooms != nil {
		parts = append(parts, fmt.Sprintf("%g bath", *l.Bathrooms))
	}
	return strings.Join(parts, ", ")
}

// thousands formats 1500 as "1,500".
func thousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}
