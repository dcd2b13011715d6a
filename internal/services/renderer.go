package services

import (
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"city-deployer-service/internal/config"
	"city-deployer-service/internal/domain"
)

// SiteInfo carries the destination identity the renderer needs for
// redirect URLs and titles.
type SiteInfo struct {
	Owner string
	Repo  string
}

// Renderer applies the ordered substitution rules to the base template.
// It is a pure function of its inputs: no network, no hosting side
// effects.
//
// The template declares named slots delimited by marker comments:
//
//	<!-- slot:narrative -->…<!-- /slot:narrative -->
//
// Substitution replaces the slot interior and keeps the markers, so
// rendering an already-rendered document overwrites the same slots
// instead of corrupting them. A rule whose target is absent (template
// drift) is a recorded no-op, never an error.
type Renderer struct {
	cfg config.Config
	log *zap.Logger
}

func NewRenderer(cfg config.Config, log *zap.Logger) *Renderer {
	return &Renderer{cfg: cfg, log: log}
}

type subRule struct {
	name  string
	apply func(doc string) (string, bool)
}

// Render produces the complete Artifact for one city: the rendered
// document plus the fixed auxiliary files. The second return value lists
// rules whose target block was not found.
func (r *Renderer) Render(
	base []byte,
	bundle domain.ContentBundle,
	req domain.CityRequest,
	site SiteInfo,
) (domain.Artifact, []string) {
	doc := string(base)
	var unmatched []string

	for _, rule := range r.rules(bundle, req, site) {
		out, ok := rule.apply(doc)
		if !ok {
			unmatched = append(unmatched, rule.name)
			continue
		}
		doc = out
	}

	if len(unmatched) > 0 {
		r.log.Warn("template drift: substitution rules had no target",
			zap.String("city", req.Name),
			zap.Strings("rules", unmatched))
	}

	files := map[string][]byte{
		r.cfg.IndexFile:        []byte(doc),
		r.cfg.MarkerFile:       {},
		r.cfg.RedirectFile:     []byte(r.redirectPage(site)),
		r.cfg.VerificationFile: []byte(r.cfg.VerificationBody),
	}

	return domain.Artifact{Files: files}, unmatched
}

// rules returns the ordered substitution list: city token, title,
// coordinates, narrative, one rule per category list, citations.
func (r *Renderer) rules(bundle domain.ContentBundle, req domain.CityRequest, site SiteInfo) []subRule {
	rules := []subRule{
		{name: "city-token", apply: func(doc string) (string, bool) {
			if !strings.Contains(doc, r.cfg.CityToken) && !strings.Contains(doc, r.cfg.CityTokenShort) {
				return doc, false
			}
			doc = strings.ReplaceAll(doc, r.cfg.CityToken, req.Name)
			doc = strings.ReplaceAll(doc, r.cfg.CityTokenShort, req.Name)
			return doc, true
		}},
		{name: "title", apply: func(doc string) (string, bool) {
			title := fmt.Sprintf("The %s %s", html.EscapeString(req.Name), r.cfg.SiteSuffix)
			return replaceSlot(doc, "title", title)
		}},
		{name: "coords", apply: func(doc string) (string, bool) {
			coords := fmt.Sprintf("Latitude: %.4f | Longitude: %.4f",
				bundle.Location.Lat, bundle.Location.Lon)
			return replaceSlot(doc, "coords", coords)
		}},
		{name: "narrative", apply: func(doc string) (string, bool) {
			return replaceSlot(doc, "narrative", html.EscapeString(bundle.Narrative))
		}},
	}

	for _, cat := range r.cfg.Categories {
		cat := cat
		rules = append(rules, subRule{
			name: "listings-" + cat.Name,
			apply: func(doc string) (string, bool) {
				return replaceSlot(doc, cat.Slot, listingMarkup(bundle.ListingsByCategory[cat.Name]))
			},
		})
	}

	rules = append(rules, subRule{name: "citations", apply: func(doc string) (string, bool) {
		return replaceSlot(doc, "citations",
			"Data: © OpenStreetMap contributors | Summaries: Wikipedia")
	}})

	return rules
}

// replaceSlot swaps the interior of a named slot, preserving the
// markers. Returns false when either marker is missing or malformed.
func replaceSlot(doc, name, content string) (string, bool) {
	open := fmt.Sprintf("<!-- slot:%s -->", name)
	closing := fmt.Sprintf("<!-- /slot:%s -->", name)

	start := strings.Index(doc, open)
	if start < 0 {
		return doc, false
	}
	rest := start + len(open)
	end := strings.Index(doc[rest:], closing)
	if end < 0 {
		return doc, false
	}

	return doc[:rest] + content + doc[rest+end:], true
}

// listingMarkup regenerates a category's list wholesale from its
// listings.
func listingMarkup(listings []domain.Listing) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, l := range listings {
		b.WriteString("<li>")
		if l.Positioned {
			fmt.Fprintf(&b,
				`<a href="https://www.google.com/maps/search/?api=1&amp;query=%f,%f" target="_blank">%s</a>`,
				l.Lat, l.Lon, html.EscapeString(l.Name))
		} else {
			b.WriteString(html.EscapeString(l.Name))
		}
		if l.Address != "" {
			fmt.Fprintf(&b, `<p class="address-line">%s</p>`, html.EscapeString(l.Address))
		}
		if l.Phone != "" {
			fmt.Fprintf(&b, `<p class="phone-line">%s</p>`, html.EscapeString(l.Phone))
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// redirectPage renders the acknowledgement page that bounces visitors
// back to the published site.
func (r *Renderer) redirectPage(site SiteInfo) string {
	target := fmt.Sprintf("https://%s.github.io/%s/index.html", site.Owner, site.Repo)
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Thank You!</title>
    <meta http-equiv="refresh" content="0; url=%s">
</head>
<body>
    <h1>Thank you for contacting us!</h1>
    <p>Redirecting you back to our homepage...</p>
    <a href="%s">Click here if you are not redirected</a>
</body>
</html>`, target, target)
}
