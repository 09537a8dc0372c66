// Package chat orchestrates one conversation turn: decide between a local
// search answer, the remote reasoning fallback, and a direct informational
// answer, and keep the last query/result context for follow-up questions.
//
// Every failure path resolves to a rendered chat message. The controller is
// single-flow per session; if a caller adds concurrency it must tolerate a
// stale remote reply rendering after a newer turn.
package chat

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/metodolab/metodobot/internal/fallback"
	"github.com/metodolab/metodobot/internal/group"
	"github.com/metodolab/metodobot/internal/keywords"
	"github.com/metodolab/metodobot/internal/normalize"
	"github.com/metodolab/metodobot/internal/records"
)

// Searcher is the relevance engine boundary.
type Searcher interface {
	Search(query string) []records.Record
}

// Reasoner is the remote fallback boundary.
type Reasoner interface {
	Ask(ctx context.Context, query, previousQuery string, localResults []string) (*fallback.Answer, error)
}

// Kind tags which path produced a reply.
type Kind int

const (
	KindDirect Kind = iota
	KindLocal
	KindRemote
	KindNoData
	KindNotFound
)

// Reply is one rendered chat message.
type Reply struct {
	Kind Kind
	// HTML is the markup fragment the UI injects verbatim; record- and
	// user-derived text inside it is already escaped.
	HTML string
}

// Contact is the static site information served by the direct intents.
type Contact struct {
	Address string
	Phone   string
	Email   string
	Hours   string
}

// context carried between turns of one session
type conversationContext struct {
	lastQuery   string
	lastResults []group.Group
}

// Controller owns one widget session: the record cache, the conversation
// context, and the dispatch policy. No package-level shared state.
type Controller struct {
	recs    []records.Record
	engine  Searcher
	remote  Reasoner
	contact Contact

	session conversationContext
}

// New builds a session controller. recs may be empty when every record
// source failed; the controller then reports "no data" instead of
// pretending searches found nothing. remote may be nil when no reasoning
// endpoint is configured.
func New(recs []records.Record, engine Searcher, remote Reasoner, contact Contact) *Controller {
	return &Controller{
		recs:    recs,
		engine:  engine,
		remote:  remote,
		contact: contact,
	}
}

// Handle runs one turn: Idle → Dispatch → {LocalAnswer | RemoteFallback |
// DirectInfo} → Idle. It always returns a renderable reply.
func (c *Controller) Handle(ctx context.Context, query string) Reply {
	query = strings.TrimSpace(query)
	if query == "" {
		return Reply{Kind: KindDirect, HTML: c.Welcome()}
	}

	if intent, ok := classifyDirect(query); ok {
		slog.Debug("direct intent", "query", query, "intent", intent)
		return Reply{Kind: KindDirect, HTML: c.directAnswer(intent)}
	}

	if len(c.recs) == 0 {
		return Reply{Kind: KindNoData, HTML: noDataMessage}
	}

	effective := query
	if c.session.lastQuery != "" && looksLikeFollowUp(query) {
		effective = c.spliceFollowUp(query)
		slog.Debug("follow-up detected", "query", query, "effective", effective)
	}

	var groups []group.Group
	if c.engine != nil {
		groups = group.Build(c.engine.Search(effective))
	}

	// simple queries with local matches answer locally; complex or
	// unanswered queries go to the reasoning fallback
	if len(groups) > 0 && !isComplex(effective) {
		c.session.lastQuery = effective
		c.session.lastResults = groups
		return Reply{Kind: KindLocal, HTML: group.Render(groups, query)}
	}

	return c.remoteFallback(ctx, query, effective, groups)
}

// remoteFallback asks the reasoning endpoint and degrades to a static help
// message when it cannot answer.
func (c *Controller) remoteFallback(ctx context.Context, query, effective string, groups []group.Group) Reply {
	previous := c.session.lastQuery

	if c.remote != nil {
		ans, err := c.remote.Ask(ctx, effective, previous, summaries(groups))
		if err == nil {
			if len(groups) > 0 {
				c.session.lastQuery = effective
				c.session.lastResults = groups
			}
			return Reply{Kind: KindRemote, HTML: ans.HTML + sourcesFragment(ans.Sources)}
		}

		switch {
		case errors.Is(err, fallback.ErrNotConfigured):
			slog.Debug("reasoning endpoint not configured")
		case errors.Is(err, fallback.ErrUnavailable):
			slog.Debug("reasoning endpoint unavailable", "error", err)
		default:
			slog.Debug("reasoning call failed", "error", err)
		}
	}

	if len(groups) > 0 {
		// reasoning was wanted but unavailable; the local matches are still
		// better than a shrug
		c.session.lastQuery = effective
		c.session.lastResults = groups
		return Reply{Kind: KindLocal, HTML: group.Render(groups, query)}
	}

	return Reply{Kind: KindNotFound, HTML: c.notFoundMessage(query)}
}

// spliceFollowUp combines the previous turn's keywords with the new query
// before re-invoking the engine.
func (c *Controller) spliceFollowUp(query string) string {
	prevKws := keywords.Extract(c.session.lastQuery)
	if len(prevKws) == 0 {
		return query
	}

	// a negated matrix question ("¿no en harina?") replaces the previous
	// matrix words instead of accumulating them
	folded := normalize.Fold(query)
	negated := strings.HasPrefix(folded, "no en ") || strings.HasPrefix(folded, "sin ")

	var spliced []string
	for _, kw := range prevKws {
		if negated && keywords.IsMatrixWord(kw) {
			continue
		}
		spliced = append(spliced, kw)
	}
	return strings.Join(append(spliced, query), " ")
}

// summaries renders grouped results as plain text for the reasoning request.
func summaries(groups []group.Group) []string {
	if len(groups) == 0 {
		return nil
	}
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		var parts []string
		if len(g.Analytes) > 0 {
			parts = append(parts, strings.Join(g.Analytes, ", "))
		}
		if g.Matrix != "" {
			parts = append(parts, "en "+g.Matrix)
		}
		if g.Technique != "" {
			parts = append(parts, "por "+g.Technique)
		}
		line := g.Name
		if len(parts) > 0 {
			line += ": " + strings.Join(parts, " ")
		}
		if g.Accredited {
			line += " (acreditada)"
		}
		out = append(out, line)
	}
	return out
}

func sourcesFragment(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	escaped := make([]string, len(sources))
	for i, s := range sources {
		escaped[i] = html.EscapeString(s)
	}
	return fmt.Sprintf(`<p class="chatbot-sources">Fuentes: %s</p>`, strings.Join(escaped, ", "))
}

// directAnswer serves the static informational intents.
func (c *Controller) directAnswer(intent Intent) string {
	switch intent {
	case IntentAddress:
		if c.contact.Address != "" {
			return fmt.Sprintf("<p>Nos encontramos en <strong>%s</strong>.</p>", html.EscapeString(c.contact.Address))
		}
	case IntentHours:
		if c.contact.Hours != "" {
			return fmt.Sprintf("<p>Nuestro horario de atención es <strong>%s</strong>.</p>", html.EscapeString(c.contact.Hours))
		}
	case IntentContact:
		var parts []string
		if c.contact.Phone != "" {
			parts = append(parts, "teléfono "+html.EscapeString(c.contact.Phone))
		}
		if c.contact.Email != "" {
			parts = append(parts, "correo "+html.EscapeString(c.contact.Email))
		}
		if len(parts) > 0 {
			return fmt.Sprintf("<p>Puedes contactarnos por %s.</p>", strings.Join(parts, " o "))
		}
	case IntentGreeting:
		return c.Welcome()
	}
	return c.Welcome()
}

const noDataMessage = `<p>En este momento no puedo consultar las metodologías ` +
	`(no hay datos disponibles). Por favor intenta de nuevo más tarde.</p>`

// Welcome is the session-start message with example queries; it doubles as
// the answer to greetings.
func (c *Controller) Welcome() string {
	return `<p>¡Hola! Soy el asistente para buscar metodologías analíticas.</p>` +
		`<p>Puedes preguntarme cosas como:</p>` +
		`<ul class="chatbot-examples">` +
		`<li>"Busca metodologías para antibióticos en salmón"</li>` +
		`<li>"¿Qué técnicas usan para micotoxinas?"</li>` +
		`<li>"Metodologías acreditadas para leche"</li>` +
		`<li>"LC-MS/MS en carne"</li>` +
		`</ul>`
}

// notFoundMessage suggests search angles when neither the index nor the
// reasoning endpoint produced an answer.
func (c *Controller) notFoundMessage(query string) string {
	msg := fmt.Sprintf(`<p>No encontré metodologías que coincidan con "<strong>%s</strong>".</p>`,
		html.EscapeString(query)) +
		`<p>Intenta con términos como:</p>` +
		`<ul class="chatbot-examples">` +
		`<li>Nombre del analito (ej: "tetraciclinas", "aflatoxinas")</li>` +
		`<li>Tipo de matriz (ej: "salmón", "carne", "leche")</li>` +
		`<li>Técnica analítica (ej: "LC-MS/MS", "GC-MS")</li>` +
		`</ul>`

	if c.contact.Email != "" || c.contact.Phone != "" {
		msg += `<p>También puedes consultarnos directamente` +
			contactSuffix(c.contact) + `.</p>`
	}
	return msg
}

func contactSuffix(ct Contact) string {
	switch {
	case ct.Email != "" && ct.Phone != "":
		return fmt.Sprintf(" al %s o a %s", html.EscapeString(ct.Phone), html.EscapeString(ct.Email))
	case ct.Email != "":
		return " a " + html.EscapeString(ct.Email)
	case ct.Phone != "":
		return " al " + html.EscapeString(ct.Phone)
	}
	return ""
}
