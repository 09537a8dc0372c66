package chat

import (
	"strings"

	"github.com/metodolab/metodobot/internal/normalize"
)

// Intent classifies a turn before any engine work happens.
type Intent int

const (
	// IntentSearch goes through the relevance engine.
	IntentSearch Intent = iota
	// IntentGreeting replays the welcome message.
	IntentGreeting
	// IntentContact, IntentAddress, and IntentHours answer from the static
	// site information, bypassing the engine entirely.
	IntentContact
	IntentAddress
	IntentHours
)

// direct intent patterns, matched against the folded query
var directPatterns = []struct {
	intent Intent
	terms  []string
}{
	{IntentAddress, []string{"direccion", "ubicacion", "donde estan", "donde queda", "como llegar"}},
	{IntentHours, []string{"horario", "horarios", "hora de atencion", "cuando atienden", "cuando abren"}},
	{IntentContact, []string{"contacto", "contactar", "telefono", "correo", "email", "escribirles"}},
	{IntentGreeting, []string{"hola", "buenos dias", "buenas tardes", "buenas noches", "que puedes hacer", "ayuda"}},
}

// classifyDirect recognizes the fixed informational intents. Search remains
// the default for everything else.
func classifyDirect(query string) (Intent, bool) {
	folded := normalize.Fold(query)
	if folded == "" {
		return IntentSearch, false
	}

	for _, p := range directPatterns {
		for _, term := range p.terms {
			if term == folded || containsWordPhrase(folded, term) {
				return p.intent, true
			}
		}
	}
	return IntentSearch, false
}

// complexityMarkers flag queries that need reasoning or comparison; those
// always route to the remote fallback even when the index has matches.
var complexityMarkers = []string{
	"compara", "comparar", "diferencia", "versus", "vs",
	"mejor", "peor", "conviene", "recomiendas", "recomienda",
	"por que", "explica", "explicame", "como funciona", "ventaja", "desventaja",
}

// maxSimpleQueryWords: beyond this a question stops being a direct factual
// ask, whatever its wording.
const maxSimpleQueryWords = 14

// isComplex classifies a query as needing remote reasoning.
func isComplex(query string) bool {
	folded := normalize.Fold(query)
	for _, marker := range complexityMarkers {
		if containsWordPhrase(folded, marker) {
			return true
		}
	}
	return len(strings.Fields(folded)) > maxSimpleQueryWords
}

// followUpOpeners start continuation questions ("¿y en harina?", "no en
// leche?"). Matched against the folded query's first words.
var followUpOpeners = []string{"y ", "en ", "de ", "para ", "con ", "sin ", "no en ", "tambien ", "solo "}

// maxFollowUpWords keeps long standalone questions out of the follow-up
// path; continuations are short by nature.
const maxFollowUpWords = 4

// looksLikeFollowUp reports whether the query reads as a continuation of
// the previous turn rather than a fresh question.
func looksLikeFollowUp(query string) bool {
	folded := normalize.Fold(query)
	if folded == "" {
		return false
	}
	if len(strings.Fields(folded)) > maxFollowUpWords {
		return false
	}

	padded := folded + " "
	for _, opener := range followUpOpeners {
		if strings.HasPrefix(padded, opener) {
			return true
		}
	}
	return false
}

// containsWordPhrase reports whether phrase occurs in text on word
// boundaries (both already folded).
func containsWordPhrase(text, phrase string) bool {
	padded := " " + text + " "
	return strings.Contains(padded, " "+phrase+" ")
}
