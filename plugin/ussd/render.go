package ussd

import (
	"encoding/json"
	"strings"
)

// DisplayKind classifies how a reply should be rendered.
type DisplayKind string

const (
	// DisplayMenu renders the reply as a selectable list of options.
	DisplayMenu DisplayKind = "menu"
	// DisplayPrompt renders the reply as free text awaiting input.
	DisplayPrompt DisplayKind = "prompt"
	// DisplayEnd renders the reply as a terminal message closing the dialog.
	DisplayEnd DisplayKind = "end"
	// DisplayText is the generic fallback for anything unclassifiable.
	DisplayText DisplayKind = "text"
)

// Display is the normalized, renderable form of a reply. Downstream code
// switches on Kind and never re-inspects the raw menus encoding.
type Display struct {
	Kind  DisplayKind `json:"kind"`
	Items []string    `json:"items,omitempty"`
	Text  string      `json:"text,omitempty"`
	Title string      `json:"title,omitempty"`
	Key   string      `json:"key,omitempty"`
}

// Render maps a raw reply into its display form.
//
// A menus value that is (or decodes to) a list always renders as a menu,
// regardless of action. Otherwise the action picks prompt or end rendering,
// and anything else falls back to generic text. Title and key pass through
// untouched in every case.
func Render(resp *Response) Display {
	display := Display{
		Title: resp.Title,
		Key:   resp.Key,
	}

	if items, ok := menuItems(resp.Menus); ok {
		display.Kind = DisplayMenu
		display.Items = items
		return display
	}

	display.Text = resp.Menus.Text
	switch strings.ToLower(resp.Action) {
	case ActionPrompt:
		display.Kind = DisplayPrompt
	case ActionEnd:
		display.Kind = DisplayEnd
	default:
		display.Kind = DisplayText
	}
	return display
}

// menuItems extracts menu options from the menus field, recovering from
// backends that stringified their array.
func menuItems(menus Menus) ([]string, bool) {
	if menus.IsList {
		return menus.Items, true
	}

	trimmed := strings.TrimSpace(menus.Text)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, false
	}

	// Strict parse first: a well-formed JSON array embedded in a string.
	var items []string
	if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
		return items, true
	}

	// Manual fallback: strip the brackets, split on commas, peel one layer
	// of quotes per piece. The split is deliberately naive about commas
	// inside quoted items; that matches the aggregator contract.
	inner := trimmed[1 : len(trimmed)-1]
	parsed := []string{}
	for _, piece := range strings.Split(inner, ",") {
		item := strings.TrimSpace(piece)
		if len(item) >= 2 {
			if (strings.HasPrefix(item, `"`) && strings.HasSuffix(item, `"`)) ||
				(strings.HasPrefix(item, `'`) && strings.HasSuffix(item, `'`)) {
				item = item[1 : len(item)-1]
			}
		}
		if item != "" {
			parsed = append(parsed, item)
		}
	}
	if len(parsed) > 0 {
		return parsed, true
	}
	return nil, false
}
