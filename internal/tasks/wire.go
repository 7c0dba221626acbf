package tasks

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"home-cli/internal/model"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// The persisted shape keeps the field names and Unix-millisecond timestamps of
// the browser start page, so settings exported there import here unchanged.
type wireTask struct {
	ID               string   `json:"id"`
	Text             string   `json:"text"`
	Created          float64  `json:"created"`
	Checked          bool     `json:"checked"`
	PendingArchiveAt *float64 `json:"pendingArchiveAt"`
}

type wireArchived struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Created    float64 `json:"created"`
	ArchivedAt float64 `json:"archivedAt"`
}

type wireState struct {
	Active   []wireTask     `json:"active"`
	Archived []wireArchived `json:"archived"`
}

var (
	listSchema = jsonschema.MustCompileString("home-state-list.json", `{"type": "array"}`)

	activeItemSchema = jsonschema.MustCompileString("home-state-active-item.json", `{
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"text": {"type": ["string", "null"]},
			"created": {"type": "number"},
			"checked": {"type": ["boolean", "null"]},
			"pendingArchiveAt": {"type": ["number", "null"]}
		}
	}`)
	archivedItemSchema = jsonschema.MustCompileString("home-state-archived-item.json", `{
		"type": "object",
		"required": ["id", "archivedAt"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"text": {"type": ["string", "null"]},
			"created": {"type": "number"},
			"archivedAt": {"type": "number"}
		}
	}`)
)

// LoadStatus tags where a loaded TaskList came from.
type LoadStatus int

const (
	// LoadedFromStorage: the persisted value was valid as-is.
	LoadedFromStorage LoadStatus = iota
	// SeededDefaults: nothing usable was stored; the starter list was used.
	SeededDefaults
	// RepairedFields: the value was usable but one or more fields were
	// replaced by defaults or normalized.
	RepairedFields
)

func (s LoadStatus) String() string {
	switch s {
	case LoadedFromStorage:
		return "loaded"
	case SeededDefaults:
		return "seeded"
	case RepairedFields:
		return "repaired"
	default:
		return "unknown"
	}
}

type LoadResult struct {
	List   model.TaskList
	Status LoadStatus
	// Repairs names what was replaced or normalized ("active", "archived",
	// "active:item:<n>", "pending:<id>", ...).
	Repairs []string
}

var starterTexts = []string{
	"Do laundry",
	"Go grocery shopping",
	"Buy valentines gift",
	"Walk dog",
}

func defaultActive(now time.Time, newID func() string) []model.Task {
	out := make([]model.Task, 0, len(starterTexts))
	for _, text := range starterTexts {
		t := model.NewBlankTask(newID(), now)
		t.Text = text
		out = append(out, t)
	}
	return out
}

// Parse validates a persisted state value. It never fails: anything unusable
// degrades to defaults, independently for the active and archived fields.
func Parse(raw string, present bool, now time.Time, newID func() string) LoadResult {
	if !present || strings.TrimSpace(raw) == "" {
		return LoadResult{
			List:   model.TaskList{Active: defaultActive(now, newID), Archived: []model.ArchivedTask{}},
			Status: SeededDefaults,
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		return LoadResult{
			List:    model.TaskList{Active: defaultActive(now, newID), Archived: []model.ArchivedTask{}},
			Status:  SeededDefaults,
			Repairs: []string{"state"},
		}
	}

	res := LoadResult{Status: LoadedFromStorage}

	if items, ok := listItems(fields["active"]); ok {
		res.List.Active = make([]model.Task, 0, len(items))
		for i, it := range items {
			w, ok := decodeActive(it, now, newID)
			if !ok {
				res.Repairs = append(res.Repairs, fmt.Sprintf("active:item:%d", i))
			}
			if w != nil {
				res.List.Active = append(res.List.Active, w.toModel())
			}
		}
	} else {
		res.List.Active = defaultActive(now, newID)
		res.Repairs = append(res.Repairs, "active")
	}

	if items, ok := listItems(fields["archived"]); ok {
		res.List.Archived = make([]model.ArchivedTask, 0, len(items))
		for i, it := range items {
			w, ok := decodeArchived(it, now, newID)
			if !ok {
				res.Repairs = append(res.Repairs, fmt.Sprintf("archived:item:%d", i))
			}
			if w != nil {
				res.List.Archived = append(res.List.Archived, w.toModel())
			}
		}
	} else {
		res.List.Archived = []model.ArchivedTask{}
		res.Repairs = append(res.Repairs, "archived")
	}

	res.Repairs = append(res.Repairs, normalize(&res.List, now, newID)...)
	if len(res.Repairs) > 0 {
		res.Status = RepairedFields
	}
	return res
}

// listItems decodes raw as a JSON array. Items stay undecoded so each one can
// be checked on its own.
func listItems(raw json.RawMessage) ([]any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || listSchema.Validate(v) != nil {
		return nil, false
	}
	items, ok := v.([]any)
	return items, ok
}

// decodeActive converts one stored active item. ok is false when the item had
// to be repaired; a nil task means it was dropped (not an object).
func decodeActive(item any, now time.Time, newID func() string) (w *wireTask, ok bool) {
	m, isObj := item.(map[string]any)
	if !isObj {
		return nil, false
	}
	ok = activeItemSchema.Validate(item) == nil
	w = &wireTask{
		ID:      itemID(m, newID),
		Text:    itemText(m),
		Created: itemMillis(m, "created", now),
	}
	w.Checked, _ = m["checked"].(bool)
	if p, isNum := m["pendingArchiveAt"].(float64); isNum {
		w.PendingArchiveAt = &p
	}
	return w, ok
}

func decodeArchived(item any, now time.Time, newID func() string) (w *wireArchived, ok bool) {
	m, isObj := item.(map[string]any)
	if !isObj {
		return nil, false
	}
	ok = archivedItemSchema.Validate(item) == nil
	return &wireArchived{
		ID:         itemID(m, newID),
		Text:       itemText(m),
		Created:    itemMillis(m, "created", now),
		ArchivedAt: itemMillis(m, "archivedAt", now),
	}, ok
}

func itemID(m map[string]any, newID func() string) string {
	if id, _ := m["id"].(string); id != "" {
		return id
	}
	return newID()
}

// itemText keeps strings, stringifies numbers and booleans, and blanks the rest.
func itemText(m map[string]any) string {
	switch v := m["text"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func itemMillis(m map[string]any, field string, now time.Time) float64 {
	if v, ok := m[field].(float64); ok {
		return v
	}
	return float64(now.UnixMilli())
}

// normalize restores the list invariants: a non-empty active list, and
// PendingArchiveAt set exactly when Checked.
func normalize(l *model.TaskList, now time.Time, newID func() string) []string {
	var repairs []string
	if len(l.Active) == 0 {
		l.Active = []model.Task{model.NewBlankTask(newID(), now)}
		repairs = append(repairs, "active:empty")
	}
	for i := range l.Active {
		t := &l.Active[i]
		switch {
		case t.Checked && t.PendingArchiveAt == nil:
			p := now.Add(model.GracePeriod)
			t.PendingArchiveAt = &p
			repairs = append(repairs, "pending:"+t.ID)
		case !t.Checked && t.PendingArchiveAt != nil:
			t.PendingArchiveAt = nil
			repairs = append(repairs, "pending:"+t.ID)
		}
	}
	return repairs
}

// Encode renders l in the persisted shape.
func Encode(l model.TaskList) (string, error) {
	w := wireState{
		Active:   make([]wireTask, 0, len(l.Active)),
		Archived: make([]wireArchived, 0, len(l.Archived)),
	}
	for _, t := range l.Active {
		wt := wireTask{
			ID:      t.ID,
			Text:    t.Text,
			Created: float64(t.CreatedAt.UnixMilli()),
			Checked: t.Checked,
		}
		if t.PendingArchiveAt != nil {
			p := float64(t.PendingArchiveAt.UnixMilli())
			wt.PendingArchiveAt = &p
		}
		w.Active = append(w.Active, wt)
	}
	for _, a := range l.Archived {
		w.Archived = append(w.Archived, wireArchived{
			ID:         a.ID,
			Text:       a.Text,
			Created:    float64(a.CreatedAt.UnixMilli()),
			ArchivedAt: float64(a.ArchivedAt.UnixMilli()),
		})
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fromMillis(ms float64) time.Time {
	return time.UnixMilli(int64(math.Round(ms)))
}

func (w wireTask) toModel() model.Task {
	t := model.Task{
		ID:        w.ID,
		Text:      w.Text,
		CreatedAt: fromMillis(w.Created),
		Checked:   w.Checked,
	}
	if w.PendingArchiveAt != nil && *w.PendingArchiveAt > 0 {
		p := fromMillis(*w.PendingArchiveAt)
		t.PendingArchiveAt = &p
	}
	return t
}

func (w wireArchived) toModel() model.ArchivedTask {
	return model.ArchivedTask{
		ID:         w.ID,
		Text:       w.Text,
		CreatedAt:  fromMillis(w.Created),
		ArchivedAt: fromMillis(w.ArchivedAt),
	}
}
