package reward

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"prizewheel/pkg/errutil"
)

var ErrInvalidTable = errutil.ValidationFailed("invalid reward table", nil)

// Table is the fixed, ordered set of wheel segments. It is built once and
// never mutated; accessors hand out copies.
type Table struct {
	entries []Reward
	total   float64
}

// NewTable validates entries and returns an immutable table.
func NewTable(entries ...Reward) (Table, error) {
	t := Table{entries: append([]Reward(nil), entries...)}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	for _, e := range t.entries {
		t.total += e.Weight
	}
	return t, nil
}

func (t Table) Len() int {
	return len(t.entries)
}

func (t Table) At(i int) Reward {
	return t.entries[i]
}

func (t Table) Entries() []Reward {
	return append([]Reward(nil), t.entries...)
}

func (t Table) Weights() []float64 {
	out := make([]float64, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Weight
	}
	return out
}

func (t Table) TotalWeight() float64 {
	return t.total
}

// Probability is weight[i] / total.
func (t Table) Probability(i int) float64 {
	if t.total <= 0 {
		return 0
	}
	return t.entries[i].Weight / t.total
}

func (t Table) ByID(id string) (Reward, int, bool) {
	for i, e := range t.entries {
		if e.ID == id {
			return e, i, true
		}
	}
	return Reward{}, -1, false
}

func (t Table) Validate() error {
	var details []errutil.Detail
	add := func(i int, msg string, args ...any) {
		details = append(details, errutil.Detail{
			Field:   fmt.Sprintf("rewards[%d]", i),
			Message: fmt.Sprintf(msg, args...),
		})
	}

	if len(t.entries) == 0 {
		return errutil.Wrap(ErrInvalidTable, errutil.WithDetails(errutil.Detail{Field: "rewards", Message: "table is empty"}))
	}

	seen := make(map[string]int, len(t.entries))
	var total float64
	for i, e := range t.entries {
		if strings.TrimSpace(e.ID) == "" {
			add(i, "id is required")
		} else if prev, dup := seen[e.ID]; dup {
			add(i, "id %q duplicates rewards[%d]", e.ID, prev)
		} else {
			seen[e.ID] = i
		}

		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			add(i, "weight must be finite")
		} else if e.Weight < 0 {
			add(i, "weight must not be negative, got %v", e.Weight)
		} else {
			total += e.Weight
		}

		switch k := e.Kind.(type) {
		case Percent:
			if k.Value <= 0 || k.Value > 100 {
				add(i, "percent must be in (0, 100], got %v", k.Value)
			}
		case FreeItem:
			if strings.TrimSpace(k.Name) == "" {
				add(i, "item name is required")
			}
		case FreeShipping, NoReward:
		default:
			add(i, "kind is required")
		}
	}

	if len(details) == 0 && total <= 0 {
		details = append(details, errutil.Detail{Field: "rewards", Message: "total weight must be positive"})
	}

	if len(details) > 0 {
		return errutil.Wrap(ErrInvalidTable, errutil.WithDetails(details...))
	}
	return nil
}

type fileEntry struct {
	ID     string   `yaml:"id"`
	Label  string   `yaml:"label"`
	Detail string   `yaml:"detail"`
	Weight float64  `yaml:"weight"`
	Kind   KindDoc  `yaml:"kind"`
	Fill   string   `yaml:"fill"`
	Text   TextTone `yaml:"text"`
}

type fileDoc struct {
	Rewards []fileEntry `yaml:"rewards"`
}

// Parse reads a YAML reward table. Entries without an id get one derived
// from the label.
func Parse(data []byte) (Table, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Table{}, errutil.Wrap(ErrInvalidTable, errutil.WithErr(err))
	}

	entries := make([]Reward, 0, len(doc.Rewards))
	for i, fe := range doc.Rewards {
		kind, err := DecodeKind(fe.Kind)
		if err != nil {
			return Table{}, errutil.Wrap(ErrInvalidTable,
				errutil.WithErr(err),
				errutil.WithDetails(errutil.Detail{Field: fmt.Sprintf("rewards[%d].kind", i), Message: err.Error()}))
		}
		id := strings.TrimSpace(fe.ID)
		if id == "" && fe.Label != "" {
			id = slug.Make(fe.Label)
		}
		text := fe.Text
		if text == "" {
			text = TextDark
		}
		entries = append(entries, Reward{
			ID:     id,
			Label:  fe.Label,
			Detail: fe.Detail,
			Weight: fe.Weight,
			Kind:   kind,
			Fill:   fe.Fill,
			Text:   text,
		})
	}
	return NewTable(entries...)
}

func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("reading reward table %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return Table{}, fmt.Errorf("reward table %s: %w", path, err)
	}
	return t, nil
}
