package reward

import (
	"encoding/json"
)

type TextTone string

const (
	TextLight TextTone = "light"
	TextDark  TextTone = "dark"
)

// Reward is one segment of the wheel. Fill and Text are rendering hints only.
type Reward struct {
	ID     string
	Label  string
	Detail string
	Weight float64
	Kind   Kind
	Fill   string
	Text   TextTone
}

func (r Reward) Winning() bool {
	return Winning(r.Kind)
}

type rewardJSON struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Detail  string   `json:"detail"`
	Weight  float64  `json:"weight"`
	Kind    KindDoc  `json:"kind"`
	Fill    string   `json:"fill,omitempty"`
	Text    TextTone `json:"text,omitempty"`
	Winning bool     `json:"winning"`
}

func (r Reward) MarshalJSON() ([]byte, error) {
	return json.Marshal(rewardJSON{
		ID:      r.ID,
		Label:   r.Label,
		Detail:  r.Detail,
		Weight:  r.Weight,
		Kind:    EncodeKind(r.Kind),
		Fill:    r.Fill,
		Text:    r.Text,
		Winning: r.Winning(),
	})
}

func (r *Reward) UnmarshalJSON(data []byte) error {
	var raw rewardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, err := DecodeKind(raw.Kind)
	if err != nil {
		return err
	}
	*r = Reward{
		ID:     raw.ID,
		Label:  raw.Label,
		Detail: raw.Detail,
		Weight: raw.Weight,
		Kind:   kind,
		Fill:   raw.Fill,
		Text:   raw.Text,
	}
	return nil
}
