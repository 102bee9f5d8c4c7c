package redeem

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"prizewheel/pkg/errutil"
	"prizewheel/services/reward"
)

const DefaultBaseURL = "https://wa.me"

var ErrNotRedeemable = errutil.New(errutil.StatusUnprocessableEntity, "reward has nothing to redeem")

// Builder turns a reward into a WhatsApp click-to-chat link addressed to the
// restaurant.
type Builder struct {
	base  string
	phone string
}

func NewBuilder(baseURL, phone string) (*Builder, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("redeem: invalid base url %q: %w", baseURL, err)
	}

	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if phone == "" {
		return nil, fmt.Errorf("redeem: phone is required")
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("redeem: phone %q must contain digits only", phone)
		}
	}

	return &Builder{base: strings.TrimRight(baseURL, "/"), phone: phone}, nil
}

// Message is the prefilled chat text for a reward kind.
func Message(kind reward.Kind) string {
	switch k := kind.(type) {
	case reward.Percent:
		return fmt.Sprintf("Hola! 🍣 Gané un %s%% de descuento en la Ruleta Nova y quiero usarlo en mi próximo pedido.",
			strconv.FormatFloat(k.Value, 'f', -1, 64))
	case reward.FreeItem:
		return fmt.Sprintf("Hola! 🍣 Gané %s en la Ruleta Nova y quiero usarlo en mi próximo pedido.", k.Name)
	case reward.FreeShipping:
		return "Hola! 🚗 Gané envío gratis en la Ruleta Nova y quiero aprovecharlo en mi próximo pedido."
	case reward.NoReward:
		return "Hola! 🎡 Jugué a la Ruleta Nova!"
	default:
		return "Hola! 🎡 Jugué a la Ruleta Nova!"
	}
}

// URL builds the deep link for any reward kind.
func (b *Builder) URL(r reward.Reward) string {
	return b.ContactURL() + "?text=" + escape(Message(r.Kind))
}

// RedeemURL is URL restricted to rewards that pay out.
func (b *Builder) RedeemURL(r reward.Reward) (string, error) {
	if !r.Winning() {
		return "", errutil.Wrap(ErrNotRedeemable, errutil.WithDetails(errutil.Detail{Field: "reward_id", Message: r.ID}))
	}
	return b.URL(r), nil
}

// ContactURL opens the chat without prefilled text.
func (b *Builder) ContactURL() string {
	return b.base + "/" + b.phone
}

// escape matches encodeURIComponent for spaces, which chat apps expect as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
