package redeem

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"prizewheel/pkg/errutil"
	"prizewheel/services/reward"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder("", "+5493512583838")
	require.NoError(t, err)
	return b
}

func TestMessageBranchesByKind(t *testing.T) {
	tests := []struct {
		name string
		kind reward.Kind
		want string
	}{
		{"percent", reward.Percent{Value: 15}, "Gané un 15% de descuento"},
		{"fractional percent", reward.Percent{Value: 12.5}, "Gané un 12.5% de descuento"},
		{"item", reward.FreeItem{Name: "Sushi Burger"}, "Gané Sushi Burger en la Ruleta Nova"},
		{"shipping", reward.FreeShipping{}, "Gané envío gratis"},
		{"none", reward.NoReward{}, "Jugué a la Ruleta Nova!"},
		{"nil", nil, "Jugué a la Ruleta Nova!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, Message(tt.kind), tt.want)
		})
	}
}

func TestURL(t *testing.T) {
	b := newTestBuilder(t)
	r := reward.Reward{ID: "pct10", Kind: reward.Percent{Value: 10}, Weight: 1}

	link := b.URL(r)
	require.True(t, strings.HasPrefix(link, "https://wa.me/5493512583838?text="))
	require.NotContains(t, link, "+")
	require.Contains(t, link, "%20")

	u, err := url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, Message(r.Kind), u.Query().Get("text"))
}

func TestRedeemURLRejectsNoReward(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.RedeemURL(reward.Reward{ID: "try_again", Kind: reward.NoReward{}})
	require.ErrorIs(t, err, ErrNotRedeemable)
	require.Equal(t, errutil.StatusUnprocessableEntity, errutil.StatusOf(err))

	link, err := b.RedeemURL(reward.Reward{ID: "dog", Kind: reward.FreeItem{Name: "Sushi Dog"}})
	require.NoError(t, err)
	require.Contains(t, link, "Sushi%20Dog")
}

func TestNewBuilderValidation(t *testing.T) {
	_, err := NewBuilder("https://wa.me", "")
	require.Error(t, err)

	_, err = NewBuilder("https://wa.me", "549-351")
	require.Error(t, err)

	_, err = NewBuilder("not a url", "549351")
	require.Error(t, err)

	b, err := NewBuilder("https://api.whatsapp.com/", "549351")
	require.NoError(t, err)
	require.Equal(t, "https://api.whatsapp.com/549351", b.ContactURL())
}

func TestQRCode(t *testing.T) {
	b := newTestBuilder(t)
	win := reward.Reward{ID: "pct20", Kind: reward.Percent{Value: 20}}

	png, err := b.QRCode(win, 0)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = b.QRCode(reward.Reward{ID: "none", Kind: reward.NoReward{}}, 128)
	require.ErrorIs(t, err, ErrNotRedeemable)

	path := filepath.Join(t.TempDir(), "qr.png")
	require.NoError(t, b.WriteQRCode(win, 128, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Positive(t, info.Size())
}
