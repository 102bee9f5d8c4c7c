package redeem

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"prizewheel/services/reward"
)

const DefaultQRSize = 256

// QRCode encodes the redeem link of r as a PNG so a customer can scan it
// from a kiosk screen.
func (b *Builder) QRCode(r reward.Reward, size int) ([]byte, error) {
	link, err := b.RedeemURL(r)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("redeem: encode qr: %w", err)
	}
	return png, nil
}

func (b *Builder) WriteQRCode(r reward.Reward, size int, path string) error {
	link, err := b.RedeemURL(r)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	if err := qrcode.WriteFile(link, qrcode.Medium, size, path); err != nil {
		return fmt.Errorf("redeem: write qr %s: %w", path, err)
	}
	return nil
}
