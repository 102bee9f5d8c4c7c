package reward

// Brand palette taken from the restaurant logo.
const (
	colorIvory    = "#E7E2D4"
	colorGold     = "#C6A05A"
	colorGoldDeep = "#B3873B"
	colorStone    = "#9CA3AF"
)

var defaultEntries = []Reward{
	{
		ID:     "try_again",
		Label:  "Seguí participando",
		Detail: "¡Casi! No ganaste esta vez, volvé a intentarlo la proxima.",
		Weight: 15,
		Kind:   NoReward{},
		Fill:   colorStone,
		Text:   TextDark,
	},
	{
		ID:     "pct10",
		Label:  "10% OFF",
		Detail: "10% de descuento en tu próxima compra",
		Weight: 25,
		Kind:   Percent{Value: 10},
		Fill:   colorIvory,
		Text:   TextDark,
	},
	{
		ID:     "pct15",
		Label:  "15% OFF",
		Detail: "15% de descuento en tu próxima compra",
		Weight: 20,
		Kind:   Percent{Value: 15},
		Fill:   colorGold,
		Text:   TextDark,
	},
	{
		ID:     "pct20",
		Label:  "20% OFF",
		Detail: "20% de descuento en tu próxima compra",
		Weight: 12,
		Kind:   Percent{Value: 20},
		Fill:   colorGoldDeep,
		Text:   TextLight,
	},
	{
		ID:     "pct50",
		Label:  "50% OFF",
		Detail: "50% de descuento en tu próxima compra",
		Weight: 4,
		Kind:   Percent{Value: 50},
		Fill:   colorIvory,
		Text:   TextDark,
	},
	{
		ID:     "dog",
		Label:  "Sushi Dog gratis",
		Detail: "Un Sushi Dog de regalo 🐶🍣",
		Weight: 8,
		Kind:   FreeItem{Name: "Sushi Dog"},
		Fill:   colorGold,
		Text:   TextDark,
	},
	{
		ID:     "burger",
		Label:  "Sushi Burger gratis",
		Detail: "Una Sushi Burger de regalo 🍔🍣",
		Weight: 6,
		Kind:   FreeItem{Name: "Sushi Burger"},
		Fill:   colorGoldDeep,
		Text:   TextLight,
	},
	{
		ID:     "ten_pieces",
		Label:  "10 piezas gratis",
		Detail: "10 piezas gratis en tu próximo pedido 🍣",
		Weight: 5,
		Kind:   FreeItem{Name: "10 piezas"},
		Fill:   colorIvory,
		Text:   TextDark,
	},
	{
		ID:     "thirty_pieces",
		Label:  "30 piezas gratis",
		Detail: "30 piezas gratis en tu próximo pedido 🎉",
		Weight: 5,
		Kind:   FreeItem{Name: "30 piezas"},
		Fill:   colorGoldDeep,
		Text:   TextLight,
	},
}

// Default returns the built-in Ruleta Nova table.
func Default() Table {
	t, err := NewTable(defaultEntries...)
	if err != nil {
		panic(err)
	}
	return t
}
