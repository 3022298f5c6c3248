package models

// Asset is one physical item issued to a team, each with its own label.
type Asset struct {
	Ordinal int
	Name    string
}

// DefaultAssets is the catalogue used when none is configured.
var DefaultAssets = []Asset{
	{Ordinal: 1, Name: "物资袋"},
	{Ordinal: 2, Name: "文化衫"},
	{Ordinal: 3, Name: "餐券"},
}
