package dto

type CardOutput struct {
	ID       int
	Kimariji string
	Lines    []string
	Readings []string
	Selected bool
}

type TankaOutput struct {
	CardID   int
	Upper    [2]string
	Lower    [2]string
	DimUpper bool
	DimLower bool
}

type SelectionOutput struct {
	IDs []int
}

type SectionOutput struct {
	Key   string
	Cards []CardOutput
}

type DeckOutput struct {
	Index    int
	Total    int
	Progress string
	Current  TankaOutput
	Previous TankaOutput
	CanPrev  bool
	CanNext  bool
	Moved    bool
}
