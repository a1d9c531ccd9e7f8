package models

type ScoreKind string

const (
	ScoreTry        ScoreKind = "TRY"
	ScoreConversion ScoreKind = "CONVERSION"
	ScorePenalty    ScoreKind = "PENALTY"
)

func (k ScoreKind) Valid() bool {
	switch k {
	case ScoreTry, ScoreConversion, ScorePenalty:
		return true
	}
	return false
}

type ScoreEvent struct {
	ID       string    `json:"id"`
	TeamID   string    `json:"teamId"`
	Kind     ScoreKind `json:"kind"`
	Minute   int       `json:"minute"`
	PlayerID string    `json:"playerId,omitempty"`
	Points   int       `json:"points"`
}

type CardKind string

const (
	CardYellow CardKind = "YELLOW"
	CardRed    CardKind = "RED"
)

func (k CardKind) Valid() bool {
	return k == CardYellow || k == CardRed
}

type Card struct {
	ID       string   `json:"id"`
	PlayerID string   `json:"playerId"`
	Kind     CardKind `json:"kind"`
	Minute   int      `json:"minute"`
	// Expiry: значение общего прошедшего времени (сек), только для жёлтой.
	Expiry *int `json:"expiry,omitempty"`
	Active bool `json:"active"`
}

type Substitution struct {
	ID        string `json:"id"`
	TeamID    string `json:"teamId"`
	PlayerOut string `json:"playerOut"`
	PlayerIn  string `json:"playerIn"`
	Minute    int    `json:"minute"`
}
