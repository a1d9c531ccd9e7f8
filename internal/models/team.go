package models

// Side: цвет команды; в матче ровно одна синяя и одна красная.
type Side string

const (
	SideBlue Side = "BLUE"
	SideRed  Side = "RED"
)

func (s Side) Valid() bool {
	return s == SideBlue || s == SideRed
}

type Team struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Side          Side     `json:"side"`
	Players       []Player `json:"players"`
	Points        int      `json:"points"`
	Substitutions int      `json:"substitutions"`
}

func (t *Team) Player(playerID string) *Player {
	for i := range t.Players {
		if t.Players[i].ID == playerID {
			return &t.Players[i]
		}
	}
	return nil
}

func (t *Team) PlayerByNumber(number int) *Player {
	for i := range t.Players {
		if t.Players[i].Number == number {
			return &t.Players[i]
		}
	}
	return nil
}
