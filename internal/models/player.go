package models

type Player struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Number        int    `json:"number"`
	Position      string `json:"position"`
	IsStarter     bool   `json:"isStarter"`
	MinutesPlayed *int   `json:"minutesPlayed,omitempty"`
}
