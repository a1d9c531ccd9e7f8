package models

// Statistics: сводка по всем сохранённым матчам.
type Statistics struct {
	TotalMatches       int `json:"totalMatches"`
	FinishedMatches    int `json:"finishedMatches"`
	InProgressMatches  int `json:"inProgressMatches"`
	TotalPoints        int `json:"totalPoints"`
	TotalTries         int `json:"totalTries"`
	TotalCards         int `json:"totalCards"`
	TotalSubstitutions int `json:"totalSubstitutions"`
}
