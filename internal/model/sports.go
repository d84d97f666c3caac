package model

// League 赛事联赛
type League struct {
	ID    string `json:"idLeague"`
	Name  string `json:"strLeague,omitempty"`
	Sport string `json:"strSport,omitempty"`
}

// SportsEvent TheSportsDB 赛事
type SportsEvent struct {
	ID        string `json:"idEvent"`
	Name      string `json:"strEvent"`
	League    string `json:"strLeague"`
	LeagueID  string `json:"idLeague"`
	HomeTeam  string `json:"strHomeTeam"`
	AwayTeam  string `json:"strAwayTeam"`
	HomeScore string `json:"intHomeScore,omitempty"`
	AwayScore string `json:"intAwayScore,omitempty"`
	Timestamp string `json:"strTimestamp"`
	DateEvent string `json:"dateEvent"`
	Time      string `json:"strTime"`
	Venue     string `json:"strVenue,omitempty"`
	Thumb     string `json:"strThumb,omitempty"`
	Status    string `json:"strStatus,omitempty"`
	Sport     string `json:"strSport,omitempty"`
}
