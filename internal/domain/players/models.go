package players

// Player represents a competitor as listed by the score server.
type Player struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Flag    string `json:"flag,omitempty"`
	FlagURL string `json:"flagUrl,omitempty"`
	Group   string `json:"group,omitempty"`
	List    string `json:"list,omitempty"`
}

// DisplayName returns the name shown on scoreboards.
func (p Player) DisplayName() string {
	return p.Name
}
