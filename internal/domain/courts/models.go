package courts

// Court is a venue court that a referee can score on.
type Court struct {
	ID             string `json:"id"`
	OverlayID      string `json:"overlayId,omitempty"`
	Name           string `json:"name,omitempty"`
	IsAvailable    bool   `json:"isAvailable"`
	CurrentMatchID string `json:"currentMatchId,omitempty"`
}

// DisplayName returns the court name, or a generic label built from its id.
func (c Court) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return "Court " + c.ID
}
