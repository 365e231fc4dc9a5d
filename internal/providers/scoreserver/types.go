package scoreserver

type courtsResponse struct {
	Courts     []courtResponse `json:"courts"`
	TotalCount int             `json:"total_count"`
}

type courtResponse struct {
	ID             string  `json:"kort_id"`
	OverlayID      *string `json:"overlay_id"`
	Name           *string `json:"name"`
	IsAvailable    *bool   `json:"is_available"`
	CurrentMatchID *int    `json:"current_match_id"`
}

type playersResponse struct {
	OK         *bool            `json:"ok"`
	Count      *int             `json:"count"`
	TotalCount *int             `json:"total_count"`
	Players    []playerResponse `json:"players"`
	Error      string           `json:"error"`
}

type playerResponse struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Flag    *string `json:"flag"`
	FlagURL *string `json:"flagUrl"`
	Group   *string `json:"group"`
	List    *string `json:"list"`
}

type pinRequest struct {
	PIN string `json:"pin"`
}

type authResponse struct {
	OK         bool   `json:"ok"`
	Authorized bool   `json:"authorized"`
	CourtID    string `json:"kort_id"`
	Error      string `json:"error"`
}

type ackResponse struct {
	Success *bool  `json:"success"`
	OK      *bool  `json:"ok"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// accepted treats a missing flag as success; older servers reply with an empty body.
func (a ackResponse) accepted() bool {
	if a.Success != nil {
		return *a.Success
	}
	if a.OK != nil {
		return *a.OK
	}
	return true
}

func (a ackResponse) reason() string {
	if a.Error != "" {
		return a.Error
	}
	if a.Message != "" {
		return a.Message
	}
	return "rejected"
}
