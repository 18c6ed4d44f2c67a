package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateTableRequest is the request body for creating a table. Omitted
// fields keep the house defaults.
type CreateTableRequest struct {
	Mode        string `json:"mode,omitempty"`
	Decks       int    `json:"decks,omitempty"`
	S17         *bool  `json:"s17,omitempty"`
	MinBet      int    `json:"min_bet,omitempty"`
	Code        string `json:"code,omitempty"`
	Bots        int    `json:"bots,omitempty"`
	BotStrategy string `json:"bot_strategy,omitempty"`
}

// JoinTableRequest is the request body for joining a pvp table
type JoinTableRequest struct {
	Code string `json:"code"`
}

// ActionRequest is the request body for submitting an intent
type ActionRequest struct {
	Action string `json:"action"`
	HandID string `json:"hand_id,omitempty"`
	Amount int    `json:"amount,omitempty"`
}
