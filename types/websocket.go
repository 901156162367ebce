package types

const (
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
	TypeWebsocketAsk   = "ask"
	TypeWebsocketError = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketAskPayload struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type WebsocketAskResponse struct {
	Answer  string  `json:"answer"`
	Sources []Chunk `json:"sources,omitempty"`
}

type WebsocketErrorResponse struct {
	Message string `json:"message"`
}
