package realtime

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type conversationItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role,omitempty"`
	CallID  string        `json:"call_id,omitempty"`
	Output  string        `json:"output,omitempty"`
	Content []contentPart `json:"content,omitempty"`
}

type itemCreateMsg struct {
	Type string           `json:"type"`
	Item conversationItem `json:"item"`
}

type responseCreateMsg struct {
	Type string `json:"type"`
}

type responseCancelMsg struct {
	Type string `json:"type"`
}

type sessionUpdateMsg struct {
	Type    string        `json:"type"`
	Session sessionConfig `json:"session"`
}

type sessionConfig struct {
	Type  string      `json:"type"`
	Audio audioConfig `json:"audio"`
}

type audioConfig struct {
	Input audioInputConfig `json:"input"`
}

type audioInputConfig struct {
	TurnDetection *struct{} `json:"turn_detection"`
}
