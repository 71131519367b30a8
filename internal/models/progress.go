package models

// ProgressUpdate is a transient progress frame delivered over the socket.
// Only frames with Type == "progress" are consumed; everything else is
// ignored by the listener.
type ProgressUpdate struct {
	Type      string  `json:"type"`
	ClientID  string  `json:"client_id,omitempty"`
	Stage     string  `json:"stage"`
	Progress  float64 `json:"progress"` // 0-100
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp,omitempty"`
}
