package protocol

// FrameRecord is one line of the frame trace and one observer message: the
// state the fleet decided on and the commands it sent back.
type FrameRecord struct {
	RunID    string      `json:"run_id,omitempty"`
	Frame    int         `json:"frame"`
	Money    int         `json:"money"`
	Digest   string      `json:"digest"`
	States   []string    `json:"states"`
	Claims   map[int]int `json:"claims,omitempty"` // agent -> station
	Commands []Command   `json:"commands,omitempty"`
}
