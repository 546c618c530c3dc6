package dto

// QuestionResponse is one element of the GET /fetch_questions array
type QuestionResponse struct {
	ID          int64  `json:"id"`
	Question    string `json:"question"`
	LeftChoice  string `json:"left_choice"`
	RightChoice string `json:"right_choice"`
}

// SubmitResponseRequest is the body of POST /submit_response.
// SessionID is sent as null until the server has issued one.
type SubmitResponseRequest struct {
	QuestionID int64   `json:"question_id"`
	Choice     string  `json:"choice"`
	SessionID  *string `json:"session_id"`
}

// SubmitResponseResponse carries the respondent's session id
type SubmitResponseResponse struct {
	SessionID string `json:"session_id"`
}

// NavigationRequest is the body of POST /handle-navigation
type NavigationRequest struct {
	CurrentPage string `json:"current_page"`
	Choice      string `json:"choice"`
}

// NavigationResponse holds the next page; a null or missing redirect means stay.
type NavigationResponse struct {
	Redirect *string `json:"redirect"`
}

// GPIOEvent is the payload of one non-heartbeat message on the push-event stream
type GPIOEvent struct {
	Choice string `json:"choice"`
	Type   string `json:"type,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
	UTCTime   string  `json:"utc_time"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// PressRequest is the body of POST /control/press on the kiosk's local control API
type PressRequest struct {
	Choice string `json:"choice"`
}

// SelectSetRequest is the body of POST /control/select
type SelectSetRequest struct {
	SetID int `json:"set_id"`
}

// QuizProgressResponse describes the quiz running on the quiz page
type QuizProgressResponse struct {
	State      string `json:"state"`
	SetID      int    `json:"set_id,omitempty"`
	Cursor     int    `json:"cursor"`
	Tally      int    `json:"tally"`
	Total      int    `json:"total"`
	RunID      string `json:"run_id,omitempty"`
	ResultPage string `json:"result_page,omitempty"`
}

// KioskStateResponse is returned by GET /control/state
type KioskStateResponse struct {
	Page string                `json:"page"`
	Quiz *QuizProgressResponse `json:"quiz,omitempty"`
}
