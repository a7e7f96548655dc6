// Package dto defines data transfer objects for the profile feature's HTTP transport layer.
package dto

// SaveProfileReq represents the request body for PUT /api/profile.
type SaveProfileReq struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// ProfileResponse is the stored profile.
type ProfileResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EmailStatus reports the welcome email outcome. Pending is set when the
// send had not finished before the response was written.
type EmailStatus struct {
	Sent    bool   `json:"sent"`
	Pending bool   `json:"pending,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// SaveProfileResponse carries the save result and the email result separately.
type SaveProfileResponse struct {
	Profile ProfileResponse `json:"profile"`
	Saved   bool            `json:"saved"`
	Message string          `json:"message"`
	Email   EmailStatus     `json:"email"`
}

// ErrorResponse is returned on failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
