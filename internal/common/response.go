package common

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the envelope every failed request gets.
type ErrorResponse struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StatusResponse is the envelope for successful mutations and index pages.
type StatusResponse struct {
	Name    string `json:"name,omitempty"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// Responder writes JSON bodies stamped with the API name.
type Responder struct {
	APIName string
}

func NewResponder(apiName string) *Responder {
	return &Responder{APIName: apiName}
}

func (rs *Responder) Error(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{
		Name:    rs.APIName,
		Status:  http.StatusText(code),
		Code:    code,
		Message: message,
	})
}

// FromError maps err to its status and public message.
func (rs *Responder) FromError(w http.ResponseWriter, err error) {
	rs.Error(w, HTTPStatusFromError(err), PublicMessage(err))
}

func (rs *Responder) Status(w http.ResponseWriter, code int, status, message string) {
	RespondWithJSON(w, code, StatusResponse{Status: status, Code: code, Message: message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
