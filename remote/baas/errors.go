package baas

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Yuki-gilty/drone-manager/remote"
)

// backendError covers the PostgREST and GoTrue error bodies.
type backendError struct {
	Code             json.RawMessage `json:"code"`
	Message          string          `json:"message"`
	Details          string          `json:"details"`
	Hint             string          `json:"hint"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Msg              string          `json:"msg"`
	ErrorCode        string          `json:"error_code"`
}

func (b backendError) code() string {
	if b.ErrorCode != "" {
		return b.ErrorCode
	}
	var s string
	if err := json.Unmarshal(b.Code, &s); err == nil && s != "" {
		return s
	}
	if s = strings.Trim(string(b.Code), `"`); s != "" {
		return s
	}
	// GoTrue's token endpoint reports OAuth style {"error": "invalid_grant"}
	return b.Error
}

func (b backendError) message() string {
	for _, m := range []string{b.Message, b.ErrorDescription, b.Msg, b.Error} {
		if strings.TrimSpace(m) != "" {
			return m
		}
	}
	return ""
}

// mapError translates a backend error response into the remote taxonomy.
// Messages without a known code are passed through verbatim.
func mapError(method string, status int, body []byte) *remote.Error {
	var b backendError
	_ = json.Unmarshal(body, &b)
	code := b.code()
	msg := b.message()

	e := &remote.Error{Status: status, Code: code, Message: msg}
	switch code {
	case "PGRST116":
		e.Kind, e.Message = remote.ErrNotFound, "record not found"
	case "23505":
		e.Kind, e.Message = remote.ErrAlreadyExists, "this data already exists"
	case "23503":
		if method == "DELETE" {
			e.Kind, e.Message = remote.ErrReferenced, "referenced by other data, cannot delete"
		} else {
			e.Kind, e.Message = remote.ErrValidation, "referenced record does not exist"
		}
	case "23502", "22P02", "23514":
		e.Kind = remote.ErrValidation
	case "42501", "PGRST301", "PGRST302":
		e.Kind, e.Message = remote.ErrAuthRequired, "authentication required, please log in again"
	case "invalid_credentials", "invalid_grant":
		e.Kind, e.Message = remote.ErrAuthRequired, "invalid username or password"
	case "user_already_exists", "email_exists":
		e.Kind = remote.ErrAlreadyExists
	default:
		switch status {
		case 401, 403:
			e.Kind = remote.ErrAuthRequired
		case 400, 422:
			e.Kind = remote.ErrValidation
		default:
			e.Kind = remote.ErrServer
		}
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("request failed (status %d)", status)
	}
	return e
}
