// ABOUTME: Decodes sign-in responses into a token and a user
// ABOUTME: Handles flat and enveloped layouts with token or accessToken

package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/client"
)

// Shape identifies which login response layout the backend sent
type Shape int

const (
	// ShapeFlat is {token|accessToken, id, username, email?, fullName?, profileImage?, roles?}
	ShapeFlat Shape = iota + 1
	// ShapeEnvelope is {token|accessToken, user}
	ShapeEnvelope
)

func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeEnvelope:
		return "envelope"
	default:
		return "unknown"
	}
}

// AuthResponse is a login response reduced to what the session keeps
type AuthResponse struct {
	Shape    Shape
	Token    string
	User     client.User
	UserJSON json.RawMessage // what gets persisted under the user key
}

type wireAuthResponse struct {
	Token        string          `json:"token"`
	AccessToken  string          `json:"accessToken"`
	User         json.RawMessage `json:"user"`
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	FullName     string          `json:"fullName"`
	ProfileImage string          `json:"profileImage"`
	Roles        []string        `json:"roles"`
}

type envelopeFields struct {
	Token string          `validate:"required"`
	User  json.RawMessage `validate:"required"`
}

type flatFields struct {
	Token    string `validate:"required"`
	ID       int64  `validate:"required"`
	Username string `validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var errNoToken = errors.New("login response did not contain a valid token")

// DecodeAuthResponse classifies raw into one of the two accepted shapes.
// Anything else is a validation error.
func DecodeAuthResponse(raw []byte) (*AuthResponse, error) {
	const op = "decode auth response"

	var w wireAuthResponse
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, op, fmt.Errorf("invalid login response: %w", err))
	}

	token := w.Token
	if token == "" {
		token = w.AccessToken
	}
	if token == "" {
		return nil, apperr.Wrap(apperr.KindValidation, op, errNoToken)
	}

	if hasValue(w.User) {
		if err := validate.Struct(envelopeFields{Token: token, User: w.User}); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, op, err)
		}
		var u client.User
		if err := json.Unmarshal(w.User, &u); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, op, fmt.Errorf("invalid user in login response: %w", err))
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, w.User); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, op, err)
		}
		return &AuthResponse{Shape: ShapeEnvelope, Token: token, User: u, UserJSON: compact.Bytes()}, nil
	}

	if err := validate.Struct(flatFields{Token: token, ID: w.ID, Username: w.Username}); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, op, fmt.Errorf("login response did not contain valid user data: %w", err))
	}
	roles := w.Roles
	if roles == nil {
		roles = []string{}
	}
	u := client.User{
		ID:           w.ID,
		Username:     w.Username,
		Email:        w.Email,
		FullName:     w.FullName,
		ProfileImage: w.ProfileImage,
		Roles:        roles,
	}
	data, err := json.Marshal(u)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, op, err)
	}
	return &AuthResponse{Shape: ShapeFlat, Token: token, User: u, UserJSON: data}, nil
}

func hasValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
