// ABOUTME: Builds the Google OAuth authorization URL
// ABOUTME: The resulting code is exchanged through GoogleCallback

package client

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleAuthURL builds the consent URL whose returned code is passed to
// GoogleCallback. The backend holds the client secret and does the exchange.
func GoogleAuthURL(clientID, redirectURL, state string) string {
	conf := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURL,
		Scopes:      []string{"openid", "email", "profile"},
		Endpoint:    google.Endpoint,
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}
