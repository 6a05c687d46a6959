package calendar

import (
	"encoding/json"
	"io"
	"os"

	"golang.org/x/oauth2"
)

// decodeToken reads a stored OAuth token in JSON form.
func decodeToken(r io.Reader, token *oauth2.Token) error {
	return json.NewDecoder(r).Decode(token)
}

// SaveToken writes a token to disk so the consent flow only runs once.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
