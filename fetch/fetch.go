package fetch

import (
	"encoding/json"

	"impractical.co/semka"
)

func decodeJSON(url string, data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err != nil {
		return &semka.FetchError{URL: url, Kind: semka.FetchDecode, Err: err}
	}
	return nil
}
