// Package xenocanto is a client for the xeno-canto recording catalog API.
// Recording metadata is treated as immutable once fetched; query pages are
// cached in memory so repeated walks of the same query stay cheap.
package xenocanto

import "fmt"

// Recording is one catalog entry. Field names follow the API's JSON keys.
type Recording struct {
	ID       string `json:"id"`
	Gen      string `json:"gen"`       // genus
	Sp       string `json:"sp"`        // species epithet
	En       string `json:"en"`        // English common name
	Country  string `json:"cnt"`
	File     string `json:"file"`      // direct audio URL, may be empty
	FileName string `json:"file-name"`
	Length   string `json:"length"`    // mm:ss
	Quality  string `json:"q"`         // A (best) to E
}

// ScientificName returns "Genus species".
func (r *Recording) ScientificName() string {
	return r.Gen + " " + r.Sp
}

// DownloadURL returns the audio URL to fetch. When the catalog entry carries
// no direct file URL the canonical per-recording download endpoint is derived
// from the ID; the same derivation serves as the alternate URL when a direct
// fetch fails.
func (r *Recording) DownloadURL() string {
	if r.File != "" {
		return r.File
	}
	return r.AlternateURL()
}

// AlternateURL returns the canonical download endpoint derived from the ID.
func (r *Recording) AlternateURL() string {
	return fmt.Sprintf("https://xeno-canto.org/%s/download", r.ID)
}

// QueryPage is one page of query results.
type QueryPage struct {
	Page          int
	NumPages      int
	NumRecordings int
	Recordings    []Recording
}

// queryResponse mirrors the API's wire format. Totals arrive as strings.
type queryResponse struct {
	NumRecordings string      `json:"numRecordings"`
	NumSpecies    string      `json:"numSpecies"`
	Page          int         `json:"page"`
	NumPages      int         `json:"numPages"`
	Recordings    []Recording `json:"recordings"`
}
