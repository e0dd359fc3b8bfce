package domain

import "encoding/json"

// UploadResult is what the storage service returns for a stored record
type UploadResult struct {
	URI   string          `json:"url"`   // e.g. ipfs://<ipnft>/metadata.json
	IPNFT string          `json:"ipnft"` // Root CID of the stored record
	Data  json.RawMessage `json:"data,omitempty"`
}

// ImageURI extracts the image URI from the echoed metadata, if present
func (r *UploadResult) ImageURI() string {
	if len(r.Data) == 0 {
		return ""
	}
	var echoed struct {
		Image string `json:"image"`
	}
	if err := json.Unmarshal(r.Data, &echoed); err != nil {
		return ""
	}
	return echoed.Image
}
