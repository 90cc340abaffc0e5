package formcatalog

// searchResponse mirrors the subset of the Elasticsearch search response the
// client reads: the hit IDs.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}
