package ingestcatalog

type Input struct {
	FileContent string `json:"fileContent"` // base64
	Kind        string `json:"kind"`
	FileName    string `json:"fileName,omitempty"`
}

type Output struct {
	RecordsImported int      `json:"recordsImported"`
	RecordIDs       []string `json:"recordIds"`
	Indexed         bool     `json:"indexed"`
}
