package entities

// LastPassCSV lastpass csv password. Field order is the column order of a
// LastPass generic CSV import.
type LastPassCSV struct {
	URL        string `json:"url" csv:"url"`
	ActionType string `json:"actionType" csv:"actionType"`
	Username   string `json:"username" csv:"username"`
	Password   string `json:"password" csv:"password"`
	Hostname   string `json:"hostname" csv:"hostname"`
	Extra      string `json:"extra" csv:"extra"`
	Name       string `json:"name" csv:"name"`
	Grouping   string `json:"grouping" csv:"grouping"`
}
