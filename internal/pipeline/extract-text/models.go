// internal/pipeline/extract-text/models.go
package extracttext

// Input carries the location of one employee's CV document.
type Input struct {
	EmployeeID   string `json:"employeeId"`
	DocumentPath string `json:"documentPath"`
}

// Output is the raw text recovered from the document.
type Output struct {
	EmployeeID string `json:"employeeId"`
	Text       string `json:"text"`
	Format     string `json:"format"`
	CharCount  int    `json:"charCount"`
}
