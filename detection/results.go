package detection

import (
	"encoding/json"

	"github.com/josehu07/codetective/utils"
)

// ResultEntry is one file's outcome in the exported report. Exactly one of
// the likelihood/reasoning pair or the error message is present, depending
// on the file's terminal status.
type ResultEntry struct {
	File       string  `json:"file"`
	Lang       string  `json:"lang"`
	Size       *int    `json:"size"`
	Finished   bool    `json:"finished"`
	Likelihood *uint8  `json:"likelihood,omitempty"`
	Reasoning  *string `json:"reasoning,omitempty"`
	ErrorMsg   *string `json:"error_msg,omitempty"`
}

// ExportReport is the downloadable report document.
type ExportReport struct {
	Results []ResultEntry `json:"results"`
}

// ExportResults serializes the outcome of every tracked file into a JSON
// report. Files still mid-flight are reported with a placeholder note rather
// than omitted.
func ExportResults(tasks []*Task) ([]byte, error) {
	report := ExportReport{Results: make([]ResultEntry, 0, len(tasks))}

	for _, task := range tasks {
		entry := ResultEntry{
			File: task.Path,
			Lang: task.File.LangName(),
		}
		if size, known := task.File.GetSize(); known {
			entry.Size = &size
		}

		kind, likelihood, reasoning, message := task.Status.Snapshot()
		switch kind {
		case StatusSuccess:
			entry.Finished = true
			entry.Likelihood = &likelihood
			entry.Reasoning = &reasoning
		case StatusFailure:
			entry.Finished = true
			entry.ErrorMsg = &message
		default:
			// Pending or Flying at export time
			note := "still in progress"
			entry.ErrorMsg = &note
		}

		report.Results = append(report.Results, entry)
	}

	data, err := json.MarshalIndent(&report, "", "  ")
	if err != nil {
		return nil, utils.ParseErr("serializing results report: %v", err)
	}
	return data, nil
}
