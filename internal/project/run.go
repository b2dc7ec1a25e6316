package project

import "time"

// Run records one clustering run saved in a project.
type Run struct {
	ID               string    `json:"id"`
	Dataset          string    `json:"dataset"`
	Method           string    `json:"method"`
	K                int       `json:"k"`
	Features         []string  `json:"features"`
	Rows             int       `json:"rows"`
	Silhouette       float64   `json:"silhouette"`
	DaviesBouldin    float64   `json:"davies_bouldin"`
	CalinskiHarabasz float64   `json:"calinski_harabasz"`
	MaxClusterPct    float64   `json:"max_cluster_pct"`
	ReportFile       string    `json:"report_file,omitempty"`
	LabelsFile       string    `json:"labels_file,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
