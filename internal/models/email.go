package models

type DownloadLinks struct {
	PDF    string `json:"pdf,omitempty"`
	Notion string `json:"notion,omitempty"`
}

// Email DTOs
type SendEmailRequest struct {
	To            string         `json:"to"`
	UserName      string         `json:"userName"`
	Year          int            `json:"year"`
	DownloadLinks *DownloadLinks `json:"downloadLinks,omitempty"`
}
