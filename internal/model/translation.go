package model

import "time"

// TranslationRecord is one completed translation + interpretation pair,
// owned exclusively by OwnerID.
type TranslationRecord struct {
	ID             int64
	OwnerID        string
	SourceText     string
	TranslatedText string
	SourceLanguage string
	TargetLanguage string
	Interpretation string
	CreatedAt      time.Time
}
