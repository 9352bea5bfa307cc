package domain

import "time"

// FileRecord is the metadata of an uploaded file.
//
// StoragePath locates the content inside the storage backend and must never
// leave the server, hence the json:"-" tag.
type FileRecord struct {
	ID             string    `json:"id" bson:"_id"`
	Filename       string    `json:"filename" bson:"filename"`
	UniqueFilename string    `json:"unique_filename" bson:"unique_filename"`
	ContentType    string    `json:"content_type" bson:"content_type"`
	Size           int64     `json:"size" bson:"size"`
	UserID         string    `json:"user_id" bson:"user_id"`
	AnalysisID     string    `json:"analysis_id,omitempty" bson:"analysis_id,omitempty"`
	UploadDate     time.Time `json:"upload_date" bson:"upload_date"`
	StoragePath    string    `json:"-" bson:"file_path"`
}
