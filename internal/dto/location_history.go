package dto

// LocationHistoryQuery bounds a history read.
type LocationHistoryQuery struct {
	Limit int `form:"limit" validate:"omitempty,gte=1"`
}

// LocationHistoryExportQuery picks the export file type.
type LocationHistoryExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf CSV PDF"`
	Limit  int    `form:"limit" validate:"omitempty,gte=1"`
}

// ExportFile is a rendered history export.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
