package upload

import (
	"mime"
	"path/filepath"
	"strings"
)

const (
	MimePDF  = "application/pdf"
	MimeDoc  = "application/msword"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	mimeOctetStream = "application/octet-stream"
)

var resumeTypesByExtension = map[string]string{
	".pdf":  MimePDF,
	".doc":  MimeDoc,
	".docx": MimeDocx,
}

// IsResumeContentType reports whether contentType is an accepted resume
// format.
func IsResumeContentType(contentType string) bool {
	switch contentType {
	case MimePDF, MimeDoc, MimeDocx:
		return true
	default:
		return false
	}
}

// DetectContentType returns the declared media type without parameters.
// When the client declared nothing useful the extension decides.
func DetectContentType(declared, filename string) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != mimeOctetStream {
			return strings.ToLower(mt)
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := resumeTypesByExtension[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		mt, _, _ := mime.ParseMediaType(ct)
		return mt
	}
	return mimeOctetStream
}
