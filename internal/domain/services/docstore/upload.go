package docstore

import "io"

// UploadedFile represents a file received from a multipart upload
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}
