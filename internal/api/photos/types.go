package photos

import "io"

const maxCaptionLength = 500

// Upload is one photo received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Caption     string
	Body        io.Reader
}

type Options struct {
	Workers        int
	QueueCapacity  int
	MaxUploadBytes int64
}
