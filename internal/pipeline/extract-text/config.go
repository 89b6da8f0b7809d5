// internal/pipeline/extract-text/config.go
package extracttext

// Config for the document text extraction stage.
type Config struct {
	// MaxBytes caps the size of documents read from disk. Zero means no cap.
	MaxBytes int64
}

func DefaultConfig() *Config {
	return &Config{
		MaxBytes: 10 << 20,
	}
}
